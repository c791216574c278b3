package s4c

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/bodgit/s4c/frame"
	_ "github.com/mattn/go-sqlite3" // register sqlite3 driver
)

// SheetDB caches rendered frames keyed by the SHA1 of the source image and
// the options used to render it.
type SheetDB struct {
	db *sql.DB
}

// NewSheetDB opens or creates the cache database in file.
func NewSheetDB(file string) (*SheetDB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS sheet (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL, params TEXT NOT NULL, frames INTEGER NOT NULL, UNIQUE(sha1, params))"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS frame (sheet_id INTEGER NOT NULL, idx INTEGER NOT NULL, chars TEXT NOT NULL, PRIMARY KEY(sheet_id, idx), FOREIGN KEY(sheet_id) REFERENCES sheet(id) ON DELETE CASCADE)"); err != nil {
		db.Close()
		return nil, err
	}

	return &SheetDB{
		db: db,
	}, nil
}

func (db *SheetDB) Close() error {
	return db.db.Close()
}

// Purge removes every cached sheet.
func (db *SheetDB) Purge() error {
	if _, err := db.db.Exec("DELETE FROM frame"); err != nil {
		return err
	}

	if _, err := db.db.Exec("DELETE FROM sheet"); err != nil {
		return err
	}

	return nil
}

// FindFrames returns the frames cached for the given image and parameters.
// The boolean is false if nothing was cached.
func (db *SheetDB) FindFrames(sha1, params string) ([]*frame.Frame, bool, error) {
	var id int64
	var count int
	switch err := db.db.QueryRow("SELECT id, frames FROM sheet WHERE sha1 = ? AND params = ?", sha1, params).Scan(&id, &count); err {
	case sql.ErrNoRows:
		return nil, false, nil
	case nil:
	default:
		return nil, false, err
	}

	rows, err := db.db.Query("SELECT idx, chars FROM frame WHERE sheet_id = ? ORDER BY idx", id)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	frames := make([]*frame.Frame, 0, count)
	for rows.Next() {
		var idx int
		var text string
		if err := rows.Scan(&idx, &text); err != nil {
			return nil, false, err
		}
		frames = append(frames, &frame.Frame{
			Index: idx,
			Rows:  strings.Split(text, "\n"),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	// Treat a partial entry as a miss
	if len(frames) != count {
		return nil, false, nil
	}

	return frames, true, nil
}

// AddFrames caches frames for the given image and parameters, replacing
// anything already cached for them.
func (db *SheetDB) AddFrames(sha1, params string, frames []*frame.Frame) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM sheet WHERE sha1 = ? AND params = ?", sha1, params); err != nil {
		return err
	}

	result, err := tx.Exec("INSERT INTO sheet (sha1, params, frames) VALUES (?, ?, ?)", sha1, params, len(frames))
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	for _, f := range frames {
		if _, err := tx.Exec("INSERT INTO frame (sheet_id, idx, chars) VALUES (?, ?, ?)", id, f.Index, strings.Join(f.Rows, "\n")); err != nil {
			return err
		}
	}

	return tx.Commit()
}
