package s4c

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchTarget(t *testing.T) {
	files := map[string]struct{}{"/a/sheet.png": {}}
	dirs := map[string]struct{}{"/b": {}}

	tables := []struct {
		name   string
		target string
		ok     bool
	}{
		{"/a/sheet.png", "/a/sheet.png", true},
		{"/a/other.png", "", false},
		{"/b/image1.png", "/b", true},
		{"/b/notes.txt", "", false},
		{"/c/image1.png", "", false},
	}

	for _, table := range tables {
		target, ok := watchTarget(table.name, files, dirs)
		assert.Equal(t, table.target, target)
		assert.Equal(t, table.ok, ok)
	}
}

// Watch paths, calling touch until fn is called, and return the path fn was
// called with
func watchChange(t *testing.T, paths []string, touch func()) string {
	s := testS4C(t, "")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	changed := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, paths, func(path string) error {
			select {
			case changed <- path:
			default:
			}
			return nil
		})
	}()

	// Keep touching until the watcher notices, it may not be ready on the
	// first write
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var path string
loop:
	for {
		select {
		case path = <-changed:
			break loop
		case <-ticker.C:
			touch()
		case <-ctx.Done():
			t.Fatal("timed out waiting for change")
		}
	}

	cancel()
	assert.Nil(t, <-done)

	return path
}

func TestWatch(t *testing.T) {
	dir, err := filepath.Abs(t.TempDir())
	require.Nil(t, err)
	writeImage(t, filepath.Join(dir, "image1.png"), []string{"B"})

	path := watchChange(t, []string{dir}, func() {
		writeImage(t, filepath.Join(dir, "image1.png"), []string{"W"})
	})
	assert.Equal(t, dir, path)
}

func TestWatchPalette(t *testing.T) {
	dir, err := filepath.Abs(t.TempDir())
	require.Nil(t, err)
	sheet := writeImage(t, filepath.Join(dir, "sheet.png"), testSheet)
	pal := filepath.Join(dir, "mono.gpl")
	require.Nil(t, ioutil.WriteFile(pal, []byte("GIMP Palette\n0 0 0 black\n"), 0644))

	path := watchChange(t, []string{sheet, pal}, func() {
		require.Nil(t, ioutil.WriteFile(pal, []byte("GIMP Palette\n0 0 0 black\n255 255 255 white\n"), 0644))
	})
	assert.Equal(t, pal, path)
}

func TestWatchMissing(t *testing.T) {
	s := testS4C(t, "")

	err := s.Watch(context.Background(), []string{filepath.Join(t.TempDir(), "missing.png")}, func(string) error {
		return nil
	})
	assert.NotNil(t, err)
}
