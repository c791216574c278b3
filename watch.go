package s4c

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDelay = 250 * time.Millisecond

// debouncer coalesces rapid event bursts into a single callback per path.
type debouncer struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	delay  time.Duration
	onFire func(path string)
}

func newDebouncer(delay time.Duration, onFire func(path string)) *debouncer {
	return &debouncer{
		timers: make(map[string]*time.Timer),
		delay:  delay,
		onFire: onFire,
	}
}

func (d *debouncer) trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[path]; ok {
		t.Reset(d.delay)
		return
	}
	d.timers[path] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, path)
		d.mu.Unlock()
		d.onFire(path)
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path, t := range d.timers {
		t.Stop()
		delete(d.timers, path)
	}
}

// Which watched path, if any, an event for name belongs to
func watchTarget(name string, files, dirs map[string]struct{}) (string, bool) {
	if _, ok := files[name]; ok {
		return name, true
	}
	dir := filepath.Dir(name)
	if _, ok := dirs[dir]; ok && filepath.Ext(name) == ".png" {
		return dir, true
	}
	return "", false
}

// Watch calls fn with the path of each watched file or directory when it
// changes, until ctx is cancelled. Changes to any PNG within a watched
// directory are reported as a change to the directory. Calls to fn are never
// concurrent; an error from fn is logged and watching continues.
func (s *S4C) Watch(ctx context.Context, paths []string, fn func(path string) error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	// Releases any debounced callback still waiting to be delivered
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	files := make(map[string]struct{})
	dirs := make(map[string]struct{})
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return err
		}

		// Watch the parent of a file so editors that replace rather
		// than rewrite it are still noticed
		watched := abs
		if info.IsDir() {
			dirs[abs] = struct{}{}
		} else {
			files[abs] = struct{}{}
			watched = filepath.Dir(abs)
		}
		if err := w.Add(watched); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		s.logger.Printf("Watching \"%s\"\n", abs)
	}

	fired := make(chan string)
	d := newDebouncer(watchDelay, func(path string) {
		select {
		case fired <- path:
		case <-ctx.Done():
		}
	})
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			if target, ok := watchTarget(ev.Name, files, dirs); ok {
				d.trigger(target)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher: %w", err)
		case path := <-fired:
			if err := fn(path); err != nil {
				s.logger.Printf("Unable to convert \"%s\": %v\n", path, err)
			}
		}
	}
}
