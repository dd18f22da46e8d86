package server

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle is how long the watcher waits for a burst of events to end before
// reloading. Editors often write a file in several steps.
const settle = 100 * time.Millisecond

// Watcher watches the navigation source and triggers reload.
type Watcher struct {
	watcher  *fsnotify.Watcher
	target   string
	isDir    bool
	onReload func(path string) error
	debug    bool
}

// NewWatcher creates a watcher for target, which is either the table of
// contents file or, for trees built from the filesystem, the book directory.
func NewWatcher(target string, onReload func(string) error, debug bool) (*Watcher, error) {
	target = filepath.Clean(target)
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("watching %s: %w", target, err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsWatcher,
		target:   target,
		isDir:    info.IsDir(),
		onReload: onReload,
		debug:    debug,
	}

	// A single file is watched through its directory so that editors that
	// replace the file on save are still seen.
	dir := target
	if !w.isDir {
		dir = filepath.Dir(target)
	}
	if err := w.addDirectoryRecursive(dir, w.isDir); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

// addDirectoryRecursive adds a directory, and its subdirectories when
// recursive is set, to the watcher.
func (w *Watcher) addDirectoryRecursive(dir string, recursive bool) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}

		// Skip hidden directories like .git
		if path != dir && (!recursive || strings.HasPrefix(info.Name(), ".")) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			return err
		}
		if w.debug {
			log.Printf("[Watch] Added directory: %s", path)
		}
		return nil
	})
}

// relevant reports whether event concerns the navigation source.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Clean(event.Name)
	if !w.isDir {
		return name == w.target
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(name); err == nil && info.IsDir() {
			if err := w.addDirectoryRecursive(name, true); err != nil {
				log.Printf("[Watch] Error adding %s: %v", name, err)
			}
			return true
		}
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown", ".html", ".htm":
		return true
	}
	return false
}

// Run delivers reloads until ctx is done. Events arriving within a short
// window of each other cause a single reload.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	var (
		pending <-chan time.Time
		last    string
	)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			last = event.Name
			if w.debug {
				log.Printf("[Watch] File changed: %s", last)
			}
			pending = time.After(settle)

		case <-pending:
			pending = nil
			if err := w.onReload(last); err != nil {
				log.Printf("[Watch] Reload failed for %s: %v", last, err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[Watch] Error: %v", err)

		case <-ctx.Done():
			return nil
		}
	}
}
