package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/loadout-dev/loadout/internal/logging"
)

const defaultDebounce = 250 * time.Millisecond

// sourceWatcher watches skill source trees and the config file, coalescing
// bursts of events into a single callback.
type sourceWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	watched  map[string]bool
}

func newSourceWatcher(paths []string, debounce time.Duration) (*sourceWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	w := &sourceWatcher{
		watcher:  watcher,
		debounce: debounce,
		watched:  make(map[string]bool),
	}
	if err := w.Reset(paths); err != nil {
		watcher.Close()
		return nil, err
	}
	return w, nil
}

// Reset adds any paths not yet watched. Directories are watched
// recursively; for a file its parent directory is watched so editors that
// replace files on save are still seen.
func (w *sourceWatcher) Reset(paths []string) error {
	for _, path := range paths {
		info, err := os.Stat(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			continue
		case err != nil:
			return err
		case info.IsDir():
			if err := w.addTree(path); err != nil {
				return err
			}
		default:
			if err := w.addDir(filepath.Dir(path)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *sourceWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.addDir(path)
	})
}

func (w *sourceWatcher) addDir(dir string) error {
	if w.watched[dir] {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.watched[dir] = true
	return nil
}

// Run delivers debounced change notifications to onChange until ctx is
// cancelled or the watcher is closed.
func (w *sourceWatcher) Run(ctx context.Context, onChange func()) error {
	logger := logging.FromContext(ctx)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !relevantEvent(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
				}
			}
			logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		case <-timer.C:
			onChange()
		}
	}
}

func (w *sourceWatcher) Close() error {
	return w.watcher.Close()
}

func relevantEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	return true
}
