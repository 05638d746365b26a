// Package watcher provides debounced file system watching for a glyph tree.
package watcher

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/glyphkit/internal/log"
)

// Watcher monitors a glyph tree for PNG changes and sends notifications.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	root      string
	debounce  time.Duration
	onChange  chan struct{}
	done      chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	Root     string
	Debounce time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(root string) Config {
	return Config{
		Root:     root,
		Debounce: 200 * time.Millisecond,
	}
}

// New creates a new glyph tree watcher.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher: fsw,
		root:      cfg.Root,
		debounce:  cfg.Debounce,
		onChange:  make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching every directory under the root.
// Returns a channel that receives a signal when glyph files change.
func (w *Watcher) Start() (<-chan struct{}, error) {
	info, err := os.Stat(w.root)
	if err != nil {
		return nil, fmt.Errorf("watching %s: %w", w.root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watching %s: not a directory", w.root)
	}
	if err := w.addTree(w.root); err != nil {
		return nil, err
	}

	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

// addTree registers dir and all of its non-hidden subdirectories.
// fsnotify watches are not recursive.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// The directory may vanish between the event and the walk.
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return fmt.Errorf("watching directory %s: %w", path, err)
		}
		log.Debug(log.CatWatcher, "Watching directory", "path", path)
		return nil
	})
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending bool
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if !w.handleEvent(event) {
				continue
			}

			// Reset or start debounce timer
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				pending = true
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
				pending = true
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if pending {
				// Non-blocking send - drop if channel full
				select {
				case w.onChange <- struct{}{}:
				default:
				}
				pending = false
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "File watcher error", err, "root", w.root)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// handleEvent starts watching newly created directories and reports whether
// the event should trigger a notification.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	if isHidden(base) {
		return false
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				log.ErrorErr(log.CatWatcher, "Failed to watch new directory", err, "path", event.Name)
			}
			// A directory moved into the tree may already hold glyphs.
			return true
		}
	}

	return isRelevantEvent(event)
}

// isRelevantEvent checks if the event touches a glyph image.
func isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return strings.EqualFold(filepath.Ext(event.Name), ".png")
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
