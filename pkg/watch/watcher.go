// Package watch re-validates source map files as they change on disk. It
// wraps fsnotify with the debouncing a build pipeline needs: bundlers
// rewrite .map files several times in quick succession, and the consumer
// only cares about the final state.
package watch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for rewrites to settle
// before reporting a change.
const DefaultDebounce = 500 * time.Millisecond

// MapWatcher monitors a directory tree for source map file changes
type MapWatcher struct {
	watcher       *fsnotify.Watcher
	logger        Logger
	onChange      func(mapPath string)
	extensions    []string
	debounceTimer *time.Timer
	debounceDur   time.Duration
	pendingFiles  map[string]bool
	mu            sync.Mutex
	done          chan struct{}
	closed        bool
}

// Options tune a MapWatcher beyond its defaults.
type Options struct {
	// Extensions lists the file suffixes to report; defaults to ".map".
	Extensions []string
	// Debounce overrides DefaultDebounce when positive.
	Debounce time.Duration
}

// NewMapWatcher watches root recursively and invokes onChange for every
// matching file written, after the debounce window settles.
func NewMapWatcher(root string, logger Logger, onChange func(mapPath string), opts *Options) (*MapWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	mw := &MapWatcher{
		watcher:      watcher,
		logger:       logger,
		onChange:     onChange,
		extensions:   []string{".map"},
		debounceDur:  DefaultDebounce,
		pendingFiles: make(map[string]bool),
		done:         make(chan struct{}),
	}
	if opts != nil {
		if len(opts.Extensions) > 0 {
			mw.extensions = opts.Extensions
		}
		if opts.Debounce > 0 {
			mw.debounceDur = opts.Debounce
		}
	}

	if err := mw.watchRecursive(root); err != nil {
		watcher.Close()
		return nil, err
	}

	go mw.watchLoop()

	logger.Infof("Map watcher started (root: %s, debounce: %s)", root, mw.debounceDur)
	return mw, nil
}

// watchRecursive adds all directories under root to the watcher
func (mw *MapWatcher) watchRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() && mw.shouldIgnore(path) {
			mw.logger.Debugf("Ignoring directory: %s", path)
			return filepath.SkipDir
		}

		// fsnotify watches files through their parent directories
		if info.IsDir() {
			if err := mw.watcher.Add(path); err != nil {
				mw.logger.Warnf("Failed to watch %s: %v", path, err)
			} else {
				mw.logger.Debugf("Watching directory: %s", path)
			}
		}

		return nil
	})
}

// shouldIgnore checks if a directory should be skipped
func (mw *MapWatcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)

	ignoreDirs := []string{
		"node_modules",
		"vendor",
		".git",
		".cache",
		".idea",
		".vscode",
	}

	for _, ignore := range ignoreDirs {
		if base == ignore {
			return true
		}
	}

	if strings.HasPrefix(base, ".") && base != "." {
		return true
	}

	return false
}

// matches reports whether path carries one of the watched suffixes.
func (mw *MapWatcher) matches(path string) bool {
	for _, ext := range mw.extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// watchLoop processes file system events
func (mw *MapWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-mw.watcher.Events:
			if !ok {
				return
			}

			// New directories need their own watch registration.
			if event.Op&fsnotify.Create == fsnotify.Create {
				info, err := os.Stat(event.Name)
				if err == nil && info.IsDir() {
					if !mw.shouldIgnore(event.Name) {
						if err := mw.watcher.Add(event.Name); err != nil {
							mw.logger.Warnf("Failed to watch new directory %s: %v", event.Name, err)
						} else {
							mw.logger.Debugf("Started watching new directory: %s", event.Name)
						}
					}
				}
			}

			if !mw.matches(event.Name) {
				continue
			}

			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create {
				mw.logger.Debugf("File event: %s (%s)", event.Name, event.Op.String())
				mw.handleFileChange(event.Name)
			}

		case err, ok := <-mw.watcher.Errors:
			if !ok {
				return
			}
			mw.logger.Errorf("Map watcher error: %v", err)

		case <-mw.done:
			return
		}
	}
}

// handleFileChange adds a file to the pending set and resets the debounce timer
func (mw *MapWatcher) handleFileChange(mapPath string) {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	mw.pendingFiles[mapPath] = true

	if mw.debounceTimer != nil {
		mw.debounceTimer.Stop()
	}

	mw.debounceTimer = time.AfterFunc(mw.debounceDur, func() {
		mw.processPendingFiles()
	})
}

// processPendingFiles flushes every file that changed within the debounce window
func (mw *MapWatcher) processPendingFiles() {
	mw.mu.Lock()
	files := make([]string, 0, len(mw.pendingFiles))
	for path := range mw.pendingFiles {
		files = append(files, path)
	}
	mw.pendingFiles = make(map[string]bool)
	mw.mu.Unlock()

	for _, path := range files {
		mw.logger.Debugf("Processing debounced map change: %s", path)
		mw.onChange(path)
	}
}

// Close stops the watcher (idempotent)
func (mw *MapWatcher) Close() error {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	if mw.closed {
		return nil
	}

	mw.closed = true
	close(mw.done)
	return mw.watcher.Close()
}
