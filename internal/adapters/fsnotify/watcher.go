// Package fsnotify implements the ports.Watcher interface using github.com/fsnotify/fsnotify.
// It recursively watches a notes directory, filters out non-note files and directories,
// and debounces rapid events (editors often trigger multiple writes per save).
// Callbacks run on timer goroutines and may overlap for different paths.
package fsnotify

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
)

// Directories to ignore when watching.
var ignoreDirs = map[string]bool{
	".git":         true,
	".notelink":    true,
	".obsidian":    true,
	".trash":       true,
	"node_modules": true,
}

// Editor droppings that share a note extension or shadow a note file.
var ignoreSuffixes = []string{
	".swp",
	".swx",
	"~",
	".tmp",
	".DS_Store",
}

const debounceInterval = 50 * time.Millisecond

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw      *fsnotify.Watcher
	accept  func(path string) bool
	log     logr.Logger
	done    chan struct{}
	stopped bool
	mu      sync.Mutex
}

// NewWatcher creates a new file system watcher. accept decides which file
// paths are notes; nil accepts every file outside ignored directories.
func NewWatcher(accept func(path string) bool, log logr.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if accept == nil {
		accept = func(string) bool { return true }
	}
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Watcher{
		fw:     fw,
		accept: accept,
		log:    log.WithName("watcher"),
		done:   make(chan struct{}),
	}, nil
}

// Watch starts monitoring notesPath recursively.
// onChange is called with the absolute path of each changed note file, and
// with the path of anything else removed or renamed away, which may be a
// directory that held notes.
func (w *Watcher) Watch(notesPath string, onChange func(filePath string)) error {
	absPath, err := filepath.Abs(notesPath)
	if err != nil {
		return err
	}
	if info, err := os.Stat(absPath); err != nil {
		return err
	} else if !info.IsDir() {
		return &os.PathError{Op: "watch", Path: absPath, Err: os.ErrInvalid}
	}

	// Walk and add all directories
	err = filepath.Walk(absPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if info.IsDir() {
			if shouldIgnoreDir(info.Name()) && path != absPath {
				return filepath.SkipDir
			}
			return w.fw.Add(path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Trailing-edge debounce: each event re-arms the path's timer; the
	// callback fires once the path has been quiet for debounceInterval.
	// pending is only touched by the event goroutine.
	pending := make(map[string]*time.Timer)
	schedule := func(path, op string) {
		if t, ok := pending[path]; ok {
			t.Stop()
		}
		pending[path] = time.AfterFunc(debounceInterval, func() {
			select {
			case <-w.done:
				return
			default:
			}
			w.log.V(1).Info("note changed", "path", path, "op", op)
			onChange(path)
		})
	}

	go func() {
		defer func() {
			for _, t := range pending {
				t.Stop()
			}
		}()
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				path := event.Name
				if shouldIgnorePath(path) {
					continue
				}

				// A directory created or moved into the tree brings its
				// notes and subdirectories with it
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(path); err == nil && info.IsDir() {
						w.addTree(path, schedule)
						continue
					}
				}

				gone := event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
				if !w.accept(path) {
					// Without a note extension this may be a directory that
					// left the tree; the callback drops its notes.
					if !gone {
						continue
					}
					_ = w.fw.Remove(path)
				} else if !gone && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				schedule(path, event.Op.String())

			case err, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				// fsnotify recovers on its own; record and keep going
				w.log.Error(err, "watch error")

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// addTree watches dir and every subdirectory, and schedules the notes
// already inside them. Files that landed before the watch raise no events.
func (w *Watcher) addTree(dir string, schedule func(path, op string)) {
	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if shouldIgnoreDir(info.Name()) && path != dir {
				return filepath.SkipDir
			}
			if err := w.fw.Add(path); err != nil {
				w.log.Error(err, "watch new directory", "path", path)
			}
			return nil
		}
		if !shouldIgnorePath(path) && w.accept(path) {
			schedule(path, "CREATE")
		}
		return nil
	})
}

// Stop ends monitoring and releases all resources.
// Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.done)
	return w.fw.Close()
}

// shouldIgnoreDir returns true if the directory name should be skipped.
func shouldIgnoreDir(name string) bool {
	return ignoreDirs[name]
}

// shouldIgnorePath returns true if the file path should not trigger onChange.
func shouldIgnorePath(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".#") {
		return true
	}
	for _, suffix := range ignoreSuffixes {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}

	// Check if any path component is an ignored directory
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if ignoreDirs[part] {
			return true
		}
	}

	return false
}
