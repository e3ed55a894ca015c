// Package fsnotify implements the ports.Watcher interface using
// github.com/fsnotify/fsnotify. It recursively watches a directory, skips
// VCS and editor noise, and debounces rapid events (editors often trigger
// multiple writes per save). The watch command uses it to rescan changed
// files against a compiled keyword tree.
package fsnotify

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Directories to ignore when watching.
var ignoreDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	".idea":        true,
	".vscode":      true,
}

// File names/suffixes to ignore.
var ignoreFiles = map[string]bool{
	".DS_Store": true,
	".swp":      true,
	".swx":      true,
	".tmp":      true,
}

const debounceInterval = 50 * time.Millisecond

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw      *fsnotify.Watcher
	done    chan struct{}
	stopped bool
	mu      sync.Mutex

	// debounce tracks the last event time per file.
	debounce map[string]time.Time
	dmu      sync.Mutex
}

// NewWatcher creates a new file system watcher.
func NewWatcher() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:       fw,
		done:     make(chan struct{}),
		debounce: make(map[string]time.Time),
	}, nil
}

// Watch starts monitoring path recursively.
// onChange is called with the absolute path of each changed file.
func (w *Watcher) Watch(path string, onChange func(filePath string)) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	// Walk and add all directories
	err = filepath.Walk(absPath, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if info.IsDir() {
			if ignoreDirs[info.Name()] && p != absPath {
				return filepath.SkipDir
			}
			return w.fw.Add(p)
		}
		return nil
	})
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				w.handleEvent(event, onChange)
			case _, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				// Errors are swallowed — fsnotify recovers automatically
			case <-w.done:
				return
			}
		}
	}()

	return nil
}

func (w *Watcher) handleEvent(event fsnotify.Event, onChange func(filePath string)) {
	path := event.Name

	// New directories join the watch list.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !ignoreDirs[info.Name()] {
				w.fw.Add(path)
			}
		}
	}

	if shouldIgnorePath(path) {
		return
	}

	// Debounce: skip if we've seen this file recently.
	w.dmu.Lock()
	last, seen := w.debounce[path]
	now := time.Now()
	if seen && now.Sub(last) < debounceInterval {
		w.dmu.Unlock()
		return
	}
	w.debounce[path] = now
	w.dmu.Unlock()

	if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		onChange(path)
	}
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

// shouldIgnorePath returns true if the path should not trigger onChange.
func shouldIgnorePath(path string) bool {
	base := filepath.Base(path)
	if ignoreFiles[base] {
		return true
	}
	for suffix := range ignoreFiles {
		if strings.HasSuffix(base, suffix) {
			return true
		}
	}
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if ignoreDirs[part] {
			return true
		}
	}
	return false
}
