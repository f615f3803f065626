package loader

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/noded-go/engine/logger"
	"github.com/fsnotify/fsnotify"
)

// Watcher reports texture files that changed on disk. It watches the parent directory of
// every registered file, since editors often replace files instead of writing in place.
// Events are buffered by fsnotify and drained without blocking by Poll.
type Watcher struct {
	mu sync.Mutex

	watcher *fsnotify.Watcher
	// absolute path -> keys registered for it
	files map[string][]string
	dirs  map[string]int

	log logger.Logger
}

// NewWatcher creates a Watcher with no registered files.
//
// Returns:
//   - *Watcher: the watcher
//   - error: error if the underlying fsnotify watcher cannot be created
func NewWatcher() (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create texture watcher: %w", err)
	}
	return &Watcher{
		watcher: w,
		files:   make(map[string][]string),
		dirs:    make(map[string]int),
		log:     logger.New("texture"),
	}, nil
}

// Watch registers a texture key (its file path) for change notifications. Registering
// the same key twice has no effect.
//
// Parameters:
//   - key: the texture path as used by Texture nodes
//
// Returns:
//   - error: error if the path cannot be resolved or its directory cannot be watched
func (w *Watcher) Watch(key string) error {
	abs, err := filepath.Abs(key)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", key, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for _, k := range w.files[abs] {
		if k == key {
			return nil
		}
	}

	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[abs] = append(w.files[abs], key)
	return nil
}

// Unwatch removes a texture key registered with Watch.
func (w *Watcher) Unwatch(key string) {
	abs, err := filepath.Abs(key)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	keys := w.files[abs]
	for i, k := range keys {
		if k != key {
			continue
		}
		keys = append(keys[:i], keys[i+1:]...)
		if len(keys) == 0 {
			delete(w.files, abs)
		} else {
			w.files[abs] = keys
		}

		dir := filepath.Dir(abs)
		w.dirs[dir]--
		if w.dirs[dir] <= 0 {
			delete(w.dirs, dir)
			_ = w.watcher.Remove(dir)
		}
		return
	}
}

// Poll drains pending file events without blocking and returns the keys whose files were
// written, created or renamed into place, each at most once.
//
// Returns:
//   - []string: changed texture keys in event order
func (w *Watcher) Poll() []string {
	var changed []string
	seen := make(map[string]struct{})

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return changed
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			w.mu.Lock()
			keys := w.files[abs]
			w.mu.Unlock()
			for _, k := range keys {
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
				changed = append(changed, k)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return changed
			}
			w.log.Warningf("watch error: %v", err)
		default:
			return changed
		}
	}
}

// Close stops watching every file.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
