// Package watch recomputes status snapshots when the repository changes on
// disk.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/craftlabs/treestate/engine"
	"github.com/craftlabs/treestate/gitdir"
	"github.com/craftlabs/treestate/internal/log"
	"github.com/craftlabs/treestate/status"
)

// DefaultDebounce is the quiet window after a filesystem event before a
// snapshot is recomputed.
const DefaultDebounce = 600 * time.Millisecond

// Watcher emits fresh StatusResult snapshots when the repository metadata or
// worktree changes. A recompute that fails is logged and dropped; no partial
// snapshot is ever delivered.
type Watcher struct {
	eng      *engine.Engine
	dir      *gitdir.Dir
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	paths   map[string]struct{}
	roots   []string

	snapshots chan *status.StatusResult
	done      chan struct{}
	started   bool
}

// New builds a Watcher for an already-opened repository. A non-positive
// debounce uses DefaultDebounce.
func New(eng *engine.Engine, dir *gitdir.Dir, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{eng: eng, dir: dir, debounce: debounce}
}

// Start begins watching and returns the snapshot channel. The channel closes
// when ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) (<-chan *status.StatusResult, error) {
	w.mu.Lock()
	if w.started {
		snapshots := w.snapshots
		w.mu.Unlock()
		return snapshots, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return nil, err
	}

	w.watcher = watcher
	w.paths = make(map[string]struct{})
	w.snapshots = make(chan *status.StatusResult, 1)
	w.done = make(chan struct{})
	w.started = true
	w.roots = []string{
		w.dir.GitDir,
		filepath.Join(w.dir.GitDir, "refs"),
		w.dir.WorkDir,
	}
	snapshots := w.snapshots
	w.mu.Unlock()

	w.addDir(w.dir.GitDir)
	w.addTree(filepath.Join(w.dir.GitDir, "refs"))
	w.addTree(w.dir.WorkDir)

	go w.run(ctx, watcher, w.done, snapshots)
	return snapshots, nil
}

// Stop stops the watcher and closes the snapshot channel.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	w.started = false
	close(w.done)
	if w.watcher != nil {
		_ = w.watcher.Close()
	}
}

func (w *Watcher) run(ctx context.Context, watcher *fsnotify.Watcher, done chan struct{}, snapshots chan *status.StatusResult) {
	defer close(snapshots)

	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				w.maybeWatchNewDir(event.Name)
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			w.emit(ctx, snapshots)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watcher error: %v", err)
		}
	}
}

// emit recomputes a snapshot and delivers it, dropping the oldest undelivered
// one so a slow consumer always sees the freshest state.
func (w *Watcher) emit(ctx context.Context, snapshots chan *status.StatusResult) {
	snapshot, err := w.eng.GetStatus(ctx)
	if err != nil {
		log.Printf("watcher: status recompute failed: %v", err)
		return
	}
	select {
	case snapshots <- snapshot:
	default:
		select {
		case <-snapshots:
		default:
		}
		select {
		case snapshots <- snapshot:
		default:
		}
	}
}

// maybeWatchNewDir registers directories created under a watch root.
func (w *Watcher) maybeWatchNewDir(path string) {
	if !w.underRoot(path) {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	w.addDir(path)
}

func (w *Watcher) underRoot(path string) bool {
	for _, root := range w.roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) addDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.paths[path]; ok {
		return
	}
	if err := w.watcher.Add(path); err != nil {
		log.Printf("watcher add failed for %s: %v", path, err)
		return
	}
	w.paths[path] = struct{}{}
}

func (w *Watcher) addTree(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path == w.dir.GitDir && root == w.dir.WorkDir {
			return filepath.SkipDir
		}
		w.addDir(path)
		return nil
	})
}
