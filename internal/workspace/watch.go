package workspace

import (
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// fsnotifyWatcher watches a project's lib/ directory for shard add/remove
// (spec.md §5: the one background goroutine permitted outside the
// single-threaded request loop) and flips an atomic flag the next
// Index.ForceScan consumes to force a lib rescan.
type fsnotifyWatcher struct {
	w    *fsnotify.Watcher
	done chan struct{}
}

// startLibWatcher best-effort watches <root>/lib for changes. A failure to
// create the watcher (e.g. inotify limits exhausted) is logged and
// degrades to no invalidation signal: lib/ is then scanned only once, by
// the first ForceScan, and later shard additions or removals are not picked
// up by the debounced rescans.
func startLibWatcher(root string, invalidated *atomic.Bool, log *zap.Logger) *fsnotifyWatcher {
	libDir := filepath.Join(root, "lib")
	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn("lib watcher unavailable", zap.Error(err))
		return nil
	}
	if err := w.Add(libDir); err != nil {
		// lib/ may not exist yet (no shards installed); that's fine.
		_ = w.Close()
		return nil
	}

	fw := &fsnotifyWatcher{w: w, done: make(chan struct{})}
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					invalidated.Store(true)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("lib watcher error", zap.Error(err))
			case <-fw.done:
				return
			}
		}
	}()
	return fw
}

// Stop tears down the watcher goroutine and underlying OS handle.
func (fw *fsnotifyWatcher) Stop() {
	if fw == nil {
		return
	}
	close(fw.done)
	_ = fw.w.Close()
}
