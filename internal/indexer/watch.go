package indexer

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"cce/internal/cerrors"
	"cce/internal/logging"
)

// Watch starts an fsnotify watch on root, debouncing bursts of filesystem
// events per cfg.DebounceMillis and coalescing them into a rescan no more
// often than cfg.CoalesceMillis, per spec §4.1. It is a no-op unless
// cfg.EnableWatch is set. Emitted Events are diffed the same way ScanRoot
// diffs them. The returned channel is closed when ctx is cancelled.
func (idx *Indexer) Watch(ctx context.Context, root string) (<-chan []Event, error) {
	if !idx.cfg.EnableWatch {
		ch := make(chan []Event)
		close(ch)
		return ch, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, cerrors.New(cerrors.IOError, "Indexer.Watch", err)
	}
	if err := addRecursive(watcher, root); err != nil {
		watcher.Close()
		return nil, cerrors.New(cerrors.IOError, "Indexer.Watch", err)
	}

	out := make(chan []Event)
	debounce := time.Duration(idx.cfg.DebounceMillis) * time.Millisecond
	coalesce := time.Duration(idx.cfg.CoalesceMillis) * time.Millisecond
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	if coalesce <= 0 {
		coalesce = time.Second
	}

	go func() {
		defer close(out)
		defer watcher.Close()

		var pending bool
		debounceTimer := time.NewTimer(debounce)
		if !debounceTimer.Stop() {
			<-debounceTimer.C
		}
		lastScan := time.Time{}

		rescan := func() {
			if time.Since(lastScan) < coalesce {
				return
			}
			lastScan = time.Now()
			_, events, _, err := idx.ScanRoot(ctx, root)
			if err != nil {
				logging.Get(logging.CategoryIndexer).Warn("watch rescan failed for %s: %v", root, err)
				return
			}
			if len(events) > 0 {
				select {
				case out <- events:
				case <-ctx.Done():
				}
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Events:
				if !ok {
					return
				}
				pending = true
				if !debounceTimer.Stop() {
					select {
					case <-debounceTimer.C:
					default:
					}
				}
				debounceTimer.Reset(debounce)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Get(logging.CategoryIndexer).Warn("fsnotify error: %v", err)
			case <-debounceTimer.C:
				if pending {
					if wait := coalesce - time.Since(lastScan); wait > 0 {
						debounceTimer.Reset(wait)
						continue
					}
					pending = false
					rescan()
				}
			}
		}
	}()

	return out, nil
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
