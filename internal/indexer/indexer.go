// Package indexer implements the Workspace Indexer (spec §4.1): it walks
// configured root directories, applies .gitignore/.platoignore exclusion,
// and emits model.FileIndex records for files that pass the extension
// allowlist and size cap.
package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"cce/internal/cerrors"
	"cce/internal/config"
	"cce/internal/ignore"
	"cce/internal/logging"
	"cce/internal/model"
)

// Progress is an immutable snapshot of an in-flight or completed scan,
// suitable for reporting to a caller (CLI progress bar, metrics sink).
type Progress struct {
	Root           string
	FilesScanned   int
	FilesIndexed   int
	FilesSkipped   int
	DirectoriesSeen int
	Errors         int
	Done           bool
	Elapsed        time.Duration
}

// Event describes a change detected between two scans of the same root.
type Event struct {
	Kind EventKind
	Path string
}

// EventKind enumerates the change types a rescan can observe.
type EventKind string

const (
	EventAdded    EventKind = "added"
	EventModified EventKind = "modified"
	EventRemoved  EventKind = "removed"
)

// Indexer walks workspace roots and produces model.FileIndex records.
type Indexer struct {
	cfg config.IndexerConfig

	mu       sync.RWMutex
	known    map[string]model.FileIndex // path -> last observed index
}

// New creates an Indexer bound to cfg.
func New(cfg config.IndexerConfig) *Indexer {
	return &Indexer{
		cfg:   cfg,
		known: make(map[string]model.FileIndex),
	}
}

// ScanRoot walks root to depth cfg.MaxDepth, honoring ignore files and the
// extension/size filters, and returns the file indexes it built along with
// a Progress summary. It is safe to call repeatedly; each call diffs
// against the Indexer's prior known state to produce Events.
func (idx *Indexer) ScanRoot(ctx context.Context, root string) ([]model.FileIndex, []Event, Progress, error) {
	start := time.Now()
	timer := logging.StartTimer(logging.CategoryIndexer, "ScanRoot")
	defer timer.Stop()

	matcher := ignore.LoadForRoot(root)

	var (
		mu      sync.Mutex
		results []model.FileIndex
		prog    Progress
		wg      sync.WaitGroup
		sem     = semaphore.NewWeighted(int64(maxInt(idx.cfg.ConcurrentPerRoot, 1)))
	)
	prog.Root = root

	walkErr := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil {
			logging.Get(logging.CategoryIndexer).Warn("walk error at %s: %v", path, err)
			mu.Lock()
			prog.Errors++
			mu.Unlock()
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		depth := strings.Count(filepath.ToSlash(rel), "/")

		if info.IsDir() {
			if path != root && matcher.Match(rel, true) {
				mu.Lock()
				prog.FilesSkipped++
				mu.Unlock()
				return filepath.SkipDir
			}
			if idx.cfg.MaxDepth > 0 && depth >= idx.cfg.MaxDepth {
				return filepath.SkipDir
			}
			mu.Lock()
			prog.DirectoriesSeen++
			mu.Unlock()
			return nil
		}

		mu.Lock()
		prog.FilesScanned++
		mu.Unlock()

		if matcher.Match(rel, false) {
			mu.Lock()
			prog.FilesSkipped++
			mu.Unlock()
			return nil
		}
		if !idx.cfg.IncludeTests && isTestFile(path) {
			mu.Lock()
			prog.FilesSkipped++
			mu.Unlock()
			return nil
		}
		if !extensionAllowed(path, idx.cfg.FileExtensions) {
			mu.Lock()
			prog.FilesSkipped++
			mu.Unlock()
			return nil
		}
		if info.Size() > idx.cfg.MaxFileSizeBytes {
			mu.Lock()
			prog.FilesSkipped++
			mu.Unlock()
			return nil
		}

		wg.Add(1)
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Done()
			return nil
		}
		go func(path string, info os.FileInfo) {
			defer wg.Done()
			defer sem.Release(1)

			fi, err := buildFileIndex(path, info)
			if err != nil {
				logging.Get(logging.CategoryIndexer).Warn("index error at %s: %v", path, err)
				mu.Lock()
				prog.Errors++
				mu.Unlock()
				return
			}
			mu.Lock()
			results = append(results, fi)
			prog.FilesIndexed++
			mu.Unlock()
		}(path, info)
		return nil
	})
	wg.Wait()

	if walkErr != nil {
		return nil, nil, prog, cerrors.New(cerrors.IOError, "Indexer.ScanRoot", walkErr)
	}

	events := idx.diff(root, results)

	idx.mu.Lock()
	for _, fi := range results {
		idx.known[fi.Path] = fi
	}
	for _, ev := range events {
		if ev.Kind == EventRemoved {
			delete(idx.known, ev.Path)
		}
	}
	idx.mu.Unlock()

	prog.Done = true
	prog.Elapsed = time.Since(start)
	logging.Get(logging.CategoryIndexer).Info(
		"scan complete root=%s indexed=%d skipped=%d errors=%d elapsed=%v",
		root, prog.FilesIndexed, prog.FilesSkipped, prog.Errors, prog.Elapsed)

	return results, events, prog, nil
}

// diff compares fresh against the previously known state for files under
// root and returns added/modified/removed events.
func (idx *Indexer) diff(root string, fresh []model.FileIndex) []Event {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	seen := make(map[string]bool, len(fresh))
	var events []Event
	for _, fi := range fresh {
		seen[fi.Path] = true
		prior, ok := idx.known[fi.Path]
		switch {
		case !ok:
			events = append(events, Event{Kind: EventAdded, Path: fi.Path})
		case prior.ContentHash != fi.ContentHash:
			events = append(events, Event{Kind: EventModified, Path: fi.Path})
		}
	}
	for path := range idx.known {
		if !strings.HasPrefix(path, root) {
			continue
		}
		if !seen[path] {
			events = append(events, Event{Kind: EventRemoved, Path: path})
		}
	}
	return events
}

func buildFileIndex(path string, info os.FileInfo) (model.FileIndex, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return model.FileIndex{}, fmt.Errorf("read %s: %w", path, err)
	}
	sum := sha256.Sum256(content)
	return model.FileIndex{
		Path:         path,
		ContentHash:  hex.EncodeToString(sum[:8]),
		Size:         info.Size(),
		LastModified: info.ModTime().Unix(),
	}, nil
}

func extensionAllowed(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, want := range exts {
		if ext == want {
			return true
		}
	}
	return false
}

func isTestFile(path string) bool {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	suffixes := []string{"_test", ".test", ".spec"}
	for _, s := range suffixes {
		if strings.HasSuffix(stem, s) {
			return true
		}
	}
	return strings.Contains(path, string(filepath.Separator)+"test"+string(filepath.Separator)) ||
		strings.Contains(path, string(filepath.Separator)+"__tests__"+string(filepath.Separator))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
