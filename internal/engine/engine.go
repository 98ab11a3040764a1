// Package engine wires every Conversation Context Engine subsystem
// together behind one explicit root value (spec §9's redesign note:
// replaces ambient singletons/orchestrators with an Engine owning the
// Semantic Index, caches, worker pool, and metrics; tests construct
// fresh Engines rather than reaching for package-level state).
package engine

import (
	"context"
	"os"
	"sync"
	"time"

	"cce/internal/cache"
	"cce/internal/compaction"
	"cce/internal/config"
	"cce/internal/index"
	"cce/internal/indexer"
	"cce/internal/logging"
	"cce/internal/model"
	"cce/internal/persistence"
	"cce/internal/relevance"
	"cce/internal/sampler"
	"cce/internal/semantic"
	"cce/internal/workers"
)

// Engine is the root aggregate: every call a host makes against the CCE
// goes through one of its methods.
type Engine struct {
	mu sync.RWMutex

	cfg config.EngineConfig

	indexer    *indexer.Indexer
	analyzer   *semantic.Analyzer
	semIndex   *index.Index
	cacheTier  *cache.Tier
	relevance  *relevance.Engine
	sampler    *sampler.Sampler
	compactor  *compaction.Engine
	store      *persistence.Store
	pool       *workers.Pool

	sessionID string
	startTime time.Time
}

// New constructs an Engine with every subsystem wired per cfg. This is
// the CCE's one constructor; callers inject configuration explicitly
// rather than relying on defaults discovered deep in a call chain.
func New(cfg config.EngineConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTier, err := cache.NewTier(cfg.Cache)
	if err != nil {
		return nil, err
	}

	store, err := persistence.Open(cfg.Persistence)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:       cfg,
		indexer:   indexer.New(cfg.Indexer),
		analyzer:  semantic.NewAnalyzer(),
		semIndex:  index.New(),
		cacheTier: cacheTier,
		relevance: relevance.New(cfg.Relevance),
		sampler:   sampler.New(),
		compactor: compaction.New(cfg.Compaction),
		store:     store,
		pool:      workers.New(cfg.Workers),
		startTime: time.Now(),
	}
	logging.Get(logging.CategoryEngine).Info("engine initialized")
	return e, nil
}

// Shutdown stops the worker pool and closes the persistence store. It is
// the inverse of New and should be called once per Engine lifetime.
func (e *Engine) Shutdown() {
	e.pool.Shutdown()
	if err := e.store.Close(); err != nil {
		logging.Get(logging.CategoryEngine).Warn("error closing persistence store: %v", err)
	}
}

// IndexRoots walks every root, analyzes each resulting file, and merges
// the outcome into the Semantic Index. Returns one indexer Progress per
// root, in the order the roots were given.
func (e *Engine) IndexRoots(ctx context.Context, roots []string) ([]indexer.Progress, error) {
	var progresses []indexer.Progress
	for _, root := range roots {
		files, _, prog, err := e.indexer.ScanRoot(ctx, root)
		if err != nil {
			return progresses, err
		}
		for _, fi := range files {
			content, readErr := os.ReadFile(fi.Path)
			if readErr != nil {
				continue
			}
			analyzed, edges, analyzeErr := e.analyzer.Analyze(fi.Path, content)
			if analyzeErr != nil {
				continue
			}
			analyzed.ContentHash = fi.ContentHash
			analyzed.Size = fi.Size
			analyzed.LastModified = fi.LastModified

			e.mu.Lock()
			e.semIndex.Upsert(analyzed, edges)
			e.mu.Unlock()
		}
		progresses = append(progresses, prog)
	}
	e.mu.Lock()
	e.semIndex.BuildImportGraph()
	e.mu.Unlock()
	return progresses, nil
}

// SyncRoot rescans a single root and returns what changed.
func (e *Engine) SyncRoot(ctx context.Context, root string) ([]indexer.Event, error) {
	files, events, _, err := e.indexer.ScanRoot(ctx, root)
	if err != nil {
		return nil, err
	}
	for _, fi := range files {
		content, readErr := os.ReadFile(fi.Path)
		if readErr != nil {
			continue
		}
		analyzed, edges, analyzeErr := e.analyzer.Analyze(fi.Path, content)
		if analyzeErr != nil {
			continue
		}
		analyzed.ContentHash = fi.ContentHash
		analyzed.Size = fi.Size
		analyzed.LastModified = fi.LastModified

		e.mu.Lock()
		e.semIndex.Upsert(analyzed, edges)
		e.mu.Unlock()
	}
	for _, ev := range events {
		if ev.Kind == indexer.EventRemoved {
			e.mu.Lock()
			e.semIndex.Remove(ev.Path)
			e.mu.Unlock()
		}
	}
	e.mu.Lock()
	e.semIndex.BuildImportGraph()
	e.mu.Unlock()
	return events, nil
}

// FileIndexOf returns the indexed record for path, if present.
func (e *Engine) FileIndexOf(path string) (model.FileIndex, bool) {
	return e.semIndex.Get(path)
}

// SymbolReferences delegates to the Semantic Index.
func (e *Engine) SymbolReferences(name string) map[string][]model.Symbol {
	return e.semIndex.SymbolReferences(name)
}

// AllFiles returns a snapshot of every currently indexed file, sorted by
// path, for callers building a ranking candidate set.
func (e *Engine) AllFiles() []model.FileIndex {
	return e.semIndex.All()
}

// ImportMaps returns the forward and inverse import views the relevance
// engine's import-chain signal needs.
func (e *Engine) ImportMaps() (importsOf, importedBy map[string][]string) {
	return e.semIndex.ImportMaps()
}

// Rank ranks candidates by relevance given in.
func (e *Engine) Rank(in relevance.Input) []model.RelevanceScore {
	return e.relevance.Rank(in)
}

// Sample produces content samples for the given candidates within budget.
func (e *Engine) Sample(candidates []sampler.Candidate, totalTokenBudget int) []model.ContentSample {
	return e.sampler.Sample(candidates, totalTokenBudget)
}

// Compact delegates to the compaction engine.
func (e *Engine) Compact(t model.Transcript, opts compaction.Options) (compaction.Result, error) {
	return e.compactor.Compact(t, opts)
}

// Rollback delegates to the compaction engine's rollback registry.
func (e *Engine) Rollback(token string) (model.Transcript, bool) {
	return e.compactor.Rollback(token)
}

// EvaluateUtility delegates to the compaction engine.
func (e *Engine) EvaluateUtility(original, compacted model.Transcript) model.QualityMetrics {
	return e.compactor.EvaluateUtility(original, compacted)
}

// SaveSession serializes the current index and persists a session file.
func (e *Engine) SaveSession(prefs model.UserPreferences, currentFiles []string) error {
	e.mu.RLock()
	data, err := e.semIndex.Serialize()
	e.mu.RUnlock()
	if err != nil {
		return err
	}
	state := model.SessionState{
		Version:         "1.0.0",
		Timestamp:       time.Now(),
		Index:           string(data),
		CurrentFiles:    currentFiles,
		UserPreferences: prefs,
		Metadata: model.SessionMetadata{
			StartTime:    e.startTime,
			LastActivity: time.Now(),
		},
	}
	return e.store.Save(state)
}

// LoadSession loads the session file, smart-resuming it against the
// Engine's current in-memory file list when one already exists.
func (e *Engine) LoadSession(currentFiles []string) (*model.SessionState, []model.Warning, error) {
	saved, warnings, err := e.store.Load()
	if err != nil || saved == nil {
		return saved, warnings, err
	}
	if err := e.semIndex.Deserialize([]byte(saved.Index)); err != nil {
		warnings = append(warnings, model.Warning{Field: "index", Message: "failed to rehydrate index: " + err.Error()})
	}
	current := model.SessionState{
		CurrentFiles: currentFiles,
		Metadata:     model.SessionMetadata{StartTime: e.startTime, LastActivity: time.Now()},
	}
	merged := persistence.Merge(*saved, current, e.cfg.Persistence.PreferSaved)
	return &merged, warnings, nil
}

// CreateBackup snapshots the current session file.
func (e *Engine) CreateBackup() error { return e.store.CreateBackup() }

// RestoreFromBackup restores the session file from its backup sibling.
func (e *Engine) RestoreFromBackup() (*model.SessionState, []model.Warning, error) {
	return e.store.RestoreFromBackup()
}

// Submit enqueues a single background task.
func (e *Engine) Submit(t workers.Task) *workers.Future { return e.pool.Submit(t) }

// SubmitBatch enqueues a batch of background tasks.
func (e *Engine) SubmitBatch(ts []workers.Task) []*workers.Future { return e.pool.SubmitBatch(ts) }

// Stats returns the worker pool's current counters.
func (e *Engine) Stats() workers.Stats { return e.pool.StatsSnapshot() }

