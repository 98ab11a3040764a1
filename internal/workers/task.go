// Package workers implements the Background Worker pool (spec §4.12): a
// fixed-size pool of goroutines consuming typed, prioritized tasks, with
// per-task timeout and worker replacement on timeout or crash.
package workers

import "context"

// Kind enumerates the task categories the pool accepts.
type Kind string

const (
	KindFileAnalysis     Kind = "file_analysis"
	KindBatchIndexing    Kind = "batch_indexing"
	KindRelevanceScoring Kind = "relevance_scoring"
	KindContentSampling  Kind = "content_sampling"
	KindSerialization    Kind = "serialization"
	KindSymbolExtraction Kind = "symbol_extraction"
	KindImportGraphBuild Kind = "import_graph_build"
)

// Priority is a task's dispatch priority; higher values run first.
type Priority int

const (
	PriorityLow    Priority = 0
	PriorityNormal Priority = 5
	PriorityHigh   Priority = 10
)

// Func is the work a task performs. It receives a context honoring the
// task's timeout and the pool's shutdown signal.
type Func func(ctx context.Context) (interface{}, error)

// Task is one unit of work submitted to the pool.
type Task struct {
	Kind     Kind
	Priority Priority
	Run      Func
}

// Future is returned by Submit; callers receive the task's result or
// error once it completes.
type Future struct {
	done   chan struct{}
	result interface{}
	err    error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) complete(result interface{}, err error) {
	f.result = result
	f.err = err
	close(f.done)
}

// Wait blocks until the task completes, or ctx is cancelled first.
func (f *Future) Wait(ctx context.Context) (interface{}, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done reports whether the future has already completed, without blocking.
func (f *Future) Done() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
