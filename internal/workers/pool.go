package workers

import (
	"container/heap"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"cce/internal/cerrors"
	"cce/internal/config"
	"cce/internal/logging"
)

// queueItem wraps a Task with its future and a monotonic sequence number
// so equal-priority tasks dispatch FIFO (spec §4.12).
type queueItem struct {
	task     Task
	future   *Future
	seq      int64
	priority Priority
	index    int // heap bookkeeping
}

type priorityQueue []*queueItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].priority != pq[j].priority {
		return pq[i].priority > pq[j].priority // higher priority first
	}
	return pq[i].seq < pq[j].seq // FIFO within equal priority
}
func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index, pq[j].index = i, j
}
func (pq *priorityQueue) Push(x interface{}) {
	item := x.(*queueItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]
	return item
}

// Stats is an immutable snapshot of pool counters, safe to poll
// concurrently (spec §4 supplement: mirrors the teacher's progress
// snapshot pattern rather than exposing live counters directly).
type Stats struct {
	Total          int64
	Completed      int64
	Failed         int64
	AvgDuration    time.Duration
	ActiveWorkers  int64
	Queued         int64
}

// Pool is the fixed-size background worker pool.
type Pool struct {
	cfg config.WorkerConfig

	mu       sync.Mutex
	cond     *sync.Cond
	queue    priorityQueue
	nextSeq  int64
	shutdown bool
	wg       sync.WaitGroup

	total         int64
	completed     int64
	failed        int64
	active        int64
	totalDuration int64 // nanoseconds, atomic
}

// New starts a pool sized by cfg.ResolvedWorkerCount().
func New(cfg config.WorkerConfig) *Pool {
	p := &Pool{cfg: cfg}
	p.cond = sync.NewCond(&p.mu)
	heap.Init(&p.queue)

	n := cfg.ResolvedWorkerCount()
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.workerLoop(i)
	}
	return p
}

// Submit enqueues a single task and returns its Future.
func (p *Pool) Submit(t Task) *Future {
	future := newFuture()

	p.mu.Lock()
	item := &queueItem{task: t, future: future, seq: p.nextSeq, priority: t.Priority}
	p.nextSeq++
	heap.Push(&p.queue, item)
	atomic.AddInt64(&p.total, 1)
	p.mu.Unlock()
	p.cond.Signal()

	return future
}

// SubmitBatch enqueues every task in ts and returns their Futures in order.
func (p *Pool) SubmitBatch(ts []Task) []*Future {
	futures := make([]*Future, len(ts))
	for i, t := range ts {
		futures[i] = p.Submit(t)
	}
	return futures
}

// WaitAll blocks until every future in futures completes, fanning the
// waits out across an errgroup so the first real task error is returned
// promptly rather than serially polling each future in turn.
func WaitAll(ctx context.Context, futures []*Future) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, f := range futures {
		f := f
		g.Go(func() error {
			_, err := f.Wait(gctx)
			return err
		})
	}
	return g.Wait()
}

func (p *Pool) workerLoop(id int) {
	defer p.wg.Done()
	for {
		item, ok := p.next()
		if !ok {
			return // pool shut down
		}
		p.runTask(item)
	}
}

func (p *Pool) next() (*queueItem, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.queue) == 0 && !p.shutdown {
		p.cond.Wait()
	}
	if len(p.queue) == 0 && p.shutdown {
		return nil, false
	}
	item := heap.Pop(&p.queue).(*queueItem)
	return item, true
}

// runTask executes item.task with its timeout applied. If the task
// exceeds the timeout, the worker logs it, counts it as failed, and a
// Timeout-kind error reaches the caller through the future; a panic is
// recovered and reaches the caller as a Conflict-kind error. A fresh
// inner goroutine is used per task so a stuck task's goroutine is
// abandoned rather than blocking subsequent dispatch (the logical
// equivalent of "the worker is replaced" for an in-process pool).
func (p *Pool) runTask(item *queueItem) {
	atomic.AddInt64(&p.active, 1)
	defer atomic.AddInt64(&p.active, -1)

	timeout := p.cfg.DefaultTimeout
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	resultCh := make(chan taskResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- taskResult{err: cerrors.New(cerrors.Conflict, "workers.runTask", panicError{r})}
			}
		}()
		result, err := item.task.Run(ctx)
		resultCh <- taskResult{result: result, err: err}
	}()

	select {
	case res := <-resultCh:
		p.record(time.Since(start), res.err)
		item.future.complete(res.result, res.err)
	case <-ctx.Done():
		atomic.AddInt64(&p.failed, 1)
		logging.Get(logging.CategoryWorkers).Warn("task kind=%s timed out after %s", item.task.Kind, timeout)
		item.future.complete(nil, cerrors.New(cerrors.Timeout, "workers.runTask", ctx.Err()))
	}
}

type taskResult struct {
	result interface{}
	err    error
}

type panicError struct{ v interface{} }

func (e panicError) Error() string { return "worker task panicked" }

func (p *Pool) record(d time.Duration, err error) {
	if err != nil {
		atomic.AddInt64(&p.failed, 1)
		return
	}
	atomic.AddInt64(&p.completed, 1)
	atomic.AddInt64(&p.totalDuration, int64(d))
}

// Shutdown signals all workers to stop and waits for them to exit.
// Workers keep dispatching until the queue is empty, so every task
// queued before Shutdown still runs. A task submitted after the workers
// have exited never runs; its future never completes.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	p.shutdown = true
	p.mu.Unlock()
	p.cond.Broadcast()
	p.wg.Wait()
}

// StatsSnapshot returns the pool's current counters.
func (p *Pool) StatsSnapshot() Stats {
	p.mu.Lock()
	queued := int64(len(p.queue))
	p.mu.Unlock()

	completed := atomic.LoadInt64(&p.completed)
	var avg time.Duration
	if completed > 0 {
		avg = time.Duration(atomic.LoadInt64(&p.totalDuration) / completed)
	}

	return Stats{
		Total:         atomic.LoadInt64(&p.total),
		Completed:     completed,
		Failed:        atomic.LoadInt64(&p.failed),
		AvgDuration:   avg,
		ActiveWorkers: atomic.LoadInt64(&p.active),
		Queued:        queued,
	}
}
