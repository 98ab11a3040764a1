package workers

import (
	"context"
	"testing"
	"time"

	"cce/internal/cerrors"
	"cce/internal/config"
)

func testConfig() config.WorkerConfig {
	cfg := config.DefaultWorkerConfig()
	cfg.WorkerCount = 2
	cfg.DefaultTimeout = 200 * time.Millisecond
	return cfg
}

func TestSubmitRunsTaskAndReturnsResult(t *testing.T) {
	p := New(testConfig())
	defer p.Shutdown()

	future := p.Submit(Task{Kind: KindFileAnalysis, Priority: PriorityNormal, Run: func(ctx context.Context) (interface{}, error) {
		return 42, nil
	}})

	result, err := future.Wait(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result != 42 {
		t.Errorf("expected 42, got %v", result)
	}
}

func TestSubmitBatchCompletesAll(t *testing.T) {
	p := New(testConfig())
	defer p.Shutdown()

	tasks := make([]Task, 5)
	for i := range tasks {
		i := i
		tasks[i] = Task{Kind: KindSymbolExtraction, Priority: PriorityNormal, Run: func(ctx context.Context) (interface{}, error) {
			return i, nil
		}}
	}
	futures := p.SubmitBatch(tasks)
	for i, f := range futures {
		result, err := f.Wait(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if result != i {
			t.Errorf("expected %d, got %v", i, result)
		}
	}
}

func TestHigherPriorityDispatchesFirst(t *testing.T) {
	cfg := testConfig()
	cfg.WorkerCount = 1
	p := New(cfg)
	defer p.Shutdown()

	block := make(chan struct{})
	p.Submit(Task{Kind: KindFileAnalysis, Priority: PriorityNormal, Run: func(ctx context.Context) (interface{}, error) {
		<-block
		return nil, nil
	}})

	var order []string
	done := make(chan struct{}, 2)
	p.Submit(Task{Kind: KindFileAnalysis, Priority: PriorityLow, Run: func(ctx context.Context) (interface{}, error) {
		order = append(order, "low")
		done <- struct{}{}
		return nil, nil
	}})
	p.Submit(Task{Kind: KindFileAnalysis, Priority: PriorityHigh, Run: func(ctx context.Context) (interface{}, error) {
		order = append(order, "high")
		done <- struct{}{}
		return nil, nil
	}})

	close(block)
	<-done
	<-done

	if len(order) != 2 || order[0] != "high" {
		t.Errorf("expected high priority task to run before low, got %v", order)
	}
}

func TestTaskTimeoutReturnsTypedError(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultTimeout = 20 * time.Millisecond
	p := New(cfg)
	defer p.Shutdown()

	future := p.Submit(Task{Kind: KindRelevanceScoring, Priority: PriorityNormal, Run: func(ctx context.Context) (interface{}, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}})

	_, err := future.Wait(context.Background())
	if cerrors.KindOf(err) != cerrors.Timeout {
		t.Errorf("expected a Timeout-kind error, got %v", err)
	}
}

func TestWaitAllReturnsFirstTaskError(t *testing.T) {
	p := New(testConfig())
	defer p.Shutdown()

	boom := cerrors.New(cerrors.InputInvalid, "test", nil)
	futures := p.SubmitBatch([]Task{
		{Kind: KindSerialization, Priority: PriorityNormal, Run: func(ctx context.Context) (interface{}, error) {
			return nil, nil
		}},
		{Kind: KindSerialization, Priority: PriorityNormal, Run: func(ctx context.Context) (interface{}, error) {
			return nil, boom
		}},
	})

	if err := WaitAll(context.Background(), futures); err == nil {
		t.Error("expected WaitAll to surface the failing task's error")
	}
}

func TestStatsSnapshotCountsCompleted(t *testing.T) {
	p := New(testConfig())
	defer p.Shutdown()

	for i := 0; i < 3; i++ {
		f := p.Submit(Task{Kind: KindContentSampling, Priority: PriorityNormal, Run: func(ctx context.Context) (interface{}, error) {
			return nil, nil
		}})
		f.Wait(context.Background())
	}

	stats := p.StatsSnapshot()
	if stats.Completed != 3 {
		t.Errorf("expected 3 completed tasks, got %d", stats.Completed)
	}
	if stats.Total != 3 {
		t.Errorf("expected total of 3, got %d", stats.Total)
	}
}
