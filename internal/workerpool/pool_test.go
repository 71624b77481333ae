package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestRunPreservesOrderAndValues(t *testing.T) {
	jobs := make([]Job[int], 10)
	for i := range jobs {
		i := i
		jobs[i] = func(ctx context.Context) (int, error) {
			return i * i, nil
		}
	}

	results := Run(context.Background(), 4, jobs)
	if len(results) != len(jobs) {
		t.Fatalf("expected %d results, got %d", len(jobs), len(results))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("result %d has Index %d", i, r.Index)
		}
		if r.Err != nil {
			t.Errorf("result %d: unexpected error: %v", i, r.Err)
		}
		if r.Value != i*i {
			t.Errorf("result %d: got %d, want %d", i, r.Value, i*i)
		}
	}
}

func TestRunPropagatesPerJobErrors(t *testing.T) {
	boom := errors.New("boom")
	jobs := []Job[int]{
		func(ctx context.Context) (int, error) { return 1, nil },
		func(ctx context.Context) (int, error) { return 0, boom },
	}
	results := Run(context.Background(), 2, jobs)
	if results[0].Err != nil {
		t.Errorf("job 0: unexpected error: %v", results[0].Err)
	}
	if results[1].Err != boom {
		t.Errorf("job 1: expected boom, got %v", results[1].Err)
	}
}

func TestRunZeroWorkersFallsBackToOne(t *testing.T) {
	var running int32
	var sawConcurrent bool
	jobs := make([]Job[int], 5)
	for i := range jobs {
		jobs[i] = func(ctx context.Context) (int, error) {
			if atomic.AddInt32(&running, 1) > 1 {
				sawConcurrent = true
			}
			defer atomic.AddInt32(&running, -1)
			return 0, nil
		}
	}
	Run(context.Background(), 0, jobs)
	if sawConcurrent {
		t.Errorf("expected workers<1 to behave as a single worker")
	}
}

func TestRunEmptyJobSliceReturnsNoResults(t *testing.T) {
	// An empty job slice yields an empty result slice. The context.Canceled
	// pre-fill Run gives unsubmitted jobs is not exercised here: whether a
	// job is submitted after cancellation depends on goroutine scheduling.
	results := Run(context.Background(), 2, []Job[int]{})
	if len(results) != 0 {
		t.Errorf("expected no results for an empty job slice, got %d", len(results))
	}
}
