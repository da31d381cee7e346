package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// indexResult implements Result
type indexResult struct {
	index int
	err   error
}

func (r indexResult) Err() error { return r.err }

// indexJob implements Job
type indexJob struct {
	index    int
	delay    time.Duration
	err      error
	executed *int32
}

func (j indexJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.delay > 0 {
		select {
		case <-time.After(j.delay):
		case <-ctx.Done():
			return indexResult{index: j.index, err: ctx.Err()}
		}
	}
	return indexResult{index: j.index, err: j.err}
}

func TestNewPool(t *testing.T) {
	if p := NewPool(5); p.workers != 5 {
		t.Errorf("expected 5 workers, got %d", p.workers)
	}
	if p := NewPool(0); p.workers != 1 {
		t.Errorf("expected default 1 worker for 0 input, got %d", p.workers)
	}
	if p := NewPool(-1); p.workers != 1 {
		t.Errorf("expected default 1 worker for negative input, got %d", p.workers)
	}
}

func TestPoolPositionalResults(t *testing.T) {
	pool := NewPool(4)

	count := 20
	jobs := make([]Job, count)
	for i := 0; i < count; i++ {
		// Reverse-proportional delay so completion order differs from
		// submission order.
		jobs[i] = indexJob{index: i, delay: time.Duration(count-i) * time.Millisecond}
	}

	results := pool.Run(context.Background(), jobs)
	if len(results) != count {
		t.Fatalf("expected %d results, got %d", count, len(results))
	}
	for i, res := range results {
		ir, ok := res.(indexResult)
		if !ok {
			t.Fatalf("result %d has type %T", i, res)
		}
		if ir.index != i {
			t.Errorf("result at position %d carries index %d", i, ir.index)
		}
	}
}

func TestPoolExecutesAllJobs(t *testing.T) {
	pool := NewPool(3)

	var executed int32
	count := 10
	jobs := make([]Job, count)
	for i := 0; i < count; i++ {
		jobs[i] = indexJob{index: i, executed: &executed}
	}

	pool.Run(context.Background(), jobs)
	if atomic.LoadInt32(&executed) != int32(count) {
		t.Errorf("expected %d executed jobs, got %d", count, executed)
	}
}

func TestPoolErrorIsolation(t *testing.T) {
	pool := NewPool(2)

	jobs := []Job{
		indexJob{index: 0, err: errors.New("job error")},
		indexJob{index: 1},
	}
	results := pool.Run(context.Background(), jobs)

	if results[0].Err() == nil {
		t.Error("expected error from first job")
	}
	if results[1].Err() != nil {
		t.Errorf("unexpected error from second job: %v", results[1].Err())
	}
}

func TestPoolConcurrencyBound(t *testing.T) {
	workers := 4
	pool := NewPool(workers)

	var current, maxSeen int32
	var mu sync.Mutex

	count := 30
	jobs := make([]Job, count)
	for i := 0; i < count; i++ {
		jobs[i] = trackingJob{
			onStart: func() {
				curr := atomic.AddInt32(&current, 1)
				mu.Lock()
				if curr > maxSeen {
					maxSeen = curr
				}
				mu.Unlock()
			},
			onEnd:    func() { atomic.AddInt32(&current, -1) },
			duration: 5 * time.Millisecond,
		}
	}

	pool.Run(context.Background(), jobs)

	mu.Lock()
	max := maxSeen
	mu.Unlock()
	if max > int32(workers) {
		t.Errorf("max concurrency %d exceeded workers %d", max, workers)
	}
}

type trackingJob struct {
	onStart  func()
	onEnd    func()
	duration time.Duration
}

func (j trackingJob) Execute(ctx context.Context) Result {
	if j.onStart != nil {
		j.onStart()
	}
	time.Sleep(j.duration)
	if j.onEnd != nil {
		j.onEnd()
	}
	return indexResult{}
}

func TestPoolCancellation(t *testing.T) {
	pool := NewPool(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := make([]Job, 5)
	for i := range jobs {
		jobs[i] = indexJob{index: i}
	}
	results := pool.Run(ctx, jobs)

	for i, res := range results {
		if res.Err() == nil {
			t.Errorf("job %d: expected cancellation error", i)
		}
		if !errors.Is(res.Err(), context.Canceled) {
			t.Errorf("job %d: error = %v, want context.Canceled", i, res.Err())
		}
	}
}

func TestPoolEmptyJobList(t *testing.T) {
	pool := NewPool(2)
	results := pool.Run(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestFailureErr(t *testing.T) {
	cause := fmt.Errorf("boom")
	if (Failure{Cause: cause}).Err() != cause {
		t.Error("Failure should return its cause")
	}
}
