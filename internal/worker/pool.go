// Package worker provides bounded-parallel execution helpers shared by
// corpus search and batch preprocessing.
package worker

import (
	"context"
	"sync"
)

// Job is one independent unit of work.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of a job execution.
type Result interface {
	Err() error
}

// Failure is a Result carrying only an error, used for jobs that were
// never executed because the context was cancelled.
type Failure struct {
	Cause error
}

// Err returns the failure cause.
func (f Failure) Err() error { return f.Cause }

// Pool executes jobs with a fixed number of workers. Results are returned
// in submission order regardless of completion order, so callers that
// rank or merge results stay deterministic.
type Pool struct {
	workers int
}

// NewPool creates a pool with the given worker count (minimum 1).
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Run executes all jobs and returns one result per job, positionally.
// Jobs not yet started when ctx is cancelled produce a Failure result;
// running jobs are expected to honor ctx themselves.
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	workers := p.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				if err := ctx.Err(); err != nil {
					results[i] = Failure{Cause: err}
					continue
				}
				results[i] = jobs[i].Execute(ctx)
			}
		}()
	}

	for i := range jobs {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return results
}
