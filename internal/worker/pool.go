// Package worker provides a generic fan-out/fan-in pool. The hunter and
// fixup engines use it to spread per-file work across available CPUs.
package worker

import (
	"runtime"
	"sync"
)

// Result pairs a processed value with its original index to preserve ordering.
type Result[O any] struct {
	Index int
	Value O
	Err   error
}

// Pool fans out work items to a fixed number of goroutine workers
// and collects results preserving the original input order.
type Pool[I, O any] struct {
	concurrency int
}

// NewPool creates a worker pool with the given concurrency.
// If concurrency <= 0, defaults to runtime.NumCPU().
func NewPool[I, O any](concurrency int) *Pool[I, O] {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	return &Pool[I, O]{concurrency: concurrency}
}

// Process distributes items across workers, applies fn to each, and returns
// results in the same order as the input slice. Errors from individual items
// are captured per-result rather than aborting the whole batch.
func (p *Pool[I, O]) Process(items []I, fn func(I) (O, error)) []Result[O] {
	if len(items) == 0 {
		return nil
	}

	workers := p.concurrency
	if workers > len(items) {
		workers = len(items)
	}

	type job struct {
		index int
		item  I
	}

	jobs := make(chan job, len(items))
	results := make([]Result[O], len(items))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				val, err := fn(j.item)
				results[j.index] = Result[O]{
					Index: j.index,
					Value: val,
					Err:   err,
				}
			}
		}()
	}

	for i, item := range items {
		jobs <- job{index: i, item: item}
	}
	close(jobs)

	wg.Wait()

	return results
}
