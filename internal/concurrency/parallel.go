// Package concurrency holds the small worker-pool helpers used to fan
// out hearing discovery across sources.
package concurrency

import (
	"context"
	"sync"
)

// ParallelOptions configures the worker pool.
type ParallelOptions struct {
	// MaxWorkers is the maximum number of concurrent workers.
	MaxWorkers int
}

// DefaultOptions returns a pool size suited to polling a handful of
// committee sites and two federal APIs at once.
func DefaultOptions() ParallelOptions {
	return ParallelOptions{
		MaxWorkers: 6,
	}
}

// ProcessParallel runs itemFunc over items with a bounded worker pool.
// Results come back in input order; errors are collected, not fatal.
func ProcessParallel[T any, R any](
	ctx context.Context,
	items []T,
	opts ParallelOptions,
	itemFunc func(ctx context.Context, index int, item T) (R, error),
) ([]R, []error) {
	if len(items) == 0 {
		return []R{}, nil
	}

	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = DefaultOptions().MaxWorkers
	}
	if maxWorkers > len(items) {
		maxWorkers = len(items)
	}

	jobs := make(chan int, len(items))
	type outcome struct {
		index  int
		result R
		err    error
	}
	results := make(chan outcome, len(items))

	var wg sync.WaitGroup
	for w := 0; w < maxWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for jobIndex := range jobs {
				select {
				case <-ctx.Done():
					results <- outcome{jobIndex, *new(R), ctx.Err()}
				default:
					result, err := itemFunc(ctx, jobIndex, items[jobIndex])
					results <- outcome{jobIndex, result, err}
				}
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	resultList := make([]R, len(items))
	var errs []error
	for res := range results {
		if res.err != nil {
			errs = append(errs, res.err)
		}
		resultList[res.index] = res.result
	}

	return resultList, errs
}

// ForEach runs itemFunc over items in parallel when only side effects
// matter. Returns all errors encountered.
func ForEach[T any](
	ctx context.Context,
	items []T,
	opts ParallelOptions,
	itemFunc func(ctx context.Context, index int, item T) error,
) []error {
	_, errs := ProcessParallel(ctx, items, opts, func(ctx context.Context, index int, item T) (struct{}, error) {
		return struct{}{}, itemFunc(ctx, index, item)
	})
	return errs
}
