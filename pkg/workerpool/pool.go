// Package workerpool runs independent units of work with bounded parallelism.
package workerpool

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Config configures a Pool.
type Config struct {
	MaxConcurrent int // Maximum items running at once (default: 1)
	// StopOnError cancels items that have not started once any item fails.
	StopOnError bool
}

// Pool runs work items with a semaphore limiting outstanding items.
type Pool struct {
	config Config
	logger *zap.Logger
}

// New creates a Pool. MaxConcurrent below 1 means fully sequential.
func New(config Config, logger *zap.Logger) *Pool {
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = 1
	}
	return &Pool{
		config: config,
		logger: logger.Named("worker-pool"),
	}
}

// WorkItem is a unit of work.
type WorkItem[T any] struct {
	ID      string // For logging
	Execute func(ctx context.Context) (T, error)
}

// WorkResult is the outcome of a WorkItem.
type WorkResult[T any] struct {
	ID     string
	Result T
	Err    error
}

// Process executes all items and returns one result per item in completion order.
// With MaxConcurrent 1 items run one after another in submission order.
func Process[T any](
	ctx context.Context,
	pool *Pool,
	items []WorkItem[T],
	onProgress func(completed, total int),
) []WorkResult[T] {
	if len(items) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]WorkResult[T], 0, len(items))
	resultsChan := make(chan WorkResult[T], len(items))

	if pool.config.MaxConcurrent == 1 {
		go func() {
			defer close(resultsChan)
			for _, item := range items {
				resultsChan <- runItem(ctx, pool, cancel, item)
			}
		}()
	} else {
		sem := make(chan struct{}, pool.config.MaxConcurrent)
		var wg sync.WaitGroup
		for _, item := range items {
			wg.Add(1)
			go func(item WorkItem[T]) {
				defer wg.Done()
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-ctx.Done():
					resultsChan <- WorkResult[T]{ID: item.ID, Err: ctx.Err()}
					return
				}
				resultsChan <- runItem(ctx, pool, cancel, item)
			}(item)
		}
		go func() {
			wg.Wait()
			close(resultsChan)
		}()
	}

	completed := 0
	for result := range resultsChan {
		results = append(results, result)
		completed++
		if onProgress != nil {
			onProgress(completed, len(items))
		}
	}

	return results
}

func runItem[T any](ctx context.Context, p *Pool, cancel context.CancelFunc, item WorkItem[T]) WorkResult[T] {
	if err := ctx.Err(); err != nil {
		return WorkResult[T]{ID: item.ID, Err: err}
	}
	result, err := item.Execute(ctx)
	if err != nil {
		p.logger.Debug("Work item failed", zap.String("id", item.ID), zap.Error(err))
		if p.config.StopOnError {
			cancel()
		}
	}
	return WorkResult[T]{ID: item.ID, Result: result, Err: err}
}
