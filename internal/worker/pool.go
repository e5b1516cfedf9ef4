package worker

import (
	"context"
	"runtime"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Task is the outcome of processing a single input.
type Task[T any, R any] struct {
	Input  T
	Result R
	Err    error
}

// ProcessFunc processes a single input.
type ProcessFunc[T any, R any] func(ctx context.Context, input T) (R, error)

// Pool fans inputs out to a fixed number of goroutines.
type Pool[T any, R any] struct {
	workers int
	process ProcessFunc[T, R]
}

// NewPool creates a pool. A non-positive worker count uses runtime.NumCPU().
func NewPool[T any, R any](workers int, fn ProcessFunc[T, R]) *Pool[T, R] {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Pool[T, R]{
		workers: workers,
		process: fn,
	}
}

// Workers returns the pool size.
func (p *Pool[T, R]) Workers() int { return p.workers }

// Execute runs every input through the pool and returns one Task per input, in
// input order. A failing input does not stop the others; its error is kept in
// the Task. If ctx is cancelled, inputs not yet started are skipped and
// Execute returns ctx.Err().
func (p *Pool[T, R]) Execute(ctx context.Context, inputs []T) ([]Task[T, R], error) {
	results := make([]Task[T, R], len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := p.process(gctx, inputs[i])
			results[i] = Task[T, R]{
				Input:  inputs[i],
				Result: result,
				Err:    err,
			}
			if err != nil {
				log.Debug().Err(err).Int("index", i).Msg("Task failed")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

// Batch splits inputs into batches of at most batchSize items.
func Batch[T any](items []T, batchSize int) [][]T {
	if batchSize <= 0 {
		batchSize = 1
	}
	var batches [][]T
	for i := 0; i < len(items); i += batchSize {
		end := min(i+batchSize, len(items))
		batches = append(batches, items[i:end])
	}
	return batches
}
