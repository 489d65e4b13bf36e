// Package runner executes independent jobs with bounded concurrency.
package runner

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Worker processes a single item. index is the position of item in the input.
type Worker[T, R any] func(ctx context.Context, item T, index int) (R, error)

// Run applies worker to every item with at most limit calls in flight. The
// result slice has the length and order of items. The first error cancels
// the context passed to the remaining calls, stops claiming new items, and is
// returned together with a nil result.
func Run[T, R any](ctx context.Context, items []T, limit int, worker Worker[T, R]) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	if limit < 1 {
		limit = 1
	}
	if limit > len(items) {
		limit = len(items)
	}

	group, ctx := errgroup.WithContext(ctx)
	var next atomic.Int64

	for i := 0; i < limit; i++ {
		group.Go(func() error {
			for {
				index := int(next.Add(1) - 1)
				if index >= len(items) {
					return nil
				}

				if err := ctx.Err(); err != nil {
					return err
				}

				result, err := worker(ctx, items[index], index)
				if err != nil {
					return err
				}

				results[index] = result
			}
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
