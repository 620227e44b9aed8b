package concurrent

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ForEach runs action for every item, at most limit at a time (unlimited when
// limit <= 0). The context passed to action is cancelled on the first error,
// which is the error returned.
func ForEach[T any](ctx context.Context, items []T, limit int, action func(ctx context.Context, index int, item T) error) error {
	group, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		group.SetLimit(limit)
	}
	for i, item := range items {
		group.Go(func() error {
			return action(gctx, i, item)
		})
	}
	return group.Wait()
}

// Map runs fn for every item like ForEach and collects the results in input
// order. On error the partial results are discarded.
func Map[T any, R any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, item T) (R, error)) ([]R, error) {
	out := make([]R, len(items))
	err := ForEach(ctx, items, limit, func(ctx context.Context, i int, item T) error {
		r, err := fn(ctx, item)
		if err != nil {
			return err
		}
		out[i] = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
