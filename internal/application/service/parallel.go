package service

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// parallelEach calls fn for every index in [0, n) on at most limit goroutines.
// fn stores its own result by index, so output order matches input order.
// The first error cancels the remaining work.
func parallelEach(ctx context.Context, n, limit int, fn func(ctx context.Context, i int) error) error {
	if limit < 1 {
		limit = 1
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(limit)
	for i := 0; i < n; i++ {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			return fn(groupCtx, i)
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
