package kmodes

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// forEachStripe splits [0, n) into contiguous row ranges and calls fn for
// each range on its own goroutine. Ranges never overlap, so fn may write to
// per-row output slots without synchronization. With workers <= 1 it runs
// fn(0, n) on the calling goroutine.
//
// The context is checked before each stripe starts; the first error (or
// ctx.Err()) is returned.
func forEachStripe(ctx context.Context, n, workers int, fn func(start, end int) error) error {
	if workers <= 1 || n <= 1 {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(0, n)
	}

	g, gctx := errgroup.WithContext(ctx)
	rowsPerWorker := (n + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := min(start+rowsPerWorker, n)
		if start >= n {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(start, end)
		})
	}

	return g.Wait()
}
