package replay

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// RunBatch replays scripts concurrently, at most workers at a time (no limit
// when workers <= 0). Results keep the order of scripts. The first failure
// cancels the scripts still running.
func (r *Runner) RunBatch(ctx context.Context, scripts []Script, workers int) ([]Result, error) {
	results := make([]Result, len(scripts))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, s := range scripts {
		i, s := i, s
		g.Go(func() error {
			res, err := r.Run(ctx, s)
			if err != nil {
				return fmt.Errorf("script %s: %w", s.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
