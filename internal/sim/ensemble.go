package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunAll steps independent engines concurrently, each for the given number
// of steps. Engines must not be shared with other callers while it runs.
func RunAll(ctx context.Context, engines []*Engine, steps int) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, e := range engines {
		g.Go(func() error {
			return e.Run(gctx, steps, nil)
		})
	}
	return g.Wait()
}
