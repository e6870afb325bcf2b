package dynamo

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// MinChunk is the smallest index range worth handing to its own goroutine.
const MinChunk = 64

// ParallelFor runs fn over [0, n) split into contiguous chunks and returns
// once every chunk has finished. workers <= 0 means GOMAXPROCS.
func ParallelFor(n, workers int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if n/MinChunk < workers {
		workers = n / MinChunk
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunkSize := (n + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait()
}
