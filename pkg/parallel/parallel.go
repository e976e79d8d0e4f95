// Package parallel provides an ordered fan-out helper for the grid
// scans: work is sharded across a bounded set of goroutines and the
// results come back in input order, so scan determinism survives the
// parallelism.
package parallel

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// MapOrdered runs fn for every index in [0, n) on up to workers
// goroutines and returns the results in index order. workers <= 0
// means one per CPU. The first error cancels the remaining work and
// is returned; a cancelled ctx surfaces as its error.
func MapOrdered[T any](ctx context.Context, n, workers int, fn func(i int) (T, error)) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}

	cctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]T, n)
	var (
		next     atomic.Int64
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	next.Store(-1)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1))
				if i >= n {
					return
				}
				if err := cctx.Err(); err != nil {
					errOnce.Do(func() { firstErr = err })
					return
				}
				v, err := fn(i)
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					return
				}
				results[i] = v
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
