package metacache

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// batchLimit caps concurrent external calls from one batch.
const batchLimit = 8

// Batch calls fetch once per key concurrently and collects the results.
// A key whose fetch fails maps to nil; one failure never aborts the batch.
func Batch[V any](ctx context.Context, keys []string, fetch func(ctx context.Context, key string) (V, error)) map[string]*V {
	out := make(map[string]*V, len(keys))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(batchLimit)
	for _, key := range keys {
		g.Go(func() error {
			v, err := fetch(ctx, key)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out[key] = nil
				return nil
			}
			out[key] = &v
			return nil
		})
	}
	_ = g.Wait()
	return out
}
