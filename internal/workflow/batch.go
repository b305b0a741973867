package workflow

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ClassifyBatch classifies requests concurrently, bounded by the configured
// batch concurrency. Results are returned in request order.
func (o *Orchestrator) ClassifyBatch(ctx context.Context, reqs []Request) []Result {
	results := make([]Result, len(reqs))

	var g errgroup.Group
	g.SetLimit(max(1, min(o.cfg.BatchConcurrency, len(reqs))))

	for i, req := range reqs {
		g.Go(func() error {
			results[i] = o.Classify(ctx, req)
			return nil
		})
	}

	g.Wait()
	return results
}
