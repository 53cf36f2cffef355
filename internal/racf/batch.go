package racf

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DoAll runs requests with at most limit in flight. Results keep request
// order. A limit below one runs them one at a time.
func (s *Service) DoAll(ctx context.Context, reqs []Request, limit int) []Result {
	if limit < 1 {
		limit = 1
	}
	out := make([]Result, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range reqs {
		g.Go(func() error {
			out[i] = s.Do(gctx, reqs[i])
			return nil
		})
	}
	_ = g.Wait()
	return out
}
