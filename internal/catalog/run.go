package catalog

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/pv-climate-etl/internal/domain"
	"github.com/couchcryptid/pv-climate-etl/internal/observability"
)

// siteFunc produces one catalog row for a site. A returned row is kept even
// when err is non-nil if keep is true.
type siteFunc[T any] func(ctx context.Context, site domain.SiteLocation) (row T, keep bool, err error)

// slot holds one site's outcome at its original index.
type slot[T any] struct {
	row     T
	keep    bool
	failure *domain.SiteFailure
}

// runSites fans sites out to at most workers goroutines and gathers the
// outcomes in site order. Per-site errors are recorded, not propagated; only
// cancellation of ctx aborts the batch.
func runSites[T any](ctx context.Context, sites []domain.SiteLocation, workers int, obs Observer, metrics *observability.Metrics, fn siteFunc[T]) ([]T, []domain.SiteFailure, error) {
	if workers <= 0 {
		workers = 1
	}
	slots := make([]slot[T], len(sites))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, site := range sites {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			obs.SiteStarted(i, len(sites), site)
			start := time.Now()

			row, keep, err := fn(gCtx, site)
			if err != nil && gCtx.Err() != nil {
				return gCtx.Err()
			}
			metrics.SiteAggregationDuration.Observe(time.Since(start).Seconds())
			obs.SiteFinished(i, len(sites), site, err)

			slots[i] = slot[T]{row: row, keep: keep}
			if err != nil {
				f := domain.NewSiteFailure(site.ID, err)
				slots[i].failure = &f
				metrics.SiteFailures.WithLabelValues(string(f.Kind)).Inc()
				return nil
			}
			metrics.SitesProcessed.Inc()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var rows []T
	var failures []domain.SiteFailure
	for _, s := range slots {
		if s.keep {
			rows = append(rows, s.row)
		}
		if s.failure != nil {
			failures = append(failures, *s.failure)
		}
	}
	return rows, failures, nil
}
