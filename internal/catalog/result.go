package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/couchcryptid/pv-climate-etl/internal/domain"
)

// Result is the outcome of a summary catalog build: the rows that aggregated,
// in site order, and one failure per site that did not.
type Result struct {
	RunID     string
	BuiltAt   time.Time
	Summaries []domain.AnnualSiteSummary
	Failures  []domain.SiteFailure
}

// Succeeded is the number of catalog rows.
func (r *Result) Succeeded() int {
	return len(r.Summaries)
}

// Meta identifies the build.
func (r *Result) Meta() domain.CatalogMeta {
	return domain.CatalogMeta{RunID: r.RunID, BuiltAt: r.BuiltAt}
}

// Err combines the per-site failures, or returns nil when every site succeeded.
func (r *Result) Err() error {
	return failuresErr(r.Failures)
}

// DegradationResult is the outcome of a Van't Hoff catalog build. Rows whose
// acceleration factor was undefined are kept with Valid false and also
// listed in Failures.
type DegradationResult struct {
	RunID    string
	BuiltAt  time.Time
	Params   domain.DegradationParams
	Rows     []domain.DegradationSummary
	Failures []domain.SiteFailure
}

// Succeeded is the number of valid rows.
func (r *DegradationResult) Succeeded() int {
	n := 0
	for _, row := range r.Rows {
		if row.Valid {
			n++
		}
	}
	return n
}

// Meta identifies the build.
func (r *DegradationResult) Meta() domain.CatalogMeta {
	return domain.CatalogMeta{RunID: r.RunID, BuiltAt: r.BuiltAt}
}

// Err combines the per-site failures, or returns nil when every site succeeded.
func (r *DegradationResult) Err() error {
	return failuresErr(r.Failures)
}

func failuresErr(failures []domain.SiteFailure) error {
	var merr *multierror.Error
	for _, f := range failures {
		merr = multierror.Append(merr, f)
	}
	return merr.ErrorOrNil()
}

// noneSucceeded wraps ErrNoSitesSucceeded with the per-site failures.
func noneSucceeded(failures []domain.SiteFailure) error {
	if err := failuresErr(failures); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrNoSitesSucceeded, err)
	}
	return domain.ErrNoSitesSucceeded
}

func newRunID() string {
	return uuid.NewString()
}
