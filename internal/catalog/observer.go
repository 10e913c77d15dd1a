package catalog

import (
	"log/slog"

	"github.com/couchcryptid/pv-climate-etl/internal/domain"
)

// Observer receives progress callbacks during a build. Calls arrive from
// worker goroutines, so implementations must be safe for concurrent use.
// Observers see progress only; they cannot affect results.
type Observer interface {
	SiteStarted(index, total int, site domain.SiteLocation)
	SiteFinished(index, total int, site domain.SiteLocation, err error)
}

// NoopObserver ignores all progress.
type NoopObserver struct{}

func (NoopObserver) SiteStarted(int, int, domain.SiteLocation)         {}
func (NoopObserver) SiteFinished(int, int, domain.SiteLocation, error) {}

// LogObserver reports progress through a structured logger.
type LogObserver struct {
	Logger *slog.Logger
}

func (o LogObserver) SiteStarted(index, total int, site domain.SiteLocation) {
	o.Logger.Debug("site started", "site_id", site.ID, "index", index+1, "total", total)
}

func (o LogObserver) SiteFinished(index, total int, site domain.SiteLocation, err error) {
	if err != nil {
		o.Logger.Warn("site failed",
			"site_id", site.ID,
			"index", index+1,
			"total", total,
			"kind", domain.KindOf(err),
			"error", err,
		)
		return
	}
	o.Logger.Info("site aggregated", "site_id", site.ID, "index", index+1, "total", total)
}
