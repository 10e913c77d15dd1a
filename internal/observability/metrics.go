package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pv_climate"

// Metrics holds the Prometheus counters, histograms, and gauges for the catalog service.
type Metrics struct {
	SitesProcessed  prometheus.Counter
	SiteFailures    *prometheus.CounterVec // labels: kind={missing_column,empty_series,division_by_zero,invalid_parameter,internal}
	PipelineRunning prometheus.Gauge

	// Catalog build metrics.
	SiteAggregationDuration prometheus.Histogram
	CatalogBuildDuration    prometheus.Histogram
	CatalogSites            prometheus.Gauge

	// Publication metrics.
	SummariesPublished prometheus.Counter

	// Ranking metrics.
	RankRequests prometheus.Counter
	RankCache    *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all catalog metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(
		m.SitesProcessed,
		m.SiteFailures,
		m.PipelineRunning,
		m.SiteAggregationDuration,
		m.CatalogBuildDuration,
		m.CatalogSites,
		m.SummariesPublished,
		m.RankRequests,
		m.RankCache,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		SitesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sites_processed_total",
			Help:      help("Total sites aggregated into a catalog row."),
		}),
		SiteFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "site_failures_total",
			Help:      help("Sites that failed aggregation, by error kind."),
		}, []string{"kind"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      help("1 while a catalog run is in progress, 0 otherwise."),
		}),
		SiteAggregationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "site_aggregation_duration_seconds",
			Help:      help("Duration of loading and aggregating one site."),
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		CatalogBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_build_duration_seconds",
			Help:      help("Duration of a complete catalog build."),
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		CatalogSites: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_sites",
			Help:      help("Rows in the installed summary catalog."),
		}),
		SummariesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_published_total",
			Help:      help("Site summaries written to the sink topic."),
		}),
		RankRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rank_requests_total",
			Help:      help("Nearest-site ranking requests."),
		}),
		RankCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rank_cache_total",
			Help:      help("Ranking cache lookups by result."),
		}, []string{"result"}),
	}
}
