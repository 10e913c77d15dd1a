package geo

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/couchcryptid/pv-climate-etl/internal/domain"
	"github.com/couchcryptid/pv-climate-etl/internal/observability"
)

// ref points at one catalog row and its distance to the cached query point.
type ref struct {
	idx  int
	dist float64
}

// queryPoint keys the cache on the exact query coordinates, so a cached
// ordering and its distances always belong to the point being asked about.
type queryPoint struct {
	lat, lon float64
}

// CachedRanker answers nearest-site queries against an immutable catalog,
// memoizing orderings per query point in an LRU cache. A nil cache disables
// memoization.
type CachedRanker struct {
	catalog []domain.AnnualSiteSummary
	cache   *lru.Cache[queryPoint, []ref]
	metrics *observability.Metrics
}

// NewCachedRanker copies catalog and returns a ranker over it that keeps up
// to maxEntries orderings. maxEntries <= 0 disables caching.
func NewCachedRanker(catalog []domain.AnnualSiteSummary, maxEntries int, metrics *observability.Metrics) *CachedRanker {
	r := &CachedRanker{
		catalog: append([]domain.AnnualSiteSummary(nil), catalog...),
		metrics: metrics,
	}
	if maxEntries > 0 {
		// lru.New only fails for a non-positive size.
		r.cache, _ = lru.New[queryPoint, []ref](maxEntries)
	}
	return r
}

// Len returns the number of cataloged sites.
func (r *CachedRanker) Len() int {
	return len(r.catalog)
}

// Nearest ranks the catalog from (lat, lon) and returns at most limit rows
// (all rows when limit <= 0). The returned entries are owned by the caller.
func (r *CachedRanker) Nearest(lat, lon float64, limit int) (Ranking, error) {
	if err := ValidateQuery(lat, lon); err != nil {
		return Ranking{}, err
	}
	r.metrics.RankRequests.Inc()

	order := r.order(lat, lon)

	if limit <= 0 || limit > len(order) {
		limit = len(order)
	}
	entries := make([]domain.DistanceRankedEntry, limit)
	for i, o := range order[:limit] {
		entries[i] = domain.DistanceRankedEntry{DistanceKm: o.dist, Summary: r.catalog[o.idx]}
	}
	return Ranking{Columns: Columns(), Entries: entries}, nil
}

func (r *CachedRanker) order(lat, lon float64) []ref {
	if r.cache == nil {
		return rankOrder(r.catalog, lat, lon)
	}
	key := queryPoint{lat: lat, lon: lon}
	if order, ok := r.cache.Get(key); ok {
		r.metrics.RankCache.WithLabelValues("hit").Inc()
		return order
	}
	r.metrics.RankCache.WithLabelValues("miss").Inc()
	order := rankOrder(r.catalog, lat, lon)
	r.cache.Add(key, order)
	return order
}
