package geo

import (
	"encoding/json"
	"math"
	"slices"

	"github.com/couchcryptid/pv-climate-etl/internal/domain"
)

// DistanceColumn is the leading presentation column of a ranking.
const DistanceColumn = "distance_km"

// Ranking is the nearest-first view of a catalog for one query point.
type Ranking struct {
	Columns []string
	Entries []domain.DistanceRankedEntry
}

// Rows returns each entry's cells in Columns order.
func (r Ranking) Rows() [][]any {
	rows := make([][]any, len(r.Entries))
	for i := range r.Entries {
		e := &r.Entries[i]
		var dist any
		if !math.IsNaN(e.DistanceKm) {
			dist = e.DistanceKm
		}
		rows[i] = append([]any{dist}, e.Summary.Values()...)
	}
	return rows
}

// MarshalJSON encodes the ranking as a table: {"columns": [...], "sites": [[...], ...]}.
func (r Ranking) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Columns []string `json:"columns"`
		Sites   [][]any  `json:"sites"`
	}{r.Columns, r.Rows()})
}

// Columns lists the presentation columns of a ranking, distance first.
func Columns() []string {
	return append([]string{DistanceColumn}, domain.SummaryColumns()...)
}

// Rank orders the catalog nearest-first from (lat, lon). The catalog is not
// modified.
func Rank(catalog []domain.AnnualSiteSummary, lat, lon float64) Ranking {
	order := rankOrder(catalog, lat, lon)
	entries := make([]domain.DistanceRankedEntry, len(order))
	for i, o := range order {
		entries[i] = domain.DistanceRankedEntry{DistanceKm: o.dist, Summary: catalog[o.idx]}
	}
	return Ranking{Columns: Columns(), Entries: entries}
}

// rankOrder matches repeatedly extracting the minimum-distance remaining
// row: among equal distances the row earlier in the catalog comes first.
// Rows whose distance is NaN sort last.
func rankOrder(catalog []domain.AnnualSiteSummary, lat, lon float64) []ref {
	order := make([]ref, len(catalog))
	for i, row := range catalog {
		order[i] = ref{idx: i, dist: Distance(lat, lon, row.Site.Latitude, row.Site.Longitude)}
	}

	slices.SortStableFunc(order, func(a, b ref) int {
		an, bn := math.IsNaN(a.dist), math.IsNaN(b.dist)
		switch {
		case an && bn:
			return 0
		case an:
			return 1
		case bn:
			return -1
		case a.dist < b.dist:
			return -1
		case a.dist > b.dist:
			return 1
		default:
			return 0
		}
	})
	return order
}
