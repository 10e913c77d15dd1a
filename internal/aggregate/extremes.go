package aggregate

import (
	"math"
	"slices"
)

// topFractionMean averages the largest ceil(fraction * len(xs)) values.
// NaN values count toward len(xs) but are never selected. Values are ranked
// with a stable descending sort, so among equal values the earliest sample
// wins a place at the selection boundary.
func topFractionMean(xs []float64, fraction float64) float64 {
	k := int(math.Ceil(fraction * float64(len(xs))))
	if k <= 0 {
		return math.NaN()
	}

	idx := make([]int, 0, len(xs))
	for i, v := range xs {
		if !math.IsNaN(v) {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return math.NaN()
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		switch {
		case xs[a] > xs[b]:
			return -1
		case xs[a] < xs[b]:
			return 1
		default:
			return 0
		}
	})
	if k > len(idx) {
		k = len(idx)
	}

	var sum float64
	for _, i := range idx[:k] {
		sum += xs[i]
	}
	return sum / float64(k)
}
