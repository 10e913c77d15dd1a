package pvmodel

import "math"

// Sum adds the non-NaN values. An empty or all-NaN series sums to 0.
func Sum(xs []float64) float64 {
	var s float64
	for _, v := range xs {
		if !math.IsNaN(v) {
			s += v
		}
	}
	return s
}

// Mean averages the non-NaN values, or returns NaN when there are none.
func Mean(xs []float64) float64 {
	var (
		s float64
		n int
	)
	for _, v := range xs {
		if !math.IsNaN(v) {
			s += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return s / float64(n)
}

// Min returns the smallest non-NaN value, or NaN when there are none.
func Min(xs []float64) float64 {
	m := math.NaN()
	for _, v := range xs {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(m) || v < m {
			m = v
		}
	}
	return m
}

// Max returns the largest non-NaN value, or NaN when there are none.
func Max(xs []float64) float64 {
	m := math.NaN()
	for _, v := range xs {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(m) || v > m {
			m = v
		}
	}
	return m
}
