package pvmodel

import (
	"cmp"
	"math"
	"slices"
	"time"
)

// DefaultReversalTempC is the reversal temperature used for the catalog's
// fixtures. The general Bosco-Silverman model uses 58.8 C.
const DefaultReversalTempC = 54.8

type calendarDay struct {
	month time.Month
	day   int
}

// AverageDailyTemperatureSwing groups samples by calendar (month, day) of
// local time and returns the mean of daily (max - min) and the mean of daily
// maxima. A partial trailing day is still its own group. Days with no
// non-NaN temperature are skipped. Pairs beyond the shorter input are ignored.
func AverageDailyTemperatureSwing(local []time.Time, temps []float64) (meanSwing, meanDailyMax float64) {
	n := min(len(local), len(temps))

	type extremes struct{ lo, hi float64 }
	days := make(map[calendarDay]*extremes)
	for i := 0; i < n; i++ {
		key := calendarDay{local[i].Month(), local[i].Day()}
		e, ok := days[key]
		if !ok {
			e = &extremes{lo: math.NaN(), hi: math.NaN()}
			days[key] = e
		}
		v := temps[i]
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(e.lo) || v < e.lo {
			e.lo = v
		}
		if math.IsNaN(e.hi) || v > e.hi {
			e.hi = v
		}
	}

	keys := make([]calendarDay, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b calendarDay) int {
		if c := cmp.Compare(a.month, b.month); c != 0 {
			return c
		}
		return cmp.Compare(a.day, b.day)
	})

	swings := make([]float64, len(keys))
	maxima := make([]float64, len(keys))
	for i, k := range keys {
		e := days[k]
		swings[i] = e.hi - e.lo
		maxima[i] = e.hi
	}
	return Mean(swings), Mean(maxima)
}

// CountReversalCrossings counts hours where the temperature crosses the
// reversal threshold before the next hour, in either direction, or sits
// exactly on it. The final sample has no successor and is not examined.
func CountReversalCrossings(temps []float64, thresholdC float64) int {
	count := 0
	for i := 0; i+1 < len(temps); i++ {
		cur, next := temps[i], temps[i+1]
		if (cur >= thresholdC && next < thresholdC) ||
			(next > thresholdC && cur <= thresholdC) ||
			cur == thresholdC {
			count++
		}
	}
	return count
}

// SolderFatigueDamage is the Bosco-Silverman annual thermomechanical fatigue
// damage for solder joints:
//
//	405.6 * swing^1.9 * crossings^0.33 * exp(-0.12 / (k * meanDailyMaxK))
func SolderFatigueDamage(local []time.Time, temps []float64, reversalTempC float64) float64 {
	swing, dailyMax := AverageDailyTemperatureSwing(local, temps)
	crossings := CountReversalCrossings(temps, reversalTempC)
	return 405.6 *
		math.Pow(swing, 1.9) *
		math.Pow(float64(crossings), 0.33) *
		math.Exp(-0.12/(boltzmannEVPerK*CelsiusToKelvin(dailyMax)))
}
