package pvmodel

import (
	"math"
	"time"
)

// Albedo defaults applied during normalization.
const (
	DefaultAlbedo    = 0.2
	OutOfRangeAlbedo = 0.133
)

// EquationOfTime returns the equation-of-time correction in minutes for a
// day of the year (1-based).
func EquationOfTime(dayOfYear int) float64 {
	b := (360.0 / 365.0) * float64(dayOfYear-81) * math.Pi / 180
	return 9.87*math.Sin(2*b) - 7.53*math.Cos(b) - 1.5*math.Sin(b)
}

// LocalSolarTime converts local standard time to local solar time for a
// site at longitude degrees east, utcOffset hours ahead of UTC.
func LocalSolarTime(local time.Time, longitude, utcOffset float64) time.Time {
	meridian := 15 * utcOffset
	correction := 4*(longitude-meridian) + EquationOfTime(local.YearDay())
	return local.Add(time.Duration(correction * float64(time.Minute)))
}

// UniversalTime converts local standard time to UTC.
func UniversalTime(local time.Time, utcOffset float64) time.Time {
	shifted := local.Add(-time.Duration(utcOffset * float64(time.Hour)))
	return time.Date(shifted.Year(), shifted.Month(), shifted.Day(),
		shifted.Hour(), shifted.Minute(), shifted.Second(), shifted.Nanosecond(), time.UTC)
}

// CorrectAlbedo substitutes DefaultAlbedo for a missing value and
// OutOfRangeAlbedo for anything outside (0, 100).
func CorrectAlbedo(a float64) float64 {
	switch {
	case math.IsNaN(a):
		return DefaultAlbedo
	case a <= 0 || a >= 100:
		return OutOfRangeAlbedo
	default:
		return a
	}
}
