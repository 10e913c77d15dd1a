package pvmodel

import (
	"math"

	"github.com/couchcryptid/pv-climate-etl/internal/domain"
)

// RateOfDegradationEnvironment is the Fischer kinetics rate for one hour:
// poa^x * Tf^((temp - ref) / 10).
func RateOfDegradationEnvironment(poa, fitExponent, tempC, refTempC, tempMultiplier float64) float64 {
	return math.Pow(poa, fitExponent) * math.Pow(tempMultiplier, (tempC-refTempC)/10)
}

// RateOfDegradationChamber is the rate under constant chamber irradiance.
func RateOfDegradationChamber(chamberIrradiance, fitExponent float64) float64 {
	return math.Pow(chamberIrradiance, fitExponent)
}

// AccelerationFactor is rateChamber / avgRateEnv. A zero environmental rate
// yields a DivisionByZeroError instead of an infinite factor.
func AccelerationFactor(rateChamber, avgRateEnv float64) (float64, error) {
	if avgRateEnv == 0 {
		return 0, &domain.DivisionByZeroError{Op: "acceleration factor"}
	}
	return rateChamber / avgRateEnv, nil
}

// VantHoffResult is the output of VantHoffDegradationSummary.
type VantHoffResult struct {
	SumRateEnv         float64
	AvgRateEnv         float64
	RateChamber        float64
	AccelerationFactor float64
}

// VantHoffDegradationSummary computes the environmental rate for every hour,
// reduces it to sum and mean (NaN skipped), and compares the mean against the
// chamber rate. poa and temp must be the same length.
func VantHoffDegradationSummary(fitExponent, chamberIrradiance float64, poa, temp []float64, tempMultiplier, refTempC float64) (VantHoffResult, error) {
	if len(poa) != len(temp) {
		return VantHoffResult{}, &domain.InvalidParameterError{
			Param:  "series",
			Reason: "poa and temperature series differ in length",
		}
	}
	if len(poa) == 0 {
		return VantHoffResult{}, &domain.EmptySeriesError{}
	}

	rates := make([]float64, len(poa))
	for i := range poa {
		rates[i] = RateOfDegradationEnvironment(poa[i], fitExponent, temp[i], refTempC, tempMultiplier)
	}

	res := VantHoffResult{
		SumRateEnv:  Sum(rates),
		AvgRateEnv:  Mean(rates),
		RateChamber: RateOfDegradationChamber(chamberIrradiance, fitExponent),
	}
	af, err := AccelerationFactor(res.RateChamber, res.AvgRateEnv)
	if err != nil {
		return res, err
	}
	res.AccelerationFactor = af
	return res, nil
}
