package pvmodel

import "math"

const windSpeedCutoff = 4.4 // m/s

// DewYield estimates dew yield in mm/day from the Beysens empirical model.
// elevationKm should be >= 0 and skyCoverOkta within [0, 8]. The result can
// be negative; callers clamp it with ClampDewYield before summing.
func DewYield(elevationKm, dewPointC, dryBulbC, windSpeed, skyCoverOkta float64) float64 {
	h := elevationKm
	radiative := 0.37 *
		(1 + 0.204323*h - 0.0238893*h*h - (18.0132-1.04963*h*h+0.21891*h*h)*(1e-3*dewPointC)) *
		math.Pow((dewPointC+273.15)/285, 4) *
		(1 - skyCoverOkta/8)
	convective := 0.06 * (dewPointC - dryBulbC) *
		(1 + 100*(1-math.Exp(-math.Pow(windSpeed/windSpeedCutoff, 20))))
	return (radiative + convective) / 12
}

// ClampDewYield replaces negative yields with 0. NaN passes through.
func ClampDewYield(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
