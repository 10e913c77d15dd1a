package pvmodel

const (
	stcTempC       = 25.0
	powerTempCoeff = 0.004 // per degree C
)

// RelativePower scales POA global irradiance by a linear temperature
// coefficient referenced to 25 C.
func RelativePower(cellTempC, poaGlobal float64) float64 {
	return poaGlobal * (1 + (stcTempC-cellTempC)*powerTempCoeff)
}
