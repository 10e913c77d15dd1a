package pvmodel

const (
	whPerGJ         = 0.0000036
	boltzmannEVPerK = 8.617333262145e-5
	kelvinOffset    = 273.15
)

// WhToGJ converts Wh/m^2 to GJ/m^2.
func WhToGJ(wh float64) float64 {
	return wh * whPerGJ
}

// GJToMJ scales an annual GJ/m^2 figure to the MJ/y dose reported in the catalog.
func GJToMJ(gj float64) float64 {
	return gj * 1000
}

// CelsiusToKelvin converts a temperature in Celsius to Kelvin.
func CelsiusToKelvin(c float64) float64 {
	return c + kelvinOffset
}

// TenthsToOkta converts sky cover in tenths to oktas (eighths).
func TenthsToOkta(tenths float64) float64 {
	return tenths * 8 / 10
}
