// Package geo ranks cataloged sites by great-circle distance from a query point.
package geo

import (
	"fmt"
	"math"

	"github.com/couchcryptid/pv-climate-etl/internal/domain"
)

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

// Distance returns the haversine great-circle distance in km between two
// points given in decimal degrees.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Pow(math.Sin(dPhi/2), 2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Pow(math.Sin(dLambda/2), 2)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(a))
}

// ValidateQuery rejects coordinates outside [-90, 90] x [-180, 180].
func ValidateQuery(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return &domain.InvalidParameterError{Param: "lat", Reason: fmt.Sprintf("%v outside [-90, 90]", lat)}
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return &domain.InvalidParameterError{Param: "lon", Reason: fmt.Sprintf("%v outside [-180, 180]", lon)}
	}
	return nil
}
