// Package geodesy provides great-circle distance math over a spherical Earth.
package geodesy

import "math"

const (
	earthRadiusKM = 6371.0
	kmPerMile     = 1.60934
)

// Miles returns the haversine great-circle distance in miles between two
// coordinates given in decimal degrees. Pure function: deterministic,
// symmetric, zero for identical coordinates.
func Miles(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c / kmPerMile
}
