// Package geo holds the spherical math used to decide service-area coverage.
package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

// EarthRadiusKm is the Earth's mean radius used for all great-circle distances.
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance in kilometers between two points given in degrees.
//
// s2.LatLng.Distance evaluates the Haversine formula, so longitudes on either side of the
// antimeridian resolve to the short way around and points near the poles stay stable.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	p1 := s2.LatLngFromDegrees(lat1, lon1)
	p2 := s2.LatLngFromDegrees(lat2, lon2)
	return p1.Distance(p2).Radians() * EarthRadiusKm
}

// ValidCoordinates reports whether lat is in [-90, 90] and lon is in [-180, 180].
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// RoundCoordinate rounds v to the given number of decimal places.
// Five places is roughly 1.1m at the equator.
func RoundCoordinate(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
