// Package geo holds the spherical-earth math shared by every radius query.
package geo

import (
	"math"

	"github.com/mr1hm/go-disaster-alerts/internal/models"
)

// EarthRadiusKm is the mean earth radius used by all distance math.
const EarthRadiusKm = 6371.0

const (
	radConv = math.Pi / 180
	degConv = 180 / math.Pi
)

// DistanceKm returns the great-circle distance between two points using the
// haversine formula. It is symmetric and returns 0 for identical points.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * radConv
	dLon := (lon2 - lon1) * radConv

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*radConv)*math.Cos(lat2*radConv)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push a a hair outside [0,1] for near-antipodal points
	a = math.Min(1, math.Max(0, a))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Distance is DistanceKm for two coordinate values.
func Distance(a, b models.Coordinates) float64 {
	return DistanceKm(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// Destination projects a point distanceKm along the great circle leaving
// (lat, lon) at bearingDeg, measured clockwise from true north.
func Destination(lat, lon, bearingDeg, distanceKm float64) models.Coordinates {
	lat1 := lat * radConv
	lon1 := lon * radConv
	brng := bearingDeg * radConv
	ratio := distanceKm / EarthRadiusKm

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(ratio) +
		math.Cos(lat1)*math.Sin(ratio)*math.Cos(brng))
	lon2 := lon1 + math.Atan2(
		math.Sin(brng)*math.Sin(ratio)*math.Cos(lat1),
		math.Cos(ratio)-math.Sin(lat1)*math.Sin(lat2),
	)

	return models.Coordinates{
		Latitude:  lat2 * degConv,
		Longitude: normalizeLongitude(lon2 * degConv),
	}
}

// normalizeLongitude wraps lon into [-180, 180].
func normalizeLongitude(lon float64) float64 {
	if lon >= -180 && lon <= 180 {
		return lon
	}
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}
