package geo

import (
	"fmt"
	"math"
)

// FormatCoordinates renders a point as "40.7128° N, 74.0060° W".
func FormatCoordinates(lat, lon float64) string {
	latDir := "N"
	if lat < 0 {
		latDir = "S"
	}
	lonDir := "E"
	if lon < 0 {
		lonDir = "W"
	}
	return fmt.Sprintf("%.4f° %s, %.4f° %s", math.Abs(lat), latDir, math.Abs(lon), lonDir)
}

// DistanceDescription gives a rounded, human-readable distance.
func DistanceDescription(distanceKm float64) string {
	switch {
	case distanceKm < 0.1:
		return "very close"
	case distanceKm < 1:
		return "less than 1 km away"
	case distanceKm < 10:
		return fmt.Sprintf("about %d km away", int(math.Round(distanceKm)))
	case distanceKm < 100:
		return fmt.Sprintf("about %d km away", int(math.Round(distanceKm/10))*10)
	default:
		return fmt.Sprintf("about %d km away", int(math.Round(distanceKm/50))*50)
	}
}
