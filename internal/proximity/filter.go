// Package proximity filters and ranks alerts and shelters relative to an
// origin and detects when a live position enters a hazard radius.
package proximity

import (
	"cmp"
	"math"
	"slices"

	"github.com/mr1hm/go-disaster-alerts/internal/geo"
	"github.com/mr1hm/go-disaster-alerts/internal/models"
)

// Default search radii in kilometers.
const (
	AlertRadiusKm   = 200.0 // "alerts near you"
	ShelterRadiusKm = 100.0 // nearby shelters
	HazardRadiusKm  = 50.0  // live proximity warnings
)

// FilterByRadius keeps the items whose great-circle distance from the origin
// is at most radiusKm, preserving input order. A negative or NaN radius
// matches nothing. The result is never nil.
func FilterByRadius[T any](items []T, originLat, originLon, radiusKm float64, coords func(T) models.Coordinates) []T {
	out := make([]T, 0)
	if radiusKm < 0 || math.IsNaN(radiusKm) {
		return out
	}
	for _, item := range items {
		c := coords(item)
		if geo.DistanceKm(originLat, originLon, c.Latitude, c.Longitude) <= radiusKm {
			out = append(out, item)
		}
	}
	return out
}

// NearbyActive returns the active alerts within radiusKm of the origin.
func NearbyActive(alerts []models.DisasterAlert, lat, lon, radiusKm float64) []models.DisasterAlert {
	active := make([]models.DisasterAlert, 0, len(alerts))
	for _, a := range alerts {
		if a.Active {
			active = append(active, a)
		}
	}
	return FilterByRadius(active, lat, lon, radiusKm, models.DisasterAlert.Coordinates)
}

func NearbyShelters(shelters []models.SafetyShelter, lat, lon, radiusKm float64) []models.SafetyShelter {
	return FilterByRadius(shelters, lat, lon, radiusKm, func(s models.SafetyShelter) models.Coordinates {
		return s.Coordinates
	})
}

// SortBySeverityThenRecency returns a copy ordered by severity rank
// (CRITICAL first) and then by timestamp, newest first. Equal keys keep
// their input order.
func SortBySeverityThenRecency(alerts []models.DisasterAlert) []models.DisasterAlert {
	sorted := slices.Clone(alerts)
	if sorted == nil {
		sorted = []models.DisasterAlert{}
	}
	slices.SortStableFunc(sorted, func(a, b models.DisasterAlert) int {
		if c := cmp.Compare(a.Severity.Rank(), b.Severity.Rank()); c != 0 {
			return c
		}
		return b.Timestamp.Compare(a.Timestamp)
	})
	return sorted
}
