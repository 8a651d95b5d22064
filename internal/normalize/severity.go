// Package normalize maps raw source values onto the canonical alert schema:
// severities, safety tips and coordinates.
package normalize

import "github.com/mr1hm/go-disaster-alerts/internal/models"

// tiers are lower-bound inclusive: value < tiers[0] is LOW, < tiers[1] is
// MEDIUM, < tiers[2] is HIGH, anything else CRITICAL.
type tiers [3]float64

var (
	magnitudeTiers  = tiers{4.0, 6.0, 7.5} // richter
	waterLevelTiers = tiers{3, 8, 15}      // rise in feet
	windSpeedTiers  = tiers{74, 110, 130}  // mph
)

func (t tiers) severity(v float64) models.AlertSeverity {
	switch {
	case v < t[0]:
		return models.AlertSeverityLow
	case v < t[1]:
		return models.AlertSeverityMedium
	case v < t[2]:
		return models.AlertSeverityHigh
	default:
		return models.AlertSeverityCritical
	}
}

// EarthquakeSeverity buckets a magnitude into a severity.
func EarthquakeSeverity(magnitude float64) models.AlertSeverity {
	return magnitudeTiers.severity(magnitude)
}

// Params carries the magnitude-like measurement for each disaster type.
// Only the field matching the type is read; missing values count as zero.
type Params struct {
	Magnitude    float64
	WaterLevelFt float64
	WindSpeedMph float64
}

// Classify derives a severity from type-specific parameters. Types without
// a measurement scale default to MEDIUM.
func Classify(t models.DisasterType, p Params) models.AlertSeverity {
	switch t {
	case models.DisasterTypeEarthquake:
		return magnitudeTiers.severity(p.Magnitude)
	case models.DisasterTypeFlood:
		return waterLevelTiers.severity(p.WaterLevelFt)
	case models.DisasterTypeHurricane:
		return windSpeedTiers.severity(p.WindSpeedMph)
	default:
		return models.AlertSeverityMedium
	}
}
