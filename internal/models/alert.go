package models

import (
	"strings"
	"time"
)

type DisasterType string

const (
	DisasterTypeEarthquake DisasterType = "EARTHQUAKE"
	DisasterTypeFlood      DisasterType = "FLOOD"
	DisasterTypeWildfire   DisasterType = "WILDFIRE"
	DisasterTypeHurricane  DisasterType = "HURRICANE"
	DisasterTypeTsunami    DisasterType = "TSUNAMI"
)

// ParseDisasterType accepts any casing. The second return is false for
// types outside the five supported ones.
func ParseDisasterType(s string) (DisasterType, bool) {
	switch t := DisasterType(strings.ToUpper(strings.TrimSpace(s))); t {
	case DisasterTypeEarthquake, DisasterTypeFlood, DisasterTypeWildfire, DisasterTypeHurricane, DisasterTypeTsunami:
		return t, true
	default:
		return "", false
	}
}

func (t DisasterType) Label() string {
	switch t {
	case DisasterTypeEarthquake:
		return "Earthquake"
	case DisasterTypeFlood:
		return "Flood"
	case DisasterTypeWildfire:
		return "Wildfire"
	case DisasterTypeHurricane:
		return "Hurricane"
	case DisasterTypeTsunami:
		return "Tsunami"
	default:
		return "Unknown"
	}
}

type AlertSeverity string

const (
	AlertSeverityLow      AlertSeverity = "LOW"
	AlertSeverityMedium   AlertSeverity = "MEDIUM"
	AlertSeverityHigh     AlertSeverity = "HIGH"
	AlertSeverityCritical AlertSeverity = "CRITICAL"
)

func ParseAlertSeverity(s string) (AlertSeverity, bool) {
	switch sev := AlertSeverity(strings.ToUpper(strings.TrimSpace(s))); sev {
	case AlertSeverityLow, AlertSeverityMedium, AlertSeverityHigh, AlertSeverityCritical:
		return sev, true
	default:
		return "", false
	}
}

// Rank orders severities most urgent first: CRITICAL=0 through LOW=3.
// Unknown values sort after LOW.
func (s AlertSeverity) Rank() int {
	switch s {
	case AlertSeverityCritical:
		return 0
	case AlertSeverityHigh:
		return 1
	case AlertSeverityMedium:
		return 2
	case AlertSeverityLow:
		return 3
	default:
		return 4
	}
}

func (s AlertSeverity) Label() string {
	switch s {
	case AlertSeverityCritical:
		return "Critical"
	case AlertSeverityHigh:
		return "High"
	case AlertSeverityMedium:
		return "Medium"
	case AlertSeverityLow:
		return "Low"
	default:
		return "Unknown"
	}
}

// Color is the hex marker color dashboards use for the severity.
func (s AlertSeverity) Color() string {
	switch s {
	case AlertSeverityCritical:
		return "#ff0000"
	case AlertSeverityHigh:
		return "#ff9900"
	case AlertSeverityMedium:
		return "#ffcc00"
	case AlertSeverityLow:
		return "#3399ff"
	default:
		return "#999999"
	}
}

type Location struct {
	Name        string      `json:"name"`
	Coordinates Coordinates `json:"coordinates"`
}

type DisasterAlert struct {
	ID          string        `json:"id"` // source-native, not unique across sources
	Type        DisasterType  `json:"type"`
	Severity    AlertSeverity `json:"severity"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Location    Location      `json:"location"`
	SafetyTips  []string      `json:"safetyTips"`
	Timestamp   time.Time     `json:"timestamp"` // when the event occurred
	Radius      float64       `json:"radius"`    // affected radius in km, advisory only
	Active      bool          `json:"active"`
}

func (a DisasterAlert) Coordinates() Coordinates {
	return a.Location.Coordinates
}
