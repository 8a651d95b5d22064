// Package notify turns proximity warnings into user notifications.
package notify

import (
	"context"
	"fmt"

	"github.com/mr1hm/go-disaster-alerts/internal/models"
)

// Notification is one alert delivered to one position.
type Notification struct {
	Alert    models.DisasterAlert `json:"alert"`
	Location models.UserLocation  `json:"location"`
	Cell     string               `json:"cell"` // geohash of Location
	Message  string               `json:"message"`
}

type Notifier interface {
	// Name labels the delivery channel in logs and metrics.
	Name() string
	Notify(ctx context.Context, n Notification) error
}

func SeverityPrefix(s models.AlertSeverity) string {
	switch s {
	case models.AlertSeverityCritical:
		return "CRITICAL:"
	case models.AlertSeverityHigh:
		return "WARNING:"
	case models.AlertSeverityMedium:
		return "ALERT:"
	case models.AlertSeverityLow:
		return "NOTICE:"
	default:
		return ""
	}
}

// FormatMessage renders "<PREFIX> <title>: <description>".
func FormatMessage(a models.DisasterAlert) string {
	prefix := SeverityPrefix(a.Severity)
	if prefix == "" {
		return fmt.Sprintf("%s: %s", a.Title, a.Description)
	}
	return fmt.Sprintf("%s %s: %s", prefix, a.Title, a.Description)
}
