// Package source defines the contract every alert backend implements.
package source

import (
	"context"

	"github.com/mr1hm/go-disaster-alerts/internal/models"
)

// Source is the read side shared by feeds and stores. Reads never fail:
// a backend that cannot answer logs the problem and returns an empty (or
// fallback) result.
type Source interface {
	GetActiveAlerts(ctx context.Context) []models.DisasterAlert
	GetAlertsNearLocation(ctx context.Context, lat, lon, radiusKm float64) []models.DisasterAlert
	// GetAlertByID returns nil for unknown ids.
	GetAlertByID(ctx context.Context, id string) *models.DisasterAlert
	GetNearbyShelters(ctx context.Context, lat, lon, radiusKm float64) []models.SafetyShelter
}

// Store is a Source backed by persistent storage. Write failures are
// returned to the caller.
type Store interface {
	Source

	AddAlert(ctx context.Context, a *models.DisasterAlert) error
	UpdateAlert(ctx context.Context, a *models.DisasterAlert) error
	DeleteAlert(ctx context.Context, id string) error

	AddShelter(ctx context.Context, s *models.SafetyShelter) error
	UpdateShelter(ctx context.Context, s *models.SafetyShelter) error
	DeleteShelter(ctx context.Context, id string) error
}
