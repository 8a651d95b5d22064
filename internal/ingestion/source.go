package ingestion

import (
	"context"
	"log/slog"

	"github.com/mr1hm/go-disaster-alerts/internal/feed"
	"github.com/mr1hm/go-disaster-alerts/internal/models"
	"github.com/mr1hm/go-disaster-alerts/internal/proximity"
	"github.com/mr1hm/go-disaster-alerts/internal/shelter"
)

type fetchFunc func(ctx context.Context) ([]models.DisasterAlert, error)

// FeedSource serves the read contract from an upstream feed. Every call
// re-fetches; nothing from a previous fetch is kept. Shelters are
// synthesized around the fetched alerts since the feeds carry none.
type FeedSource struct {
	name     string
	fetch    fetchFunc
	shelters *shelter.Generator
	clients  []*feed.Client
}

func (s *FeedSource) Name() string {
	return s.name
}

// BreakerStates maps each upstream client to its circuit breaker state.
func (s *FeedSource) BreakerStates() map[string]string {
	states := make(map[string]string, len(s.clients))
	for _, c := range s.clients {
		states[c.Name()] = c.State().String()
	}
	return states
}

// GetActiveAlerts returns whatever the upstream produced. Fetch failures
// are logged and yield an empty (or, for composite feeds, partial) list.
func (s *FeedSource) GetActiveAlerts(ctx context.Context) []models.DisasterAlert {
	alerts, err := s.fetch(ctx)
	if err != nil {
		slog.Error("feed fetch failed", "source", s.name, "error", err)
	}

	active := make([]models.DisasterAlert, 0, len(alerts))
	for _, a := range alerts {
		if a.Active {
			active = append(active, a)
		}
	}
	return active
}

func (s *FeedSource) GetAlertsNearLocation(ctx context.Context, lat, lon, radiusKm float64) []models.DisasterAlert {
	return proximity.NearbyActive(s.GetActiveAlerts(ctx), lat, lon, radiusKm)
}

func (s *FeedSource) GetAlertByID(ctx context.Context, id string) *models.DisasterAlert {
	for _, a := range s.GetActiveAlerts(ctx) {
		if a.ID == id {
			return &a
		}
	}
	return nil
}

// GetNearbyShelters generates shelters for alerts within twice the radius,
// since a generated shelter can sit up to 50 km from its alert, then keeps
// the shelters inside the radius.
func (s *FeedSource) GetNearbyShelters(ctx context.Context, lat, lon, radiusKm float64) []models.SafetyShelter {
	nearby := proximity.NearbyActive(s.GetActiveAlerts(ctx), lat, lon, radiusKm*2)
	return proximity.NearbyShelters(s.shelters.ForAlerts(nearby), lat, lon, radiusKm)
}
