package proximity

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-disaster-alerts/internal/models"
)

// Warning is emitted when a position update lands within the hazard radius
// of at least one active alert.
type Warning struct {
	Location models.UserLocation    `json:"location"`
	Alerts   []models.DisasterAlert `json:"alerts"`
	At       time.Time              `json:"at"`
}

// Monitor performs level-triggered proximity checks: every position update
// is evaluated against the current alert set, so an alert keeps firing for
// as long as the position stays in range.
type Monitor struct {
	mu       sync.RWMutex
	alerts   []models.DisasterAlert
	radiusKm float64

	broadcaster *Broadcaster
	clock       clockwork.Clock
}

func NewMonitor(b *Broadcaster, radiusKm float64, clock clockwork.Clock) *Monitor {
	if radiusKm <= 0 {
		radiusKm = HazardRadiusKm
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Monitor{
		radiusKm:    radiusKm,
		broadcaster: b,
		clock:       clock,
	}
}

// SetAlerts replaces the alert set checked by later updates.
func (m *Monitor) SetAlerts(alerts []models.DisasterAlert) {
	cp := slices.Clone(alerts)
	m.mu.Lock()
	m.alerts = cp
	m.mu.Unlock()
}

func (m *Monitor) AlertCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.alerts)
}

// Subscribers is the number of open warning subscriptions.
func (m *Monitor) Subscribers() int {
	if m.broadcaster == nil {
		return 0
	}
	return m.broadcaster.SubscriberCount()
}

// Check returns the active alerts within the hazard radius of loc, most
// urgent first.
func (m *Monitor) Check(loc models.UserLocation) []models.DisasterAlert {
	m.mu.RLock()
	nearby := NearbyActive(m.alerts, loc.Coordinates.Latitude, loc.Coordinates.Longitude, m.radiusKm)
	m.mu.RUnlock()
	return SortBySeverityThenRecency(nearby)
}

// Update checks loc and publishes a Warning when anything is in range. The
// second return is false when nothing was nearby.
func (m *Monitor) Update(loc models.UserLocation) (*Warning, bool) {
	nearby := m.Check(loc)
	if len(nearby) == 0 {
		return nil, false
	}

	w := &Warning{Location: loc, Alerts: nearby, At: m.clock.Now()}
	if m.broadcaster != nil {
		delivered := m.broadcaster.Publish(w)
		slog.Debug("proximity warning published",
			"alerts", len(nearby),
			"subscribers", delivered,
			"lat", loc.Coordinates.Latitude,
			"lon", loc.Coordinates.Longitude)
	}
	return w, true
}

// Run consumes position updates until ctx is cancelled or updates closes.
func (m *Monitor) Run(ctx context.Context, updates <-chan models.UserLocation) {
	for {
		select {
		case <-ctx.Done():
			return
		case loc, ok := <-updates:
			if !ok {
				return
			}
			m.Update(loc)
		}
	}
}
