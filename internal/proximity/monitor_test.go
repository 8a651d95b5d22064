package proximity

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-disaster-alerts/internal/models"
)

func sfLocation(lat, lon float64) models.UserLocation {
	return models.UserLocation{Coordinates: models.Coordinates{Latitude: lat, Longitude: lon}, Name: "test"}
}

func TestMonitor_LevelTriggered(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	b := NewBroadcaster()
	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	m := NewMonitor(b, HazardRadiusKm, clock)
	m.SetAlerts([]models.DisasterAlert{
		alertAt("sf", models.AlertSeverityHigh, 37.7749, -122.4194, clock.Now()),
		alertAt("sonoma", models.AlertSeverityCritical, 38.5078, -122.8097, clock.Now()),
	})

	// 1.1 km from SF, ~88 km from Sonoma
	loc := sfLocation(37.7649, -122.4194)
	for i := 0; i < 2; i++ {
		w, ok := m.Update(loc)
		if !ok {
			t.Fatalf("update %d: expected a warning", i)
		}
		if len(w.Alerts) != 1 || w.Alerts[0].ID != "sf" {
			t.Errorf("update %d: expected only sf, got %v", i, w.Alerts)
		}
		if !w.At.Equal(clock.Now()) {
			t.Errorf("update %d: expected timestamp from clock, got %v", i, w.At)
		}
		clock.Advance(time.Second)
	}

	if len(ch) != 2 {
		t.Errorf("expected the warning to re-fire on each update, got %d", len(ch))
	}
}

func TestMonitor_NoWarningOutOfRange(t *testing.T) {
	b := NewBroadcaster()
	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	m := NewMonitor(b, HazardRadiusKm, clockwork.NewFakeClock())
	m.SetAlerts([]models.DisasterAlert{alertAt("hou", models.AlertSeverityMedium, 29.7604, -95.3698, time.Now())})

	if _, ok := m.Update(sfLocation(37.7749, -122.4194)); ok {
		t.Error("expected no warning far from every alert")
	}
	if len(ch) != 0 {
		t.Errorf("expected nothing published, got %d", len(ch))
	}
}

func TestMonitor_CheckOrdersByUrgency(t *testing.T) {
	now := time.Now()
	m := NewMonitor(nil, 0, nil)
	m.SetAlerts([]models.DisasterAlert{
		alertAt("low", models.AlertSeverityLow, 37.77, -122.41, now),
		alertAt("crit", models.AlertSeverityCritical, 37.78, -122.42, now.Add(-time.Hour)),
	})

	got := m.Check(sfLocation(37.7749, -122.4194))
	if len(got) != 2 || got[0].ID != "crit" {
		t.Errorf("expected critical alert first, got %v", got)
	}
	if m.AlertCount() != 2 {
		t.Errorf("expected 2 alerts, got %d", m.AlertCount())
	}
}

func TestMonitor_SetAlertsCopies(t *testing.T) {
	alerts := []models.DisasterAlert{alertAt("sf", models.AlertSeverityHigh, 37.7749, -122.4194, time.Now())}
	m := NewMonitor(nil, HazardRadiusKm, nil)
	m.SetAlerts(alerts)

	alerts[0].Active = false
	if len(m.Check(sfLocation(37.7749, -122.4194))) != 1 {
		t.Error("monitor should not observe caller mutations after SetAlerts")
	}
}

func TestMonitor_Run(t *testing.T) {
	b := NewBroadcaster()
	id, ch := b.Subscribe()
	defer b.Unsubscribe(id)

	m := NewMonitor(b, HazardRadiusKm, clockwork.NewFakeClock())
	m.SetAlerts([]models.DisasterAlert{alertAt("sf", models.AlertSeverityHigh, 37.7749, -122.4194, time.Now())})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan models.UserLocation)
	done := make(chan struct{})
	go func() {
		m.Run(ctx, updates)
		close(done)
	}()

	updates <- sfLocation(37.7649, -122.4194)

	select {
	case w := <-ch:
		if w.Alerts[0].ID != "sf" {
			t.Errorf("unexpected warning %v", w.Alerts)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for warning")
	}

	close(updates)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after updates closed")
	}
}

func TestMonitor_Subscribers(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()
	m := NewMonitor(b, HazardRadiusKm, nil)

	id, _ := b.Subscribe()
	if got := m.Subscribers(); got != 1 {
		t.Errorf("expected 1 subscriber, got %d", got)
	}
	b.Unsubscribe(id)
	if got := m.Subscribers(); got != 0 {
		t.Errorf("expected 0 subscribers, got %d", got)
	}

	if got := NewMonitor(nil, 0, nil).Subscribers(); got != 0 {
		t.Errorf("expected 0 subscribers without a broadcaster, got %d", got)
	}
}
