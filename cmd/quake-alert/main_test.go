package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/mr1hm/go-disaster-alerts/internal/config"
	"github.com/mr1hm/go-disaster-alerts/internal/models"
	"github.com/mr1hm/go-disaster-alerts/internal/proximity"
)

func TestPrintAlerts_MockSource(t *testing.T) {
	s, err := cliSource("mock", &config.Config{})
	if err != nil {
		t.Fatalf("cliSource failed: %v", err)
	}

	origin := models.DefaultUserLocation().Coordinates
	alerts := proximity.SortBySeverityThenRecency(s.GetAlertsNearLocation(context.Background(), origin.Latitude, origin.Longitude, 200))

	var out bytes.Buffer
	printAlerts(&out, origin, 200, alerts)

	got := out.String()
	if !strings.HasPrefix(got, "2 active alerts within 200 km of 37.7749° N, 122.4194° W") {
		t.Errorf("unexpected header: %q", got)
	}
	// CRITICAL wildfire before the HIGH earthquake
	if strings.Index(got, "Wildfire") > strings.Index(got, "Earthquake") {
		t.Errorf("expected wildfire listed first:\n%s", got)
	}
	if !strings.Contains(got, "very close") {
		t.Errorf("expected distance description:\n%s", got)
	}
}

func TestCliSource_Unknown(t *testing.T) {
	if _, err := cliSource("gdacs", &config.Config{}); err == nil {
		t.Error("expected error for unknown source")
	}
}
