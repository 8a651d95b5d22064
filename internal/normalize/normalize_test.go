package normalize

import (
	"encoding/json"
	"errors"
	"testing"

	"google.golang.org/genproto/googleapis/type/latlng"

	"github.com/mr1hm/go-disaster-alerts/internal/models"
)

func TestEarthquakeSeverity_Boundaries(t *testing.T) {
	cases := []struct {
		mag  float64
		want models.AlertSeverity
	}{
		{0, models.AlertSeverityLow},
		{3.9, models.AlertSeverityLow},
		{4.0, models.AlertSeverityMedium},
		{5.99, models.AlertSeverityMedium},
		{6.0, models.AlertSeverityHigh},
		{7.2, models.AlertSeverityHigh},
		{7.49, models.AlertSeverityHigh},
		{7.5, models.AlertSeverityCritical},
		{9.1, models.AlertSeverityCritical},
	}
	for _, tc := range cases {
		if got := EarthquakeSeverity(tc.mag); got != tc.want {
			t.Errorf("EarthquakeSeverity(%v) = %s, want %s", tc.mag, got, tc.want)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		typ  models.DisasterType
		p    Params
		want models.AlertSeverity
	}{
		{"quake", models.DisasterTypeEarthquake, Params{Magnitude: 6.1}, models.AlertSeverityHigh},
		{"shallow flood", models.DisasterTypeFlood, Params{WaterLevelFt: 2.5}, models.AlertSeverityLow},
		{"flood at 8ft", models.DisasterTypeFlood, Params{WaterLevelFt: 8}, models.AlertSeverityHigh},
		{"flood at 15ft", models.DisasterTypeFlood, Params{WaterLevelFt: 15}, models.AlertSeverityCritical},
		{"tropical storm", models.DisasterTypeHurricane, Params{WindSpeedMph: 60}, models.AlertSeverityLow},
		{"cat 1", models.DisasterTypeHurricane, Params{WindSpeedMph: 74}, models.AlertSeverityMedium},
		{"cat 4", models.DisasterTypeHurricane, Params{WindSpeedMph: 140}, models.AlertSeverityCritical},
		{"wildfire", models.DisasterTypeWildfire, Params{}, models.AlertSeverityMedium},
		{"tsunami", models.DisasterTypeTsunami, Params{Magnitude: 9}, models.AlertSeverityMedium},
	}
	for _, tc := range cases {
		if got := Classify(tc.typ, tc.p); got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestSafetyTips(t *testing.T) {
	low := SafetyTips(models.DisasterTypeEarthquake, models.AlertSeverityMedium)
	high := SafetyTips(models.DisasterTypeEarthquake, models.AlertSeverityCritical)
	if len(low) != 4 {
		t.Errorf("expected 4 tips, got %d", len(low))
	}
	if len(high) != 6 {
		t.Errorf("expected 6 tips for a critical quake, got %d", len(high))
	}
	if high[0] != "Drop, cover, and hold on" {
		t.Errorf("unexpected first tip %q", high[0])
	}

	// callers may mutate what they get back
	low[0] = "changed"
	if SafetyTips(models.DisasterTypeEarthquake, models.AlertSeverityLow)[0] == "changed" {
		t.Error("SafetyTips returned shared backing storage")
	}

	if len(SafetyTips(models.DisasterType("VOLCANO"), models.AlertSeverityHigh)) != 0 {
		t.Error("expected no tips for unsupported type")
	}
}

type accessorPoint struct{ lat, lon float64 }

func (p accessorPoint) GetLatitude() float64  { return p.lat }
func (p accessorPoint) GetLongitude() float64 { return p.lon }

func TestCoordinates_Shapes(t *testing.T) {
	want := models.Coordinates{Latitude: 37.7749, Longitude: -122.4194}

	inputs := map[string]any{
		"canonical":   want,
		"pointer":     &want,
		"geo-point":   &latlng.LatLng{Latitude: 37.7749, Longitude: -122.4194},
		"accessors":   accessorPoint{37.7749, -122.4194},
		"plain map":   map[string]any{"latitude": 37.7749, "longitude": -122.4194},
		"json number": map[string]any{"latitude": json.Number("37.7749"), "longitude": json.Number("-122.4194")},
	}
	for name, in := range inputs {
		got, err := Coordinates(in)
		if err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
			continue
		}
		if got != want {
			t.Errorf("%s: got %+v, want %+v", name, got, want)
		}
	}
}

func TestCoordinates_Rejects(t *testing.T) {
	if _, err := Coordinates("37.7,-122.4"); !errors.Is(err, ErrUnsupportedCoordinates) {
		t.Errorf("expected ErrUnsupportedCoordinates, got %v", err)
	}
	if _, err := Coordinates(map[string]any{"latitude": "north"}); !errors.Is(err, ErrUnsupportedCoordinates) {
		t.Errorf("expected ErrUnsupportedCoordinates for string latitude, got %v", err)
	}
	if _, err := Coordinates(map[string]any{"latitude": 91.0, "longitude": 0.0}); !errors.Is(err, ErrCoordinatesOutOfRange) {
		t.Errorf("expected ErrCoordinatesOutOfRange, got %v", err)
	}
	var nilPoint *latlng.LatLng
	if _, err := Coordinates(nilPoint); err == nil {
		t.Error("expected error for nil geo-point")
	}
}
