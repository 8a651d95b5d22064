package proximity

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/mr1hm/go-disaster-alerts/internal/geo"
	"github.com/mr1hm/go-disaster-alerts/internal/models"
)

func alertAt(id string, sev models.AlertSeverity, lat, lon float64, ts time.Time) models.DisasterAlert {
	return models.DisasterAlert{
		ID:        id,
		Type:      models.DisasterTypeEarthquake,
		Severity:  sev,
		Location:  models.Location{Name: id, Coordinates: models.Coordinates{Latitude: lat, Longitude: lon}},
		Timestamp: ts,
		Active:    true,
	}
}

func TestFilterByRadius_SoundAndComplete(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	points := make([]models.Coordinates, 500)
	for i := range points {
		points[i] = models.Coordinates{
			Latitude:  36 + rng.Float64()*4,
			Longitude: -124 + rng.Float64()*4,
		}
	}
	identity := func(c models.Coordinates) models.Coordinates { return c }
	origin := models.Coordinates{Latitude: 37.7749, Longitude: -122.4194}

	for _, r := range []float64{0, 10, 50, 120, 400} {
		got := FilterByRadius(points, origin.Latitude, origin.Longitude, r, identity)

		kept := make(map[models.Coordinates]bool, len(got))
		for _, c := range got {
			if d := geo.Distance(origin, c); d > r {
				t.Errorf("radius %v: kept point %v at %.3f km", r, c, d)
			}
			kept[c] = true
		}
		for _, c := range points {
			if geo.Distance(origin, c) <= r && !kept[c] {
				t.Errorf("radius %v: dropped in-range point %v", r, c)
			}
		}
	}
}

func TestFilterByRadius_EdgeCases(t *testing.T) {
	identity := func(c models.Coordinates) models.Coordinates { return c }

	got := FilterByRadius(nil, 0, 0, 100, identity)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result for empty input, got %#v", got)
	}

	pts := []models.Coordinates{{Latitude: 10, Longitude: 10}, {Latitude: 10.001, Longitude: 10}}
	if got := FilterByRadius(pts, 10, 10, 0, identity); len(got) != 1 || got[0] != pts[0] {
		t.Errorf("radius 0 should match only the coincident point, got %v", got)
	}
	if got := FilterByRadius(pts, 10, 10, -5, identity); len(got) != 0 {
		t.Errorf("negative radius should match nothing, got %v", got)
	}
}

func TestNearbyActive_SkipsInactive(t *testing.T) {
	now := time.Now()
	quake := alertAt("q", models.AlertSeverityHigh, 37.7749, -122.4194, now)
	stale := alertAt("old", models.AlertSeverityHigh, 37.7749, -122.4194, now)
	stale.Active = false

	got := NearbyActive([]models.DisasterAlert{quake, stale}, 37.7649, -122.4194, 50)
	if len(got) != 1 || got[0].ID != "q" {
		t.Errorf("expected only the active alert, got %v", got)
	}
	if got := NearbyActive([]models.DisasterAlert{quake}, 37.7649, -122.4194, 0); len(got) != 0 {
		t.Errorf("radius 0 from a non-coincident origin should be empty, got %v", got)
	}
}

func TestNearbyShelters(t *testing.T) {
	shelters := []models.SafetyShelter{
		{ID: "sf", Coordinates: models.Coordinates{Latitude: 37.7649, Longitude: -122.4194}},
		{ID: "hou", Coordinates: models.Coordinates{Latitude: 29.7504, Longitude: -95.3698}},
	}
	got := NearbyShelters(shelters, 37.7749, -122.4194, ShelterRadiusKm)
	if len(got) != 1 || got[0].ID != "sf" {
		t.Errorf("expected only the San Francisco shelter, got %v", got)
	}
}

func TestSortBySeverityThenRecency(t *testing.T) {
	base := time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)
	low := alertAt("low", models.AlertSeverityLow, 0, 0, base.Add(48*time.Hour))
	crit := alertAt("crit", models.AlertSeverityCritical, 0, 0, base)
	older := alertAt("older", models.AlertSeverityHigh, 0, 0, base)
	newer := alertAt("newer", models.AlertSeverityHigh, 0, 0, base.Add(time.Hour))

	in := []models.DisasterAlert{low, older, crit, newer}
	got := SortBySeverityThenRecency(in)

	want := []string{"crit", "newer", "older", "low"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
	if in[0].ID != "low" {
		t.Error("input slice was reordered")
	}
}

func TestSortBySeverityThenRecency_Stable(t *testing.T) {
	ts := time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)
	a := alertAt("a", models.AlertSeverityMedium, 0, 0, ts)
	b := alertAt("b", models.AlertSeverityMedium, 0, 0, ts)

	got := SortBySeverityThenRecency([]models.DisasterAlert{a, b})
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("expected equal keys to keep input order, got %s,%s", got[0].ID, got[1].ID)
	}
	if got := SortBySeverityThenRecency(nil); got == nil {
		t.Error("expected non-nil result for nil input")
	}
}
