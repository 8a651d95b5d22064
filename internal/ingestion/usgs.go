package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/mr1hm/go-disaster-alerts/internal/feed"
	"github.com/mr1hm/go-disaster-alerts/internal/models"
	"github.com/mr1hm/go-disaster-alerts/internal/normalize"
	"github.com/mr1hm/go-disaster-alerts/internal/shelter"
)

const DefaultUSGSURL = "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/significant_month.geojson"

type usgsResponse struct {
	Features []usgsFeature `json:"features"`
}

type usgsFeature struct {
	ID         string         `json:"id"`
	Properties usgsProperties `json:"properties"`
	Geometry   usgsGeometry   `json:"geometry"`
}
type usgsProperties struct {
	Mag   *float64 `json:"mag"`
	Place string   `json:"place"`
	Time  int64    `json:"time"` // unix ms
}
type usgsGeometry struct {
	Coordinates []float64 `json:"coordinates"` // [lon, lat, depth]
}

// NewSeismicSource reads the USGS significant-earthquake GeoJSON feed.
func NewSeismicSource(client *feed.Client, url string, shelters *shelter.Generator) *FeedSource {
	return &FeedSource{
		name:     "usgs",
		shelters: shelters,
		clients:  []*feed.Client{client},
		fetch: func(ctx context.Context) ([]models.DisasterAlert, error) {
			return fetchUSGS(ctx, client, url)
		},
	}
}

func fetchUSGS(ctx context.Context, client *feed.Client, url string) ([]models.DisasterAlert, error) {
	var data usgsResponse
	if err := client.GetJSON(ctx, url, &data); err != nil {
		return nil, err
	}

	alerts := make([]models.DisasterAlert, 0, len(data.Features))
	for _, f := range data.Features {
		a, ok := seismicAlert(f)
		if !ok {
			slog.Debug("dropping earthquake feature", "source", "usgs", "id", f.ID)
			continue
		}
		alerts = append(alerts, a)
	}

	slog.Debug("fetch complete", "source", "usgs", "features", len(data.Features), "alerts", len(alerts))
	return alerts, nil
}

func seismicAlert(f usgsFeature) (models.DisasterAlert, bool) {
	c := f.Geometry.Coordinates
	if f.Properties.Mag == nil || len(c) < 2 {
		return models.DisasterAlert{}, false
	}
	coords := models.Coordinates{Latitude: c[1], Longitude: c[0]}
	if !coords.Valid() {
		return models.DisasterAlert{}, false
	}

	var depth float64
	if len(c) > 2 {
		depth = c[2]
	}

	mag := *f.Properties.Mag
	place := f.Properties.Place
	name := placeName(place)
	severity := normalize.EarthquakeSeverity(mag)

	return models.DisasterAlert{
		ID:          f.ID,
		Type:        models.DisasterTypeEarthquake,
		Severity:    severity,
		Title:       fmt.Sprintf("M%.1f - %s", mag, name),
		Description: fmt.Sprintf("%.1f magnitude earthquake %s. Depth: %.1fkm.", mag, place, depth),
		Location:    models.Location{Name: name, Coordinates: coords},
		SafetyTips:  normalize.SafetyTips(models.DisasterTypeEarthquake, severity),
		Timestamp:   time.UnixMilli(f.Properties.Time).UTC(),
		Radius:      math.Ceil(mag * 10),
		Active:      true,
	}, true
}

// placeName strips the "12 km SSW of " prefix USGS puts on place strings.
func placeName(place string) string {
	if _, after, ok := strings.Cut(place, " of "); ok {
		return after
	}
	if place == "" {
		return "Unknown location"
	}
	return place
}
