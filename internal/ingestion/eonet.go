package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mr1hm/go-disaster-alerts/internal/feed"
	"github.com/mr1hm/go-disaster-alerts/internal/models"
	"github.com/mr1hm/go-disaster-alerts/internal/normalize"
	"github.com/mr1hm/go-disaster-alerts/internal/shelter"
)

const (
	DefaultEONETURL = "https://eonet.gsfc.nasa.gov/api/v3/events?status=open"

	hazardRadiusKm = 50
)

type eonetResponse struct {
	Events []eonetEvent `json:"events"`
}

type eonetEvent struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Closed     *string          `json:"closed"` // null while open
	Categories []eonetCategory  `json:"categories"`
	Sources    []eonetReference `json:"sources"`
	Geometry   []eonetGeometry  `json:"geometry"`
}
type eonetCategory struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
type eonetReference struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
type eonetGeometry struct {
	Date        string          `json:"date"`
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"` // [lon, lat] for points
}

type hazardClass struct {
	Type     models.DisasterType
	Severity models.AlertSeverity
}

// hazardCategories is the complete set of EONET categories we surface.
// Severities are fixed because the feed carries no magnitude. Events in any
// other category (volcanoes, dust, sea ice, ...) are dropped.
var hazardCategories = map[string]hazardClass{
	"wildfires":    {models.DisasterTypeWildfire, models.AlertSeverityHigh},
	"floods":       {models.DisasterTypeFlood, models.AlertSeverityMedium},
	"severeStorms": {models.DisasterTypeFlood, models.AlertSeverityMedium},
}

// NewHazardSource reads open events from NASA EONET.
func NewHazardSource(client *feed.Client, url string, shelters *shelter.Generator) *FeedSource {
	return &FeedSource{
		name:     "eonet",
		shelters: shelters,
		clients:  []*feed.Client{client},
		fetch: func(ctx context.Context) ([]models.DisasterAlert, error) {
			return fetchEONET(ctx, client, url)
		},
	}
}

func fetchEONET(ctx context.Context, client *feed.Client, url string) ([]models.DisasterAlert, error) {
	var data eonetResponse
	if err := client.GetJSON(ctx, url, &data); err != nil {
		return nil, err
	}

	alerts := make([]models.DisasterAlert, 0, len(data.Events))
	for _, e := range data.Events {
		a, ok := hazardAlert(e)
		if !ok {
			continue
		}
		alerts = append(alerts, a)
	}

	slog.Debug("fetch complete", "source", "eonet", "events", len(data.Events), "alerts", len(alerts))
	return alerts, nil
}

func hazardAlert(e eonetEvent) (models.DisasterAlert, bool) {
	if e.Closed != nil || len(e.Categories) == 0 || len(e.Geometry) == 0 {
		return models.DisasterAlert{}, false
	}
	class, ok := hazardCategories[e.Categories[0].ID]
	if !ok {
		return models.DisasterAlert{}, false
	}

	// only the latest position matters
	latest := e.Geometry[len(e.Geometry)-1]
	coords, ok := eventPoint(latest)
	if !ok {
		slog.Debug("dropping event without point geometry", "source", "eonet", "id", e.ID)
		return models.DisasterAlert{}, false
	}
	ts, err := time.Parse(time.RFC3339, latest.Date)
	if err != nil {
		slog.Debug("dropping event with bad date", "source", "eonet", "id", e.ID, "date", latest.Date)
		return models.DisasterAlert{}, false
	}

	ids := make([]string, 0, len(e.Sources))
	for _, s := range e.Sources {
		ids = append(ids, s.ID)
	}

	return models.DisasterAlert{
		ID:          e.ID,
		Type:        class.Type,
		Severity:    class.Severity,
		Title:       e.Title,
		Description: fmt.Sprintf("%s. Identified by %s.", e.Title, strings.Join(ids, ", ")),
		Location:    models.Location{Name: e.Title, Coordinates: coords},
		SafetyTips:  normalize.SafetyTips(class.Type, class.Severity),
		Timestamp:   ts.UTC(),
		Radius:      hazardRadiusKm,
		Active:      true,
	}, true
}

func eventPoint(g eonetGeometry) (models.Coordinates, bool) {
	if g.Type != "" && g.Type != "Point" {
		return models.Coordinates{}, false
	}
	var c []float64
	if err := json.Unmarshal(g.Coordinates, &c); err != nil || len(c) < 2 {
		return models.Coordinates{}, false
	}
	coords := models.Coordinates{Latitude: c[1], Longitude: c[0]}
	return coords, coords.Valid()
}
