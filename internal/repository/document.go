package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genproto/googleapis/type/latlng"

	"github.com/mr1hm/go-disaster-alerts/internal/models"
	"github.com/mr1hm/go-disaster-alerts/internal/normalize"
	"github.com/mr1hm/go-disaster-alerts/internal/proximity"
)

const (
	alertsCollection   = "alerts"
	sheltersCollection = "shelters"
)

// DocumentStore serves alerts and shelters from a document database. Reads
// that fail fall back to the fixture dataset; documents that cannot be
// decoded are skipped.
type DocumentStore struct {
	client DocumentClient
}

func NewDocumentStore(client DocumentClient) *DocumentStore {
	return &DocumentStore{client: client}
}

func (d *DocumentStore) GetActiveAlerts(ctx context.Context) []models.DisasterAlert {
	return activeOnly(d.allAlerts(ctx))
}

func (d *DocumentStore) GetAlertsNearLocation(ctx context.Context, lat, lon, radiusKm float64) []models.DisasterAlert {
	return proximity.NearbyActive(d.allAlerts(ctx), lat, lon, radiusKm)
}

func (d *DocumentStore) GetAlertByID(ctx context.Context, id string) *models.DisasterAlert {
	doc, err := d.client.Get(ctx, alertsCollection, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		slog.Error("reading alert failed, serving fixtures", "store", "firestore", "id", id, "error", err)
		return fixtureAlert(id)
	}

	a, err := alertFromDocument(doc)
	if err != nil {
		slog.Warn("skipping undecodable alert", "store", "firestore", "id", id, "error", err)
		return nil
	}
	return &a
}

func (d *DocumentStore) GetNearbyShelters(ctx context.Context, lat, lon, radiusKm float64) []models.SafetyShelter {
	docs, err := d.client.List(ctx, sheltersCollection)
	if err != nil {
		slog.Error("reading shelters failed, serving fixtures", "store", "firestore", "error", err)
		return proximity.NearbyShelters(FixtureShelters(), lat, lon, radiusKm)
	}

	shelters := make([]models.SafetyShelter, 0, len(docs))
	for _, doc := range docs {
		sh, err := shelterFromDocument(doc)
		if err != nil {
			slog.Warn("skipping undecodable shelter", "store", "firestore", "id", doc.ID, "error", err)
			continue
		}
		shelters = append(shelters, sh)
	}
	return proximity.NearbyShelters(shelters, lat, lon, radiusKm)
}

func (d *DocumentStore) allAlerts(ctx context.Context) []models.DisasterAlert {
	docs, err := d.client.List(ctx, alertsCollection)
	if err != nil {
		slog.Error("reading alerts failed, serving fixtures", "store", "firestore", "error", err)
		return FixtureAlerts()
	}

	alerts := make([]models.DisasterAlert, 0, len(docs))
	for _, doc := range docs {
		a, err := alertFromDocument(doc)
		if err != nil {
			slog.Warn("skipping undecodable alert", "store", "firestore", "id", doc.ID, "error", err)
			continue
		}
		alerts = append(alerts, a)
	}
	return alerts
}

func (d *DocumentStore) AddAlert(ctx context.Context, a *models.DisasterAlert) error {
	if err := validateAlert(a); err != nil {
		return err
	}
	id, err := d.client.Create(ctx, alertsCollection, a.ID, alertDocument(a))
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

func (d *DocumentStore) UpdateAlert(ctx context.Context, a *models.DisasterAlert) error {
	if err := validateAlert(a); err != nil {
		return err
	}
	return d.client.Replace(ctx, alertsCollection, a.ID, alertDocument(a))
}

func (d *DocumentStore) DeleteAlert(ctx context.Context, id string) error {
	return d.client.Delete(ctx, alertsCollection, id)
}

func (d *DocumentStore) AddShelter(ctx context.Context, s *models.SafetyShelter) error {
	if err := validateShelter(s); err != nil {
		return err
	}
	id, err := d.client.Create(ctx, sheltersCollection, s.ID, shelterDocument(s))
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

func (d *DocumentStore) UpdateShelter(ctx context.Context, s *models.SafetyShelter) error {
	if err := validateShelter(s); err != nil {
		return err
	}
	return d.client.Replace(ctx, sheltersCollection, s.ID, shelterDocument(s))
}

func (d *DocumentStore) DeleteShelter(ctx context.Context, id string) error {
	return d.client.Delete(ctx, sheltersCollection, id)
}

// Writes always store coordinates as geo-points.
func geoPoint(c models.Coordinates) *latlng.LatLng {
	return &latlng.LatLng{Latitude: c.Latitude, Longitude: c.Longitude}
}

func alertDocument(a *models.DisasterAlert) map[string]any {
	tips := make([]any, len(a.SafetyTips))
	for i, t := range a.SafetyTips {
		tips[i] = t
	}
	return map[string]any{
		"type":        string(a.Type),
		"severity":    string(a.Severity),
		"title":       a.Title,
		"description": a.Description,
		"location": map[string]any{
			"name":        a.Location.Name,
			"coordinates": geoPoint(a.Location.Coordinates),
		},
		"safetyTips": tips,
		"timestamp":  a.Timestamp.UTC(),
		"radius":     a.Radius,
		"active":     a.Active,
	}
}

func shelterDocument(s *models.SafetyShelter) map[string]any {
	return map[string]any{
		"name":        s.Name,
		"coordinates": geoPoint(s.Coordinates),
		"address":     s.Address,
		"capacity":    int64(s.Capacity),
		"available":   s.Available,
	}
}

func alertFromDocument(doc Document) (models.DisasterAlert, error) {
	a := models.DisasterAlert{ID: doc.ID}

	typ, ok := models.ParseDisasterType(stringField(doc.Data, "type"))
	if !ok {
		return a, fmt.Errorf("unsupported type %q", doc.Data["type"])
	}
	sev, ok := models.ParseAlertSeverity(stringField(doc.Data, "severity"))
	if !ok {
		return a, fmt.Errorf("unsupported severity %q", doc.Data["severity"])
	}
	location, ok := doc.Data["location"].(map[string]any)
	if !ok {
		return a, errors.New("missing location")
	}
	coords, err := normalize.Coordinates(location["coordinates"])
	if err != nil {
		return a, err
	}
	ts, err := timeField(doc.Data["timestamp"])
	if err != nil {
		return a, err
	}

	a.Type = typ
	a.Severity = sev
	a.Title = stringField(doc.Data, "title")
	a.Description = stringField(doc.Data, "description")
	a.Location = models.Location{Name: stringField(location, "name"), Coordinates: coords}
	a.SafetyTips = stringsField(doc.Data["safetyTips"])
	a.Timestamp = ts
	a.Radius = floatField(doc.Data["radius"])
	a.Active, _ = doc.Data["active"].(bool)
	return a, nil
}

func shelterFromDocument(doc Document) (models.SafetyShelter, error) {
	coords, err := normalize.Coordinates(doc.Data["coordinates"])
	if err != nil {
		return models.SafetyShelter{}, err
	}
	available, _ := doc.Data["available"].(bool)
	return models.SafetyShelter{
		ID:          doc.ID,
		Name:        stringField(doc.Data, "name"),
		Coordinates: coords,
		Address:     stringField(doc.Data, "address"),
		Capacity:    int(floatField(doc.Data["capacity"])),
		Available:   available,
	}, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func stringsField(v any) []string {
	out := []string{}
	switch list := v.(type) {
	case []string:
		out = append(out, list...)
	case []any:
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

func floatField(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

// timeField accepts native timestamps and RFC 3339 strings.
func timeField(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, fmt.Errorf("bad timestamp %q: %w", t, err)
		}
		return parsed.UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("bad timestamp %v", v)
	}
}
