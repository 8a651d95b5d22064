package repository

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"testing"
	"time"

	"google.golang.org/genproto/googleapis/type/latlng"

	"github.com/mr1hm/go-disaster-alerts/internal/models"
)

// memDocs is an in-memory DocumentClient.
type memDocs struct {
	mu      sync.Mutex
	docs    map[string]map[string]map[string]any
	next    int
	listErr error
	getErr  error
}

func newMemDocs() *memDocs {
	return &memDocs{docs: map[string]map[string]map[string]any{
		alertsCollection:   {},
		sheltersCollection: {},
	}}
}

func (m *memDocs) List(ctx context.Context, collection string) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var docs []Document
	for _, id := range slices.Sorted(maps.Keys(m.docs[collection])) {
		docs = append(docs, Document{ID: id, Data: m.docs[collection][id]})
	}
	return docs, nil
}

func (m *memDocs) Get(ctx context.Context, collection, id string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return Document{}, m.getErr
	}
	data, ok := m.docs[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Data: data}, nil
}

func (m *memDocs) Create(ctx context.Context, collection, id string, data map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == "" {
		m.next++
		id = fmt.Sprintf("auto-%d", m.next)
	}
	if _, ok := m.docs[collection][id]; ok {
		return "", ErrAlreadyExists
	}
	m.docs[collection][id] = data
	return id, nil
}

func (m *memDocs) Replace(ctx context.Context, collection, id string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[collection][id]; !ok {
		return ErrNotFound
	}
	m.docs[collection][id] = data
	return nil
}

func (m *memDocs) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[collection][id]; !ok {
		return ErrNotFound
	}
	delete(m.docs[collection], id)
	return nil
}

func TestDocumentStore_RoundTrip(t *testing.T) {
	client := newMemDocs()
	store := NewDocumentStore(client)
	ctx := context.Background()

	a := newAlert("", 37.7749, -122.4194)
	if err := store.AddAlert(ctx, a); err != nil {
		t.Fatalf("AddAlert failed: %v", err)
	}
	if a.ID != "auto-1" {
		t.Fatalf("expected generated id auto-1, got %q", a.ID)
	}

	stored := client.docs[alertsCollection][a.ID]
	location := stored["location"].(map[string]any)
	if _, ok := location["coordinates"].(*latlng.LatLng); !ok {
		t.Errorf("expected coordinates stored as a geo-point, got %T", location["coordinates"])
	}

	got := store.GetAlertByID(ctx, a.ID)
	if got == nil {
		t.Fatal("expected alert")
	}
	if got.Title != a.Title || got.Location.Coordinates != a.Location.Coordinates || !got.Timestamp.Equal(a.Timestamp) {
		t.Errorf("expected %+v, got %+v", a, got)
	}
	if !slices.Equal(got.SafetyTips, a.SafetyTips) {
		t.Errorf("expected tips %v, got %v", a.SafetyTips, got.SafetyTips)
	}

	if err := store.AddAlert(ctx, a); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
	a.Active = false
	if err := store.UpdateAlert(ctx, a); err != nil {
		t.Fatalf("UpdateAlert failed: %v", err)
	}
	if n := len(store.GetActiveAlerts(ctx)); n != 0 {
		t.Errorf("expected no active alerts, got %d", n)
	}
	if err := store.DeleteAlert(ctx, a.ID); err != nil {
		t.Fatalf("DeleteAlert failed: %v", err)
	}
	if store.GetAlertByID(ctx, a.ID) != nil {
		t.Error("expected nil after delete")
	}
}

func TestDocumentStore_ReadsMapCoordinates(t *testing.T) {
	client := newMemDocs()
	client.docs[alertsCollection]["legacy"] = map[string]any{
		"type":     "earthquake",
		"severity": "HIGH",
		"title":    "M6.1 - Offshore",
		"location": map[string]any{
			"name":        "San Francisco, CA",
			"coordinates": map[string]any{"latitude": 37.7749, "longitude": -122.4194},
		},
		"safetyTips": []any{"Drop, cover and hold on"},
		"timestamp":  "2024-03-01T12:00:00Z",
		"radius":     int64(61),
		"active":     true,
	}
	client.docs[alertsCollection]["broken"] = map[string]any{"type": "EARTHQUAKE", "severity": "HIGH"}
	client.docs[sheltersCollection]["s1"] = map[string]any{
		"name":        "Gym",
		"coordinates": map[string]any{"latitude": 37.78, "longitude": -122.42},
		"capacity":    int64(250),
		"available":   true,
	}

	store := NewDocumentStore(client)
	ctx := context.Background()

	alerts := store.GetAlertsNearLocation(ctx, 37.7749, -122.4194, 50)
	if len(alerts) != 1 {
		t.Fatalf("expected the legacy alert only, got %d", len(alerts))
	}
	a := alerts[0]
	if a.Type != models.DisasterTypeEarthquake || a.Radius != 61 {
		t.Errorf("unexpected alert %+v", a)
	}
	if !a.Timestamp.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected timestamp %v", a.Timestamp)
	}

	shelters := store.GetNearbyShelters(ctx, 37.7749, -122.4194, 10)
	if len(shelters) != 1 || shelters[0].Capacity != 250 {
		t.Errorf("expected one shelter with capacity 250, got %+v", shelters)
	}

	if store.GetAlertByID(ctx, "broken") != nil {
		t.Error("expected undecodable alert to be nil")
	}
}

func TestDocumentStore_FallsBackToFixtures(t *testing.T) {
	client := newMemDocs()
	client.listErr = errors.New("unavailable")
	client.getErr = errors.New("unavailable")
	store := NewDocumentStore(client)
	ctx := context.Background()

	if n := len(store.GetActiveAlerts(ctx)); n != 8 {
		t.Errorf("expected 8 fixture alerts, got %d", n)
	}
	if got := shelterIDs(store.GetNearbyShelters(ctx, 37.7749, -122.4194, 50)); !slices.Equal(got, []string{"1"}) {
		t.Errorf("expected fixture shelter [1], got %v", got)
	}
	if a := store.GetAlertByID(ctx, "5"); a == nil || a.Type != models.DisasterTypeTsunami {
		t.Errorf("expected fixture tsunami alert, got %+v", a)
	}
}

func TestDocumentStore_RejectsInvalid(t *testing.T) {
	store := NewDocumentStore(newMemDocs())
	err := store.AddShelter(context.Background(), &models.SafetyShelter{Coordinates: models.Coordinates{Latitude: 0, Longitude: 200}})
	if !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("expected ErrInvalidRecord, got %v", err)
	}
}
