package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/mr1hm/go-disaster-alerts/internal/models"
	"github.com/mr1hm/go-disaster-alerts/internal/proximity"
)

// MemoryStore serves the fixed fixture dataset from memory. Reads always
// succeed. Writes only affect this instance.
type MemoryStore struct {
	mu       sync.RWMutex
	alerts   []models.DisasterAlert
	shelters []models.SafetyShelter
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		alerts:   FixtureAlerts(),
		shelters: FixtureShelters(),
	}
}

func (m *MemoryStore) GetActiveAlerts(ctx context.Context) []models.DisasterAlert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.DisasterAlert, 0, len(m.alerts))
	for _, a := range m.alerts {
		if a.Active {
			a.SafetyTips = slices.Clone(a.SafetyTips)
			out = append(out, a)
		}
	}
	return out
}

func (m *MemoryStore) GetAlertsNearLocation(ctx context.Context, lat, lon, radiusKm float64) []models.DisasterAlert {
	return proximity.NearbyActive(m.GetActiveAlerts(ctx), lat, lon, radiusKm)
}

func (m *MemoryStore) GetAlertByID(ctx context.Context, id string) *models.DisasterAlert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.alertIndex(id); i >= 0 {
		a := m.alerts[i]
		a.SafetyTips = slices.Clone(a.SafetyTips)
		return &a
	}
	return nil
}

func (m *MemoryStore) GetNearbyShelters(ctx context.Context, lat, lon, radiusKm float64) []models.SafetyShelter {
	m.mu.RLock()
	shelters := slices.Clone(m.shelters)
	m.mu.RUnlock()
	return proximity.NearbyShelters(shelters, lat, lon, radiusKm)
}

func (m *MemoryStore) AddAlert(ctx context.Context, a *models.DisasterAlert) error {
	if err := validateAlert(a); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	} else if m.alertIndex(a.ID) >= 0 {
		return ErrAlreadyExists
	}
	cp := *a
	cp.SafetyTips = slices.Clone(a.SafetyTips)
	m.alerts = append(m.alerts, cp)
	return nil
}

func (m *MemoryStore) UpdateAlert(ctx context.Context, a *models.DisasterAlert) error {
	if err := validateAlert(a); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.alertIndex(a.ID)
	if i < 0 {
		return ErrNotFound
	}
	cp := *a
	cp.SafetyTips = slices.Clone(a.SafetyTips)
	m.alerts[i] = cp
	return nil
}

func (m *MemoryStore) DeleteAlert(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.alertIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	m.alerts = slices.Delete(m.alerts, i, i+1)
	return nil
}

func (m *MemoryStore) AddShelter(ctx context.Context, s *models.SafetyShelter) error {
	if err := validateShelter(s); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.ID == "" {
		s.ID = uuid.NewString()
	} else if m.shelterIndex(s.ID) >= 0 {
		return ErrAlreadyExists
	}
	m.shelters = append(m.shelters, *s)
	return nil
}

func (m *MemoryStore) UpdateShelter(ctx context.Context, s *models.SafetyShelter) error {
	if err := validateShelter(s); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.shelterIndex(s.ID)
	if i < 0 {
		return ErrNotFound
	}
	m.shelters[i] = *s
	return nil
}

func (m *MemoryStore) DeleteShelter(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.shelterIndex(id)
	if i < 0 {
		return ErrNotFound
	}
	m.shelters = slices.Delete(m.shelters, i, i+1)
	return nil
}

func (m *MemoryStore) alertIndex(id string) int {
	return slices.IndexFunc(m.alerts, func(a models.DisasterAlert) bool { return a.ID == id })
}

func (m *MemoryStore) shelterIndex(id string) int {
	return slices.IndexFunc(m.shelters, func(s models.SafetyShelter) bool { return s.ID == id })
}
