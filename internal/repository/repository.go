// Package repository holds the store-backed sources: the fixed mock
// dataset, a local SQLite store and a Firestore document store.
package repository

import (
	"errors"
	"fmt"

	"github.com/mr1hm/go-disaster-alerts/internal/models"
	"github.com/mr1hm/go-disaster-alerts/internal/source"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
	ErrInvalidRecord = errors.New("invalid record")
)

var (
	_ source.Store = (*MemoryStore)(nil)
	_ source.Store = (*SQLiteStore)(nil)
	_ source.Store = (*DocumentStore)(nil)
)

func validateAlert(a *models.DisasterAlert) error {
	if a == nil {
		return ErrInvalidRecord
	}
	if _, ok := models.ParseDisasterType(string(a.Type)); !ok {
		return fmt.Errorf("%w: unsupported disaster type %q", ErrInvalidRecord, a.Type)
	}
	if _, ok := models.ParseAlertSeverity(string(a.Severity)); !ok {
		return fmt.Errorf("%w: unsupported severity %q", ErrInvalidRecord, a.Severity)
	}
	if !a.Location.Coordinates.Valid() {
		return fmt.Errorf("%w: coordinates out of range", ErrInvalidRecord)
	}
	return nil
}

func validateShelter(s *models.SafetyShelter) error {
	if s == nil {
		return ErrInvalidRecord
	}
	if !s.Coordinates.Valid() {
		return fmt.Errorf("%w: coordinates out of range", ErrInvalidRecord)
	}
	if s.Capacity < 0 {
		return fmt.Errorf("%w: negative capacity", ErrInvalidRecord)
	}
	return nil
}

func activeOnly(alerts []models.DisasterAlert) []models.DisasterAlert {
	out := make([]models.DisasterAlert, 0, len(alerts))
	for _, a := range alerts {
		if a.Active {
			out = append(out, a)
		}
	}
	return out
}

func fixtureAlert(id string) *models.DisasterAlert {
	for _, a := range FixtureAlerts() {
		if a.ID == id {
			return &a
		}
	}
	return nil
}
