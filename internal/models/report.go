package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const minReportDescriptionLen = 20

// Report is a user-submitted disaster report awaiting review.
type Report struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Type        DisasterType `json:"type"`
	Description string       `json:"description"`
	Location    Location     `json:"location"`
	ContactInfo string       `json:"contactInfo"`
	SubmittedAt time.Time    `json:"submittedAt"`
}

// FieldError names the report field that failed validation.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate returns every field problem joined into one error, or nil.
func (r *Report) Validate() error {
	var errs []error

	if strings.TrimSpace(r.Title) == "" {
		errs = append(errs, &FieldError{Field: "title", Message: "Title is required"})
	}
	if _, ok := ParseDisasterType(string(r.Type)); !ok {
		errs = append(errs, &FieldError{Field: "type", Message: "Unsupported disaster type"})
	}

	desc := strings.TrimSpace(r.Description)
	switch {
	case desc == "":
		errs = append(errs, &FieldError{Field: "description", Message: "Description is required"})
	case len(r.Description) < minReportDescriptionLen:
		errs = append(errs, &FieldError{Field: "description", Message: "Description should be at least 20 characters"})
	}

	switch c := r.Location.Coordinates; {
	case c.IsZero():
		errs = append(errs, &FieldError{Field: "location", Message: "Location is required"})
	case !c.Valid():
		errs = append(errs, &FieldError{Field: "location", Message: "Location is out of range"})
	}

	if strings.TrimSpace(r.ContactInfo) == "" {
		errs = append(errs, &FieldError{Field: "contactInfo", Message: "Contact information is required"})
	}

	return errors.Join(errs...)
}
