// Package reports accepts user-submitted disaster reports and hands them
// to a publisher for review.
package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-disaster-alerts/internal/models"
	"github.com/mr1hm/go-disaster-alerts/internal/observability"
)

// ErrInvalidReport wraps the field errors of a rejected report.
var ErrInvalidReport = errors.New("invalid report")

type Publisher interface {
	Publish(ctx context.Context, r models.Report) error
	Close() error
}

type Service struct {
	publisher Publisher
	clock     clockwork.Clock
	metrics   *observability.Metrics
}

// NewService returns a Service. clock and metrics may be nil.
func NewService(p Publisher, clock clockwork.Clock, metrics *observability.Metrics) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{publisher: p, clock: clock, metrics: metrics}
}

// Submit validates r, stamps it with an id and submission time and
// publishes it. Validation failures wrap ErrInvalidReport together with
// each *models.FieldError.
func (s *Service) Submit(ctx context.Context, r models.Report) (models.Report, error) {
	if err := r.Validate(); err != nil {
		s.record("rejected")
		return r, fmt.Errorf("%w: %w", ErrInvalidReport, err)
	}

	r.ID = uuid.NewString()
	r.SubmittedAt = s.clock.Now().UTC()

	if err := s.publisher.Publish(ctx, r); err != nil {
		s.record("publish_error")
		return r, fmt.Errorf("error publishing report: %w", err)
	}

	s.record("accepted")
	slog.Info("report accepted", "id", r.ID, "type", r.Type, "location", r.Location.Name)
	return r, nil
}

func (s *Service) Close() error {
	return s.publisher.Close()
}

func (s *Service) record(outcome string) {
	if s.metrics != nil {
		s.metrics.Reports.WithLabelValues(outcome).Inc()
	}
}

// LogPublisher only logs reports. It is used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, r models.Report) error {
	slog.InfoContext(ctx, "report received", "id", r.ID, "title", r.Title, "type", r.Type,
		"lat", r.Location.Coordinates.Latitude, "lon", r.Location.Coordinates.Longitude)
	return nil
}

func (LogPublisher) Close() error { return nil }
