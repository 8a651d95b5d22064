// Package feed fetches upstream JSON feeds behind a circuit breaker.
// Failures are never retried: a failed fetch is reported once and the
// breaker makes repeated failures fail fast.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/mr1hm/go-disaster-alerts/internal/observability"
)

var ErrCircuitOpen = errors.New("feed circuit breaker is open")

const defaultMaxBodyBytes = 32 << 20

// StatusError is returned for any non-200 upstream response.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d - status: %s", e.StatusCode, e.Status)
}

type BreakerConfig struct {
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:         1,
		OpenTimeout:         60 * time.Second,
		ConsecutiveFailures: 3,
	}
}

type Config struct {
	Name         string
	Timeout      time.Duration
	MaxBodyBytes int64
	Breaker      BreakerConfig
}

type Client struct {
	name         string
	httpClient   *http.Client
	breaker      *gobreaker.CircuitBreaker[[]byte]
	maxBodyBytes int64
	metrics      *observability.Metrics
}

// NewClient builds a client for one upstream. metrics may be nil.
func NewClient(cfg Config, metrics *observability.Metrics) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.Breaker.ConsecutiveFailures == 0 {
		cfg.Breaker = DefaultBreakerConfig()
	}

	c := &Client{
		name:         cfg.Name,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		maxBodyBytes: cfg.MaxBodyBytes,
		metrics:      metrics,
	}

	trip := cfg.Breaker.ConsecutiveFailures
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.Breaker.MaxRequests,
		Timeout:     cfg.Breaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= trip
		},
		// a caller hanging up says nothing about upstream health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("feed breaker state changed", "source", name, "from", from.String(), "to", to.String())
			if metrics != nil {
				metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
	})
	return c
}

func (c *Client) Name() string {
	return c.name
}

func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// GetJSON fetches url and decodes the body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.fetch(ctx, url)
	})
	c.observe(start, err)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%s: %w", c.name, ErrCircuitOpen)
		}
		return fmt.Errorf("%s: %w", c.name, err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%s: error decoding body: %w", c.name, err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("error reading body: %w", err)
	}
	return body, nil
}

func (c *Client) observe(start time.Time, err error) {
	if c.metrics == nil {
		return
	}
	outcome := "success"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "rejected"
	case err != nil:
		outcome = "error"
	}
	c.metrics.FeedRequests.WithLabelValues(c.name, outcome).Inc()
	if outcome != "rejected" {
		c.metrics.FeedDuration.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
	}
}
