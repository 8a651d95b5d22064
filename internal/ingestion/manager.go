package ingestion

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mr1hm/go-disaster-alerts/internal/observability"
	"github.com/mr1hm/go-disaster-alerts/internal/proximity"
	"github.com/mr1hm/go-disaster-alerts/internal/source"
)

type ManagerConfig struct {
	Name     string // source label for logs and metrics
	Interval time.Duration
	Clock    clockwork.Clock
	Metrics  *observability.Metrics
}

// Manager keeps the proximity monitor's alert set current by re-reading
// the active source on a fixed interval. A failed read leaves the monitor
// with whatever the source fell back to, usually nothing.
type Manager struct {
	src      source.Source
	monitor  *proximity.Monitor
	name     string
	interval time.Duration
	clock    clockwork.Clock
	metrics  *observability.Metrics
	wg       sync.WaitGroup
}

func NewManager(src source.Source, monitor *proximity.Monitor, cfg ManagerConfig) *Manager {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	return &Manager{
		src:      src,
		monitor:  monitor,
		name:     cfg.Name,
		interval: cfg.Interval,
		clock:    cfg.Clock,
		metrics:  cfg.Metrics,
	}
}

func (m *Manager) Start(ctx context.Context) {
	m.wg.Add(1)
	go m.runPoller(ctx)
}

func (m *Manager) runPoller(ctx context.Context) {
	defer m.wg.Done()
	slog.Info("starting poller", "source", m.name, "interval", m.interval)

	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	// Initial poll
	m.Poll(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("poller shutting down", "source", m.name)
			return
		case <-ticker.Chan():
			m.Poll(ctx)
		}
	}
}

// Poll reads the active alerts once and hands them to the monitor.
func (m *Manager) Poll(ctx context.Context) int {
	slog.Debug("polling", "source", m.name)

	alerts := m.src.GetActiveAlerts(ctx)
	m.monitor.SetAlerts(alerts)

	if m.metrics != nil {
		m.metrics.FeedAlerts.WithLabelValues(m.name).Set(float64(len(alerts)))
		m.metrics.MonitoredAlerts.Set(float64(len(alerts)))
	}

	slog.Debug("poll complete", "source", m.name, "count", len(alerts))
	return len(alerts)
}

func (m *Manager) Stop() {
	m.wg.Wait()
	slog.Info("ingestion manager stopped")
}
