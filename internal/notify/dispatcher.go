package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mmcloughlin/geohash"

	"github.com/mr1hm/go-disaster-alerts/internal/observability"
	"github.com/mr1hm/go-disaster-alerts/internal/proximity"
	"github.com/mr1hm/go-disaster-alerts/internal/worker"
)

const (
	DefaultCooldown = 10 * time.Second
	cellPrecision   = 6 // geohash chars, roughly 1.2km x 0.6km
	deliveryTimeout = 15 * time.Second
	enqueueTimeout  = 500 * time.Millisecond
)

type DispatcherConfig struct {
	Cooldown   time.Duration
	Workers    int
	BufferSize int
	Clock      clockwork.Clock
	Metrics    *observability.Metrics
}

type delivery struct {
	notifier     Notifier
	notification Notification
}

// Dispatcher subscribes to proximity warnings and fans each nearby alert
// out to every notifier. The same alert is not repeated for the same
// geohash cell until the cooldown has passed.
type Dispatcher struct {
	broadcaster *proximity.Broadcaster
	notifiers   []Notifier
	pool        *worker.Pool[delivery]
	cooldown    time.Duration
	clock       clockwork.Clock
	metrics     *observability.Metrics

	mu       sync.Mutex
	lastSent map[string]time.Time
}

func NewDispatcher(cfg DispatcherConfig, b *proximity.Broadcaster, notifiers ...Notifier) *Dispatcher {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 100
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	d := &Dispatcher{
		broadcaster: b,
		notifiers:   notifiers,
		cooldown:    cfg.Cooldown,
		clock:       cfg.Clock,
		metrics:     cfg.Metrics,
		lastSent:    make(map[string]time.Time),
	}
	d.pool = worker.NewPool("notify", cfg.Workers, cfg.BufferSize, d.deliver)
	return d
}

// Run delivers warnings until ctx is cancelled or the broadcaster closes.
func (d *Dispatcher) Run(ctx context.Context) {
	id, warnings := d.broadcaster.Subscribe()
	defer d.broadcaster.Unsubscribe(id)

	d.pool.Start(ctx)
	defer d.pool.Stop()

	slog.Info("notification dispatcher started", "notifiers", len(d.notifiers), "cooldown", d.cooldown)
	for {
		select {
		case <-ctx.Done():
			return
		case w, ok := <-warnings:
			if !ok {
				return
			}
			d.handle(ctx, w)
		}
	}
}

// handle queues deliveries for w and returns how many were queued. A
// delivery that cannot be queued within enqueueTimeout is dropped.
func (d *Dispatcher) handle(ctx context.Context, w *proximity.Warning) int {
	cell := geohash.EncodeWithPrecision(w.Location.Coordinates.Latitude, w.Location.Coordinates.Longitude, cellPrecision)

	queued := 0
	for _, a := range w.Alerts {
		if !d.claim(cell + "|" + a.ID) {
			if d.metrics != nil {
				d.metrics.NotificationsSuppressed.Inc()
			}
			continue
		}

		n := Notification{Alert: a, Location: w.Location, Cell: cell, Message: FormatMessage(a)}
		for _, notifier := range d.notifiers {
			if err := d.enqueue(ctx, delivery{notifier: notifier, notification: n}); err != nil {
				slog.Warn("dropping notification", "notifier", notifier.Name(), "alert_id", a.ID, "error", err)
				d.record(notifier.Name(), "dropped")
				continue
			}
			queued++
		}
	}
	return queued
}

func (d *Dispatcher) enqueue(ctx context.Context, job delivery) error {
	ctx, cancel := context.WithTimeout(ctx, enqueueTimeout)
	defer cancel()
	return d.pool.Submit(ctx, job)
}

// claim reports whether key may be sent now and, if so, starts its
// cooldown. Expired keys are pruned on the way.
func (d *Dispatcher) claim(key string) bool {
	now := d.clock.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if last, ok := d.lastSent[key]; ok && now.Sub(last) < d.cooldown {
		return false
	}
	for k, last := range d.lastSent {
		if now.Sub(last) >= d.cooldown {
			delete(d.lastSent, k)
		}
	}
	d.lastSent[key] = now
	return true
}

func (d *Dispatcher) deliver(ctx context.Context, job delivery) error {
	ctx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	if err := job.notifier.Notify(ctx, job.notification); err != nil {
		d.record(job.notifier.Name(), "error")
		return err
	}
	d.record(job.notifier.Name(), "success")
	return nil
}

func (d *Dispatcher) record(channel, outcome string) {
	if d.metrics != nil {
		d.metrics.NotificationsSent.WithLabelValues(channel, outcome).Inc()
	}
}
