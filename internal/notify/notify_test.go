package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	twilio "github.com/kevinburke/twilio-go"
	"go.uber.org/goleak"

	"github.com/mr1hm/go-disaster-alerts/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testAlert(id string, sev models.AlertSeverity) models.DisasterAlert {
	return models.DisasterAlert{
		ID:          id,
		Type:        models.DisasterTypeEarthquake,
		Severity:    sev,
		Title:       "Earthquake Alert",
		Description: "A 6.2 magnitude earthquake has been detected.",
		Location: models.Location{
			Name:        "San Francisco, CA",
			Coordinates: models.Coordinates{Latitude: 37.7749, Longitude: -122.4194},
		},
		Active: true,
	}
}

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		severity models.AlertSeverity
		want     string
	}{
		{models.AlertSeverityCritical, "CRITICAL: Earthquake Alert: "},
		{models.AlertSeverityHigh, "WARNING: Earthquake Alert: "},
		{models.AlertSeverityMedium, "ALERT: Earthquake Alert: "},
		{models.AlertSeverityLow, "NOTICE: Earthquake Alert: "},
		{models.AlertSeverity("OTHER"), "Earthquake Alert: "},
	}
	for _, tt := range tests {
		got := FormatMessage(testAlert("1", tt.severity))
		if !strings.HasPrefix(got, tt.want) {
			t.Errorf("severity %s: expected prefix %q, got %q", tt.severity, tt.want, got)
		}
		if !strings.HasSuffix(got, "has been detected.") {
			t.Errorf("expected description in message, got %q", got)
		}
	}
}

type fakeToken struct {
	done chan struct{}
	err  error
}

func (t *fakeToken) Wait() bool                       { <-t.done; return true }
func (t *fakeToken) WaitTimeout(d time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}            { return t.done }
func (t *fakeToken) Error() error                     { return t.err }

type fakePublisher struct {
	mu       sync.Mutex
	topics   []string
	payloads [][]byte
	err      error
	hang     bool
}

func (p *fakePublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload.([]byte))

	tok := &fakeToken{done: make(chan struct{}), err: p.err}
	if !p.hang {
		close(tok.done)
	}
	return tok
}

func TestMQTTNotifier_PublishesToCellTopic(t *testing.T) {
	pub := &fakePublisher{}
	n := NewMQTTNotifier(pub, "disaster-alerts", time.Second)

	a := testAlert("1", models.AlertSeverityHigh)
	err := n.Notify(context.Background(), Notification{Alert: a, Cell: "9q8yyk", Message: FormatMessage(a)})
	if err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	if len(pub.topics) != 1 || pub.topics[0] != "disaster-alerts/warnings/9q8yyk" {
		t.Fatalf("unexpected topics %v", pub.topics)
	}
	var got Notification
	if err := json.Unmarshal(pub.payloads[0], &got); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if got.Alert.ID != "1" || !strings.HasPrefix(got.Message, "WARNING:") {
		t.Errorf("unexpected payload %+v", got)
	}
}

func TestMQTTNotifier_Errors(t *testing.T) {
	pub := &fakePublisher{err: errors.New("not connected")}
	n := NewMQTTNotifier(pub, "p", time.Second)
	if err := n.Notify(context.Background(), Notification{Cell: "x"}); err == nil || err.Error() != "not connected" {
		t.Errorf("expected publish error, got %v", err)
	}

	hung := NewMQTTNotifier(&fakePublisher{hang: true}, "p", 10*time.Millisecond)
	if err := hung.Notify(context.Background(), Notification{Cell: "x"}); !errors.Is(err, ErrPublishTimeout) {
		t.Errorf("expected ErrPublishTimeout, got %v", err)
	}
}

type fakeSender struct {
	mu   sync.Mutex
	sent map[string]string
	fail map[string]bool
}

func (s *fakeSender) SendMessage(from, to, body string, mediaURLs []*url.URL) (*twilio.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[to] {
		return nil, errors.New("invalid number")
	}
	if s.sent == nil {
		s.sent = map[string]string{}
	}
	s.sent[to] = body
	return &twilio.Message{Body: body}, nil
}

func TestSMSNotifier_SendsToEveryNumber(t *testing.T) {
	sender := &fakeSender{fail: map[string]bool{"+15550000": true}}
	n := NewSMSNotifier(sender, "+15551234", []string{"+15559876", "+15550000", "+15554321"})

	a := testAlert("1", models.AlertSeverityCritical)
	err := n.Notify(context.Background(), Notification{Alert: a, Message: FormatMessage(a)})
	if err == nil || !strings.Contains(err.Error(), "+15550000") {
		t.Errorf("expected error naming the failed number, got %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 messages sent, got %d", len(sender.sent))
	}
	if !strings.HasPrefix(sender.sent["+15559876"], "CRITICAL:") {
		t.Errorf("unexpected body %q", sender.sent["+15559876"])
	}
}
