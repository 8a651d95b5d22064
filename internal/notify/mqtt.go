package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const defaultPublishTimeout = 5 * time.Second

var ErrPublishTimeout = errors.New("mqtt publish timed out")

// publisher is the part of mqtt.Client the notifier uses.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTNotifier publishes each notification as JSON on
// <prefix>/warnings/<cell>, so devices can subscribe to their own area.
type MQTTNotifier struct {
	client  publisher
	prefix  string
	timeout time.Duration
}

// ConnectMQTT dials broker and blocks until the connection is up.
func ConnectMQTT(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("error connecting to mqtt broker: %w", token.Error())
	}
	return client, nil
}

func NewMQTTNotifier(client publisher, prefix string, timeout time.Duration) *MQTTNotifier {
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	return &MQTTNotifier{client: client, prefix: prefix, timeout: timeout}
}

func (m *MQTTNotifier) Name() string { return "mqtt" }

func (m *MQTTNotifier) Topic(cell string) string {
	return fmt.Sprintf("%s/warnings/%s", m.prefix, cell)
}

func (m *MQTTNotifier) Notify(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("error encoding notification: %w", err)
	}

	token := m.client.Publish(m.Topic(n.Cell), 1, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(m.timeout):
		return ErrPublishTimeout
	}
}
