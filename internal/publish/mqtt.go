// Package publish pushes resolved prayer times to displays over MQTT.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/solat"
)

// DefaultTopic is the topic template; {zone} is replaced by the zone code.
const DefaultTopic = "solat/{zone}/today"

// ErrPublishTimeout is returned when the broker does not acknowledge in time.
var ErrPublishTimeout = errors.New("mqtt publish timed out")

// Config configures the MQTT publisher.
type Config struct {
	Broker   string // e.g. tcp://localhost:1883
	ClientID string
	Username string
	Password string
	Topic    string        // default DefaultTopic
	QoS      byte          // default 1
	Retained bool          // displays that connect later get the last message
	Timeout  time.Duration // connect and publish acknowledgement, default 10s
}

// client is the part of mqtt.Client the publisher uses.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Publisher implements solat.Publisher.
type Publisher struct {
	client   client
	topic    string
	qos      byte
	retained bool
	timeout  time.Duration
}

var _ solat.Publisher = (*Publisher)(nil)

// Connect dials the broker and returns a Publisher.
func Connect(cfg Config) (*Publisher, error) {
	cfg = withDefaults(cfg)
	if cfg.Broker == "" {
		return nil, errors.New("mqtt broker URL is required")
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(cfg.Timeout)
	opts.OnConnect = func(mqtt.Client) {
		slog.Info("connected to MQTT broker", "broker", cfg.Broker, "client_id", cfg.ClientID)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		slog.Warn("MQTT connection lost", "broker", cfg.Broker, "error", err)
	}

	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return newPublisher(c, cfg), nil
}

func withDefaults(cfg Config) Config {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.QoS == 0 {
		cfg.QoS = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "waktu-solat"
	}
	return cfg
}

func newPublisher(c client, cfg Config) *Publisher {
	return &Publisher{
		client:   c,
		topic:    cfg.Topic,
		qos:      cfg.QoS,
		retained: cfg.Retained,
		timeout:  cfg.Timeout,
	}
}

// Topic expands a topic template for zone.
func Topic(template, zone string) string {
	return strings.ReplaceAll(template, "{zone}", zone)
}

// Publish sends dt as JSON to the zone's topic and waits for the broker.
func (p *Publisher) Publish(ctx context.Context, dt solat.DayTimes) error {
	payload, err := json.Marshal(dt)
	if err != nil {
		return fmt.Errorf("encode times: %w", err)
	}

	topic := Topic(p.topic, dt.Zone)
	token := p.client.Publish(topic, p.qos, p.retained, payload)

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("%w: %s", ErrPublishTimeout, topic)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	slog.Debug("mqtt message sent", "topic", topic, "bytes", len(payload), "retained", p.retained)
	return nil
}

// Close disconnects, allowing 250ms for in-flight messages.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
