// Package publish sends run summaries to an MQTT broker so dashboards and
// other nodes can follow teleportation runs as they complete.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/ms584/Q-Net/internal/present"
	"github.com/ms584/Q-Net/internal/teleport"
)

const (
	DefaultBrokerURL = "tcp://localhost:1883"
	DefaultTopic     = "qnet/runs"
	DefaultClientID  = "qnet"
	DefaultTimeout   = 10 * time.Second
)

// Config describes the broker connection.
type Config struct {
	BrokerURL string
	ClientID  string
	Topic     string
	QoS       *byte // nil means 1
	Timeout   time.Duration
}

func (c Config) withDefaults() Config {
	if c.BrokerURL == "" {
		c.BrokerURL = DefaultBrokerURL
	}
	if c.ClientID == "" {
		c.ClientID = DefaultClientID
	}
	if c.Topic == "" {
		c.Topic = DefaultTopic
	}
	if c.QoS == nil {
		qos := byte(1)
		c.QoS = &qos
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// client is the subset of paho.Client the publisher uses.
type client interface {
	Connect() paho.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
	IsConnected() bool
}

// Publisher publishes run summaries to <topic>/<run_id>.
// It implements teleport.Sink.
type Publisher struct {
	client  client
	topic   string
	qos     byte
	timeout time.Duration
	mu      sync.Mutex
}

// New creates a Publisher for cfg but does not connect.
func New(cfg Config) *Publisher {
	cfg = cfg.withDefaults()
	opts := paho.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(cfg.Timeout).
		SetKeepAlive(30 * time.Second)
	return newPublisher(paho.NewClient(opts), cfg)
}

func newPublisher(c client, cfg Config) *Publisher {
	cfg = cfg.withDefaults()
	return &Publisher{
		client:  c,
		topic:   cfg.Topic,
		qos:     *cfg.QoS,
		timeout: cfg.Timeout,
	}
}

// Connect connects to the broker, waiting at most the configured timeout.
func (p *Publisher) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	token := p.client.Connect()
	if !token.WaitTimeout(p.timeout) {
		return &ConnectTimeoutError{}
	}
	return token.Error()
}

// Close disconnects from the broker, allowing in-flight messages 250ms.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}

// Topic returns the topic a run is published to.
func (p *Publisher) Topic(runID string) string {
	return p.topic + "/" + runID
}

// Record publishes the summary of r and waits for the broker to accept it.
func (p *Publisher) Record(ctx context.Context, r *teleport.Result) error {
	var buf bytes.Buffer
	if err := present.WriteJSON(&buf, present.Summarize(r)); err != nil {
		return fmt.Errorf("encode run %s: %w", r.RunID, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	topic := p.Topic(r.RunID)
	token := p.client.Publish(topic, p.qos, false, bytes.TrimSpace(buf.Bytes()))

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("publish %s: %w", topic, err)
		}
		return nil
	case <-timer.C:
		return &PublishTimeoutError{Topic: topic}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ConnectTimeoutError indicates the broker connection timed out.
type ConnectTimeoutError struct{}

func (e *ConnectTimeoutError) Error() string {
	return "mqtt connect timeout"
}

// PublishTimeoutError indicates the broker did not acknowledge a message.
type PublishTimeoutError struct {
	Topic string
}

func (e *PublishTimeoutError) Error() string {
	return "mqtt publish timeout: " + e.Topic
}
