package natsadapter

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/homeward/internal/core/domain"
)

// Subject prefixes. The profile name is appended to each.
const (
	SubjectFrame    = "homeward.frame."
	SubjectFault    = "homeward.fault."
	SubjectLocation = "homeward.location."
	SubjectDevice   = "homeward.device."
)

// Streams returns the JetStream configuration the publisher ensures on start.
func Streams() []nats.StreamConfig {
	return []nats.StreamConfig{
		{
			Name:      "HOMEWARD_FRAMES",
			Subjects:  []string{SubjectFrame + ">"},
			Retention: nats.LimitsPolicy,
			MaxAge:    1 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "HOMEWARD_FAULTS",
			Subjects:  []string{SubjectFault + ">"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "HOMEWARD_LOCATIONS",
			Subjects:  []string{SubjectLocation + ">"},
			Retention: nats.LimitsPolicy,
			MaxAge:    1 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "HOMEWARD_DEVICES",
			Subjects:  []string{SubjectDevice + ">"},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    10 * time.Minute,
			Storage:   nats.FileStorage,
		},
	}
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn  *nats.Conn
	js    nats.JetStreamContext
	codec Codec
}

// NewPublisher connects to NATS, enables JetStream and ensures the streams exist.
func NewPublisher(url string, codec Codec) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	for _, cfg := range Streams() {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist, try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				conn.Close()
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	if codec == nil {
		codec = JSONCodec{}
	}
	return &Publisher{conn: conn, js: js, codec: codec}, nil
}

func (p *Publisher) publish(ctx context.Context, subject string, v any) error {
	data, err := p.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", subject, err)
	}
	msg := nats.NewMsg(subject)
	msg.Header.Set(HeaderContentType, p.codec.ContentType())
	msg.Data = data
	if _, err := p.js.PublishMsg(msg, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func (p *Publisher) PublishFrame(ctx context.Context, frame *domain.Frame) error {
	return p.publish(ctx, SubjectFrame+frame.Profile, frame)
}

func (p *Publisher) PublishFault(ctx context.Context, fault *domain.LocationFault) error {
	return p.publish(ctx, SubjectFault+fault.Profile, fault)
}

func (p *Publisher) PublishLocation(ctx context.Context, reading *domain.LocationReading) error {
	return p.publish(ctx, SubjectLocation+reading.Profile, reading)
}

// Conn exposes the underlying connection for readiness checks.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("homeward"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
