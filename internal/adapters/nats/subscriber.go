package natsadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/homeward/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeDeviceLocations consumes raw device fixes. Readings the handler
// rejects as invalid are terminated; other failures are redelivered.
func (s *Subscriber) SubscribeDeviceLocations(ctx context.Context, handler func(ctx context.Context, reading *domain.LocationReading) error) error {
	sub, err := s.js.Subscribe(SubjectDevice+">", func(msg *nats.Msg) {
		reading, err := DecodeDeviceReading(msg)
		if err != nil {
			slog.Warn("dropping device message", "subject", msg.Subject, "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, reading); err != nil {
			if permanent(err) {
				slog.Warn("device reading rejected", "profile", reading.Profile, "error", err)
				_ = msg.Term()
				return
			}
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("homeward-device-ingress"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// DecodeDeviceReading decodes a device message. The profile defaults to the
// last subject token when the payload omits it.
func DecodeDeviceReading(msg *nats.Msg) (*domain.LocationReading, error) {
	var r domain.LocationReading
	if err := Decode(msg.Header.Get(HeaderContentType), msg.Data, &r); err != nil {
		return nil, err
	}
	if r.Profile == "" {
		r.Profile = strings.TrimPrefix(msg.Subject, SubjectDevice)
	}
	if r.Profile == "" || strings.ContainsAny(r.Profile, ".*>") {
		return nil, fmt.Errorf("no profile in subject %q", msg.Subject)
	}
	return &r, nil
}

func permanent(err error) bool {
	return errors.Is(err, domain.ErrInvalidCoordinate) || errors.Is(err, domain.ErrProfileNotFound)
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
