package nats

import (
	"context"
	"fmt"

	"legal-analyzer-be/internal/pkg/logger"
	"legal-analyzer-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventHandler is a function that processes an event.
type EventHandler func(ctx context.Context, event events.Event) error

// Subscriber handles listening for events from NATS.
type Subscriber struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	cc     []jetstream.ConsumeContext
	logger logger.ILogger
}

func NewSubscriber(url string, log logger.ILogger) (*Subscriber, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}
	return &Subscriber{nc: nc, js: js, logger: log}, nil
}

// Subscribe attaches handler to subject through a durable consumer, so
// events published while the subscriber was away are still delivered.
func (s *Subscriber) Subscribe(ctx context.Context, subject, durableName string, handler EventHandler) error {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		event, err := events.Decode(msg.Data())
		if err != nil {
			s.logger.Warn("nats", "Dropping undecodable event", map[string]interface{}{"subject": msg.Subject(), "error": err.Error()})
			_ = msg.Term()
			return
		}

		if err := handler(ctx, event); err != nil {
			s.logger.Error("nats", "Handler failed", map[string]interface{}{"subject": msg.Subject(), "error": err})
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	s.cc = append(s.cc, cc)

	s.logger.Info("nats", "Subscribed", map[string]interface{}{"subject": subject, "durable": durableName})
	return nil
}

// Close stops all consumers and closes the connection.
func (s *Subscriber) Close() {
	for _, cc := range s.cc {
		cc.Stop()
	}
	if s.nc != nil {
		s.nc.Close()
	}
}
