package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/launchset/gym-booking/domain"
	"github.com/launchset/gym-booking/internal/metrics"
	"github.com/segmentio/kafka-go"
)

const HeaderEventType = "event_type"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// SessionPublisher emits checkout events to Kafka. Writes are async so a slow
// broker never delays the redirect back to the customer.
type SessionPublisher struct {
	writer messageWriter
	log    *slog.Logger
}

func NewSessionPublisher(brokers []string, topic string, log *slog.Logger) *SessionPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		Async:                  true,
		WriteTimeout:           10 * time.Second,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Error("failed to publish checkout events",
					slog.Int("count", len(messages)),
					slog.Any("error", err))
				metrics.EventsPublished.WithLabelValues("failed").Add(float64(len(messages)))
				return
			}
			metrics.EventsPublished.WithLabelValues("ok").Add(float64(len(messages)))
		},
	}

	return &SessionPublisher{writer: writer, log: log}
}

func (p *SessionPublisher) PublishSessionCreated(ctx context.Context, event domain.CheckoutSessionCreated) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event failed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.SessionID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(domain.EventTypeCheckoutSessionCreated)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write checkout event: %w", err)
	}
	return nil
}

func (p *SessionPublisher) Close() error {
	return p.writer.Close()
}
