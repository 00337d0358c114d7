package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/launchset/gym-booking/domain"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

type fakeWriter struct {
	messages []kafkaGo.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkaGo.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func testEvent() domain.CheckoutSessionCreated {
	return domain.CheckoutSessionCreated{
		EventID:      "evt-1",
		SessionID:    "cs_test_123",
		OfferingID:   "boxfit",
		OfferingName: "BoxFit Fundamentals",
		DateISO:      "2025-03-14",
		Time:         "18:30",
		Quantity:     2,
		UnitAmount:   1000,
		Currency:     "gbp",
		Subtotal:     2000,
		Total:        2000,
		CreatedAt:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPublishSessionCreated_WritesKeyedMessage(t *testing.T) {
	w := &fakeWriter{}
	p := &SessionPublisher{writer: w, log: slog.Default()}

	err := p.PublishSessionCreated(context.Background(), testEvent())
	require.NoError(t, err)
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "cs_test_123", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, HeaderEventType, msg.Headers[0].Key)
	assert.Equal(t, domain.EventTypeCheckoutSessionCreated, string(msg.Headers[0].Value))

	var decoded domain.CheckoutSessionCreated
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, testEvent(), decoded)
}

func TestPublishSessionCreated_WriterError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker unavailable")}
	p := &SessionPublisher{writer: w, log: slog.Default()}

	err := p.PublishSessionCreated(context.Background(), testEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unavailable")
}

func TestClose_ClosesWriter(t *testing.T) {
	w := &fakeWriter{}
	p := &SessionPublisher{writer: w, log: slog.Default()}

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func setupKafka(t *testing.T) string {
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	})

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers, "broker address should not be empty")

	return brokers[0]
}

func createTopic(t *testing.T, brokerAddr, topic string) {
	conn, err := kafkaGo.Dial("tcp", brokerAddr)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkaGo.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err)
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafkaGo.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		t.Logf("topic creation error (may already exist): %v", err)
	}
}

func TestSessionPublisher_Kafka(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping kafka integration test in short mode")
	}

	brokerAddr := setupKafka(t)
	const topic = "checkout-sessions"
	createTopic(t, brokerAddr, topic)

	// synchronous writer so the test observes the result of the write
	writer := &kafkaGo.Writer{
		Addr:         kafkaGo.TCP(brokerAddr),
		Topic:        topic,
		Balancer:     &kafkaGo.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}
	p := &SessionPublisher{writer: writer, log: slog.Default()}
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	require.NoError(t, p.PublishSessionCreated(ctx, testEvent()))

	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:  []string{brokerAddr},
		Topic:    topic,
		GroupID:  "test-consumer",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", string(msg.Key))

	var decoded domain.CheckoutSessionCreated
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "boxfit", decoded.OfferingID)
	assert.Equal(t, int64(2000), decoded.Total)
}
