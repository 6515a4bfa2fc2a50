package envelope

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"

	"github.com/dmehra2102/commerce-choreography/pkg/apperror"
	"github.com/dmehra2102/commerce-choreography/pkg/tracing"
)

const (
	HeaderEventType      = "event_type"
	HeaderConversationID = "conversation_id"
)

var eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "envelope_events_published_total",
	Help: "Events handed to the outbound channel, by type and outcome.",
}, []string{"type", "outcome"})

// Producer is satisfied by *kafka.Writer and by the outbox writer.
type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher is what handlers depend on; tests substitute in-memory fakes.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

type KafkaPublisher struct {
	log      *slog.Logger
	producer Producer
	topic    string
	source   string
	now      func() time.Time
	newID    func() string
}

// NewPublisher builds a publisher stamping source "{env}.{domain}".
func NewPublisher(log *slog.Logger, producer Producer, topic, env, domain string) *KafkaPublisher {
	return &KafkaPublisher{
		log:      log,
		producer: producer,
		topic:    topic,
		source:   fmt.Sprintf("%s.%s", env, domain),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

func (p *KafkaPublisher) Topic() string { return p.topic }

// Publish wraps evt in a fresh envelope and writes it synchronously. The id and
// time are assigned here so that every attempt has its own identity. Failures
// are returned to the caller as publish errors; nothing is retried here.
func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	env, err := p.Wrap(ctx, evt)
	if err != nil {
		eventsPublished.WithLabelValues(evt.EventType(), "error").Inc()
		return apperror.Publish(err)
	}
	value, err := json.Marshal(env)
	if err != nil {
		eventsPublished.WithLabelValues(env.Type, "error").Inc()
		return apperror.Publish(err)
	}

	headers := []kafka.Header{
		{Key: HeaderEventType, Value: []byte(env.Type)},
		{Key: HeaderConversationID, Value: []byte(env.ConversationID)},
	}
	headers = tracing.InjectKafkaHeaders(ctx, headers)

	msg := kafka.Message{
		Topic:   p.topic,
		Key:     []byte(env.ConversationID),
		Value:   value,
		Headers: headers,
	}
	if err := p.producer.WriteMessages(ctx, msg); err != nil {
		eventsPublished.WithLabelValues(env.Type, "error").Inc()
		p.log.Error("publish failed", "type", env.Type, "conversation_id", env.ConversationID, "err", err)
		return apperror.Publish(err)
	}
	eventsPublished.WithLabelValues(env.Type, "ok").Inc()
	p.log.Info("event published", "id", env.ID, "type", env.Type, "conversation_id", env.ConversationID, "topic", p.topic)
	return nil
}

// Wrap builds the envelope without sending it.
func (p *KafkaPublisher) Wrap(ctx context.Context, evt Event) (Envelope, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s: %w", evt.EventType(), err)
	}
	return Envelope{
		ID:             p.newID(),
		Type:           evt.EventType(),
		Source:         p.source,
		Time:           p.now().UTC().Format(time.RFC3339),
		Data:           data,
		ConversationID: evt.ConversationID(),
		TraceParent:    tracing.Traceparent(ctx),
	}, nil
}
