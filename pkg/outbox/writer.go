package outbox

import (
	"context"

	"github.com/segmentio/kafka-go"
)

type Enqueuer interface {
	Enqueue(ctx context.Context, events ...Event) error
}

// Writer satisfies the same WriteMessages contract as *kafka.Writer but only
// records the messages; the Relay delivers them later.
type Writer struct {
	store Enqueuer
	topic string
}

// NewWriter stores messages for topic unless a message names its own.
func NewWriter(store Enqueuer, topic string) *Writer {
	return &Writer{store: store, topic: topic}
}

func (w *Writer) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	events := make([]Event, 0, len(msgs))
	for _, m := range msgs {
		topic := m.Topic
		if topic == "" {
			topic = w.topic
		}
		headers := make(map[string]string, len(m.Headers))
		var eventType string
		for _, h := range m.Headers {
			headers[h.Key] = string(h.Value)
			if h.Key == "event_type" {
				eventType = string(h.Value)
			}
		}
		events = append(events, Event{
			Topic:   topic,
			Key:     string(m.Key),
			Type:    eventType,
			Payload: m.Value,
			Headers: headers,
			Status:  StatusPending,
		})
	}
	return w.store.Enqueue(ctx, events...)
}
