package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

const HeaderDeliveryCount = "x-delivery-count"

// Reader is the subset of *kafka.Reader the runner uses.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type RunnerConfig struct {
	BatchSize     int
	MaxWait       time.Duration
	MaxDeliveries int
	// RetryTopic receives failed messages for another attempt and must be
	// read only by this runner's group. Empty means the topic the message
	// was read from, which is safe only when no other group reads it.
	RetryTopic string
	// DeadLetterTopic defaults to "<source>.dlq".
	DeadLetterTopic string
}

// Runner drives a Processor from a Kafka consumer group. Kafka offsets cannot
// be acknowledged selectively, so failed messages are re-published with an
// incremented delivery count and the whole batch is then committed.
type Runner struct {
	log    *slog.Logger
	reader Reader
	writer Writer
	proc   *Processor
	cfg    RunnerConfig
}

func NewRunner(log *slog.Logger, reader Reader, writer Writer, proc *Processor, cfg RunnerConfig) *Runner {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = time.Second
	}
	if cfg.MaxDeliveries <= 0 {
		cfg.MaxDeliveries = 5
	}
	return &Runner{log: log.With("consumer", proc.Name()), reader: reader, writer: writer, proc: proc, cfg: cfg}
}

// NewReader builds a consumer-group reader with manual commits over one or
// more topics.
func NewReader(brokers []string, group string, topics ...string) *kafka.Reader {
	cfg := kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: group,
	}
	if len(topics) == 1 {
		cfg.Topic = topics[0]
	} else {
		cfg.GroupTopics = topics
	}
	return kafka.NewReader(cfg)
}

func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("consumer started")
	for {
		msgs, err := r.fetch(ctx)
		if ctx.Err() != nil {
			r.log.Info("consumer stopping")
			return nil
		}
		if err != nil {
			return fmt.Errorf("fetch: %w", err)
		}
		if err := r.handle(ctx, msgs); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// fetch blocks for the first message, then gathers more until the batch is
// full or MaxWait elapses.
func (r *Runner) fetch(ctx context.Context) ([]kafka.Message, error) {
	first, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return nil, err
	}
	msgs := []kafka.Message{first}

	waitCtx, cancel := context.WithTimeout(ctx, r.cfg.MaxWait)
	defer cancel()
	for len(msgs) < r.cfg.BatchSize {
		m, err := r.reader.FetchMessage(waitCtx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				break
			}
			return msgs, err
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (r *Runner) handle(ctx context.Context, raw []kafka.Message) error {
	batch := make([]Message, len(raw))
	byID := make(map[string]kafka.Message, len(raw))
	for i, km := range raw {
		m := toMessage(km)
		batch[i] = m
		byID[m.ID] = km
	}

	res := r.proc.ProcessBatch(ctx, batch)

	if len(res.FailedMessageIDs) > 0 {
		out := make([]kafka.Message, 0, len(res.FailedMessageIDs))
		dead := 0
		for _, id := range res.FailedMessageIDs {
			km := byID[id]
			delivery := deliveryCount(km.Headers)
			topic := r.cfg.RetryTopic
			if topic == "" {
				topic = km.Topic
			}
			if delivery >= r.cfg.MaxDeliveries {
				topic = r.cfg.DeadLetterTopic
				if topic == "" {
					topic = km.Topic + ".dlq"
				}
				dead++
				r.log.Warn("dead-lettering message", "message_id", id, "deliveries", delivery, "topic", topic)
			}
			out = append(out, kafka.Message{
				Topic:   topic,
				Key:     km.Key,
				Value:   km.Value,
				Headers: withDeliveryCount(km.Headers, delivery+1),
			})
		}
		if err := r.writer.WriteMessages(ctx, out...); err != nil {
			// Offsets stay uncommitted so the group redelivers the whole batch.
			return fmt.Errorf("requeue failed messages: %w", err)
		}
		messagesDeadLettered.WithLabelValues(r.proc.Name()).Add(float64(dead))
	}

	if err := r.reader.CommitMessages(ctx, raw...); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func toMessage(km kafka.Message) Message {
	headers := make(map[string]string, len(km.Headers))
	for _, h := range km.Headers {
		headers[h.Key] = string(h.Value)
	}
	return Message{
		ID:            MessageID(km),
		Body:          km.Value,
		DeliveryCount: deliveryCount(km.Headers),
		Headers:       headers,
	}
}

// MessageID identifies a Kafka record as topic/partition/offset.
func MessageID(km kafka.Message) string {
	return fmt.Sprintf("%s/%d/%d", km.Topic, km.Partition, km.Offset)
}

func deliveryCount(headers []kafka.Header) int {
	for _, h := range headers {
		if h.Key == HeaderDeliveryCount {
			if n, err := strconv.Atoi(string(h.Value)); err == nil && n > 0 {
				return n
			}
		}
	}
	return 1
}

func withDeliveryCount(headers []kafka.Header, n int) []kafka.Header {
	out := make([]kafka.Header, 0, len(headers)+1)
	for _, h := range headers {
		if h.Key != HeaderDeliveryCount {
			out = append(out, h)
		}
	}
	return append(out, kafka.Header{Key: HeaderDeliveryCount, Value: []byte(strconv.Itoa(n))})
}
