// Package batch dispatches inbound message batches to per-type handlers and
// reports only the failed subset back to the transport for redelivery.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/dmehra2102/commerce-choreography/pkg/apperror"
	"github.com/dmehra2102/commerce-choreography/pkg/envelope"
	"github.com/dmehra2102/commerce-choreography/pkg/tracing"
)

// Message is the transport-neutral view of one delivery. ID is whatever the
// transport needs back to redeliver it.
type Message struct {
	ID            string
	Body          []byte
	DeliveryCount int
	Headers       map[string]string
}

type Result struct {
	FailedMessageIDs []string `json:"failedMessageIds"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	ids := r.FailedMessageIDs
	if ids == nil {
		ids = []string{}
	}
	return json.Marshal(struct {
		FailedMessageIDs []string `json:"failedMessageIds"`
	}{ids})
}

func (r Result) OK() bool { return len(r.FailedMessageIDs) == 0 }

type Handler interface {
	Handle(ctx context.Context, env envelope.Envelope) error
}

type HandlerFunc func(ctx context.Context, env envelope.Envelope) error

func (f HandlerFunc) Handle(ctx context.Context, env envelope.Envelope) error { return f(ctx, env) }

// Translator is the boolean contract anti-corruption layers expose.
type Translator interface {
	Handle(ctx context.Context, env envelope.Envelope) bool
}

var ErrRejected = fmt.Errorf("message rejected by translator")

// FromTranslator turns a false result into a redeliverable failure.
func FromTranslator(t Translator) Handler {
	return HandlerFunc(func(ctx context.Context, env envelope.Envelope) error {
		if !t.Handle(ctx, env) {
			return ErrRejected
		}
		return nil
	})
}

type Processor struct {
	log         *slog.Logger
	name        string
	handlers    map[string]Handler
	concurrency int
	timeout     time.Duration
	tracer      trace.Tracer
}

type Option func(*Processor)

// WithConcurrency processes up to n messages of a batch at once.
func WithConcurrency(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithTimeout bounds the time spent on a single message.
func WithTimeout(d time.Duration) Option {
	return func(p *Processor) { p.timeout = d }
}

func NewProcessor(log *slog.Logger, name string, opts ...Option) *Processor {
	p := &Processor{
		log:         log.With("consumer", name),
		name:        name,
		handlers:    map[string]Handler{},
		concurrency: 1,
		tracer:      otel.Tracer("batch-" + name),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Processor) Name() string { return p.name }

// Register binds a handler to an envelope type. Registering the same type
// twice replaces the earlier handler.
func (p *Processor) Register(eventType string, h Handler) *Processor {
	p.handlers[eventType] = h
	return p
}

// ProcessBatch never aborts on a single bad message. Failures come back in
// input order regardless of how many messages ran concurrently.
func (p *Processor) ProcessBatch(ctx context.Context, msgs []Message) Result {
	failed := make([]bool, len(msgs))

	if p.concurrency <= 1 {
		for i, m := range msgs {
			failed[i] = p.process(ctx, m) != nil
		}
	} else {
		var g errgroup.Group
		g.SetLimit(p.concurrency)
		for i, m := range msgs {
			i, m := i, m
			g.Go(func() error {
				failed[i] = p.process(ctx, m) != nil
				return nil
			})
		}
		_ = g.Wait()
	}

	res := Result{FailedMessageIDs: []string{}}
	for i, f := range failed {
		if f {
			res.FailedMessageIDs = append(res.FailedMessageIDs, msgs[i].ID)
		}
	}
	messagesProcessed.WithLabelValues(p.name).Add(float64(len(msgs) - len(res.FailedMessageIDs)))
	messagesFailed.WithLabelValues(p.name).Add(float64(len(res.FailedMessageIDs)))
	return res
}

func (p *Processor) process(ctx context.Context, m Message) (err error) {
	if len(m.Headers) > 0 {
		ctx = otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(m.Headers))
	}

	env, perr := envelope.Parse(m.Body)
	if perr == nil && !trace.SpanContextFromContext(ctx).IsValid() {
		ctx = tracing.WithTraceparent(ctx, env.TraceParent)
	}

	ctx, span := p.tracer.Start(ctx, "process.message", trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.message.id", m.ID),
			attribute.Int("messaging.delivery_count", m.DeliveryCount),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if perr != nil {
		p.log.Error("undecodable message", "message_id", m.ID, "err", perr)
		return apperror.Deserialization(perr)
	}
	span.SetAttributes(attribute.String("event.type", env.Type), attribute.String("conversation.id", env.ConversationID))

	h, ok := p.handlers[env.Type]
	if !ok {
		p.log.Warn("no handler registered, acknowledging", "message_id", m.ID, "type", env.Type)
		return nil
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
			p.log.Error("handler panicked", "message_id", m.ID, "type", env.Type, "panic", r)
		}
	}()

	if err = h.Handle(ctx, env); err != nil {
		p.log.Error("message failed", "message_id", m.ID, "type", env.Type,
			"conversation_id", env.ConversationID, "delivery", m.DeliveryCount, "err", err)
		return err
	}
	p.log.Debug("message processed", "message_id", m.ID, "type", env.Type)
	return nil
}
