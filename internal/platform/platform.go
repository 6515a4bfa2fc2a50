// Package platform wires the pieces every service process shares: config,
// logging, tracing, Postgres, Kafka, the HTTP server and the consumers.
package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"

	"github.com/dmehra2102/commerce-choreography/internal/config"
	"github.com/dmehra2102/commerce-choreography/pkg/batch"
	"github.com/dmehra2102/commerce-choreography/pkg/envelope"
	"github.com/dmehra2102/commerce-choreography/pkg/httpx"
	"github.com/dmehra2102/commerce-choreography/pkg/idempotency"
	"github.com/dmehra2102/commerce-choreography/pkg/logging"
	"github.com/dmehra2102/commerce-choreography/pkg/outbox"
	"github.com/dmehra2102/commerce-choreography/pkg/shutdown"
	"github.com/dmehra2102/commerce-choreography/pkg/tracing"
)

type Options struct {
	Postgres bool
	// Idempotency enables the Redis-backed Idempotency-Key middleware.
	Idempotency bool
}

type App struct {
	Cfg  *config.Config
	Log  *slog.Logger
	Pool *pgxpool.Pool

	tp      *sdktrace.TracerProvider
	rdb     *redis.Client
	writer  *kafka.Writer
	outbox  *outbox.PgStore
	router  chi.Router
	routes  chi.Router
	runners []*batch.Runner
	readers []*kafka.Reader
}

func New(ctx context.Context, service, configPath string, opts Options) (*App, error) {
	cfg, err := config.Load(configPath, service)
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.Log.Level).With("service", cfg.App.Name)

	a := &App{Cfg: cfg, Log: log}
	a.tp, err = tracing.Init(ctx, cfg.App.Name, cfg.Tracing.Endpoint, log)
	if err != nil {
		return nil, err
	}

	if opts.Postgres || cfg.Publish.Mode == config.PublishOutbox {
		a.Pool, err = pgxpool.New(ctx, cfg.Postgres.URL)
		if err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("pg connect: %w", err)
		}
		if err := a.Pool.Ping(ctx); err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("pg ping: %w", err)
		}
	}
	if cfg.Publish.Mode == config.PublishOutbox {
		a.outbox = outbox.NewPgStore(log, a.Pool)
		if err := a.outbox.EnsureSchema(ctx); err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("outbox schema: %w", err)
		}
	}

	a.writer = envelope.NewKafkaWriter(cfg.Kafka.Brokers)
	a.router = httpx.NewRouter(log)
	a.routes = a.router
	if opts.Idempotency {
		a.rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		store := idempotency.NewRedisStore(a.rdb, cfg.Redis.IdempotencyTTL)
		a.routes = a.router.With(idempotency.Middleware(log, store))
	}
	return a, nil
}

// Router is where handlers mount their routes. Health and metrics sit
// outside the idempotency middleware.
func (a *App) Router() chi.Router { return a.routes }

// Publisher publishes to topic as domain. In outbox mode the messages are
// staged in Postgres and delivered by the relay started in Run.
func (a *App) Publisher(topic, domain string) *envelope.KafkaPublisher {
	var producer envelope.Producer = a.writer
	if a.outbox != nil {
		producer = outbox.NewWriter(a.outbox, topic)
	}
	return envelope.NewPublisher(a.Log.With("topic", topic), producer, topic, a.Cfg.App.Env, domain)
}

// Consume registers a processor reading topics under the service's
// consumer group. Each processor gets its own group suffix so offsets are
// tracked independently, and its own retry topic, which it also reads.
func (a *App) Consume(proc *batch.Processor, topics ...string) {
	k := a.Cfg.Kafka
	group := k.GroupID + "." + proc.Name()
	retry := a.Cfg.Topics.Retry(group)
	reader := batch.NewReader(k.Brokers, group, append(topics, retry)...)
	a.readers = append(a.readers, reader)
	a.runners = append(a.runners, batch.NewRunner(a.Log, reader, a.writer, proc, consumerConfig(a.Cfg, group)))
}

func consumerConfig(cfg *config.Config, group string) batch.RunnerConfig {
	return batch.RunnerConfig{
		BatchSize:       cfg.Kafka.BatchSize,
		MaxWait:         cfg.Kafka.MaxWait,
		MaxDeliveries:   cfg.Kafka.MaxDeliveries,
		RetryTopic:      cfg.Topics.Retry(group),
		DeadLetterTopic: cfg.Topics.DeadLetter(group),
	}
}

// NewProcessor applies the configured concurrency and per-message timeout.
func (a *App) NewProcessor(name string) *batch.Processor {
	return batch.NewProcessor(a.Log, name,
		batch.WithConcurrency(a.Cfg.Kafka.Concurrency),
		batch.WithTimeout(a.Cfg.Kafka.MessageTimeout))
}

// Run serves HTTP and drives consumers and the outbox relay until ctx is
// cancelled or one of them fails, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         a.Cfg.HTTP.Addr,
		Handler:      a.router,
		ReadTimeout:  a.Cfg.HTTP.ReadTimeout,
		WriteTimeout: a.Cfg.HTTP.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("http listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	for _, r := range a.runners {
		r := r
		g.Go(func() error { return r.Run(gctx) })
	}
	if a.outbox != nil {
		relay := outbox.NewRelay(a.Log, a.outbox, outbox.NewDispatcher(a.Log, a.writer), a.Cfg.App.Name+"-relay")
		g.Go(func() error { return relay.Run(gctx) })
	}
	<-gctx.Done()
	a.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Cfg.HTTP.ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	err = errors.Join(err, g.Wait())
	return errors.Join(err, shutdown.Run(a.Cfg.HTTP.ShutdownTimeout, a.hooks()...))
}

// hooks release clients once every consumer has stopped. They run in
// reverse, so the tracer flushes last.
func (a *App) hooks() []shutdown.Hook {
	hooks := []shutdown.Hook{
		a.tp.Shutdown,
		func(context.Context) error {
			if a.Pool != nil {
				a.Pool.Close()
			}
			return nil
		},
		func(context.Context) error { return a.writer.Close() },
	}
	for _, r := range a.readers {
		r := r
		hooks = append(hooks, func(context.Context) error { return r.Close() })
	}
	if a.rdb != nil {
		hooks = append(hooks, func(context.Context) error { return a.rdb.Close() })
	}
	return hooks
}

func (a *App) close(ctx context.Context) {
	if a.Pool != nil {
		a.Pool.Close()
	}
	_ = a.tp.Shutdown(ctx)
}

// Fatal logs a startup failure before any service logger exists and exits.
func Fatal(err error) {
	logging.New("error").Error("startup failed", "err", err)
	os.Exit(1)
}
