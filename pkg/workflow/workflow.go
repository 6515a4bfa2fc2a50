// Package workflow runs small durable orchestrations: every execution is
// recorded in a history store and a failing step is retried with bounded
// exponential backoff.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

type Execution struct {
	ID         string
	Name       string
	Key        string
	Status     Status
	Attempts   int
	LastError  string
	StartedAt  time.Time
	FinishedAt time.Time
}

// HistoryStore persists executions. Record is an upsert keyed by Execution.ID.
type HistoryStore interface {
	Record(ctx context.Context, e Execution) error
}

type Step func(ctx context.Context) error

type Runner struct {
	log         *slog.Logger
	store       HistoryStore
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
}

type Option func(*Runner)

func WithMaxAttempts(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

func WithBackoff(base, max time.Duration) Option {
	return func(r *Runner) {
		r.baseDelay = base
		r.maxDelay = max
	}
}

func NewRunner(log *slog.Logger, store HistoryStore, opts ...Option) *Runner {
	r := &Runner{
		log:         log,
		store:       store,
		maxAttempts: 3,
		baseDelay:   100 * time.Millisecond,
		maxDelay:    2 * time.Second,
		now:         time.Now,
		sleep:       sleepCtx,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute runs step under a new execution named name and keyed by key. Step
// failures end up in the history, not in the returned error; only a failure
// to write history is returned.
func (r *Runner) Execute(ctx context.Context, name, key string, step Step) (Execution, error) {
	exec := Execution{
		ID:        uuid.New().String(),
		Name:      name,
		Key:       key,
		Status:    StatusRunning,
		StartedAt: r.now().UTC(),
	}
	if err := r.store.Record(ctx, exec); err != nil {
		return exec, fmt.Errorf("record start of %s: %w", name, err)
	}

	delay := r.baseDelay
	for exec.Attempts < r.maxAttempts {
		exec.Attempts++
		err := step(ctx)
		if err == nil {
			exec.Status = StatusSucceeded
			exec.LastError = ""
			break
		}
		exec.LastError = err.Error()
		r.log.Warn("workflow step failed", "workflow", name, "key", key, "attempt", exec.Attempts, "err", err)

		if exec.Attempts == r.maxAttempts {
			exec.Status = StatusFailed
			break
		}
		if err := r.sleep(ctx, delay); err != nil {
			exec.Status = StatusFailed
			exec.LastError = err.Error()
			break
		}
		delay = min(delay*2, r.maxDelay)
	}
	exec.FinishedAt = r.now().UTC()

	// Persist the outcome even if the caller's context has been cancelled.
	if err := r.store.Record(context.WithoutCancel(ctx), exec); err != nil {
		return exec, fmt.Errorf("record outcome of %s: %w", name, err)
	}
	if exec.Status == StatusFailed {
		r.log.Error("workflow failed", "workflow", name, "key", key, "execution_id", exec.ID, "err", exec.LastError)
	} else {
		r.log.Info("workflow completed", "workflow", name, "key", key, "execution_id", exec.ID, "attempts", exec.Attempts)
	}
	return exec, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
