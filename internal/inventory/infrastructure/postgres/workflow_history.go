package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/commerce-choreography/pkg/workflow"
)

// HistoryStore persists workflow executions in workflow_executions.
type HistoryStore struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewHistoryStore(log *slog.Logger, pool *pgxpool.Pool) *HistoryStore {
	return &HistoryStore{log: log, pool: pool}
}

func (s *HistoryStore) Record(ctx context.Context, e workflow.Execution) error {
	var finished any
	if !e.FinishedAt.IsZero() {
		finished = e.FinishedAt
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO workflow_executions (id, name, key, status, attempts, last_error, started_at, finished_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET status = $4, attempts = $5, last_error = $6, finished_at = $8`,
		e.ID, e.Name, e.Key, string(e.Status), e.Attempts, e.LastError, e.StartedAt, finished)
	return err
}
