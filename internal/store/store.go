// Package store persists plan executions to Postgres. The store is optional
// supporting infrastructure: when it is not configured the front-ends skip it
// entirely, and a write failure is logged, never surfaced to the caller.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/xkilldash9x/marketprobe/api/schemas"
)

// DBPool abstracts pgxpool.Pool so tests can substitute a mock.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store provides the PostgreSQL run-history implementation.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{pool: pool, log: logger.Named("store")}, nil
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	goal TEXT NOT NULL DEFAULT '',
	ok BOOLEAN NOT NULL,
	final_ticker TEXT,
	final_price TEXT,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS run_steps (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	idx INT NOT NULL,
	op TEXT NOT NULL,
	ok BOOLEAN NOT NULL,
	error TEXT NOT NULL DEFAULT '',
	url TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, idx)
);
`

// EnsureSchema creates the run-history tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create run-history schema: %w", err)
	}
	return nil
}

// Run is one persisted plan execution.
type Run struct {
	ID         string
	Goal       string
	Report     *schemas.ExecutionReport
	StartedAt  time.Time
	FinishedAt time.Time
}

const insertRunSQL = `
INSERT INTO runs (id, goal, ok, final_ticker, final_price, started_at, finished_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`

const insertStepSQL = `
INSERT INTO run_steps (run_id, idx, op, ok, error, url)
VALUES ($1, $2, $3, $4, $5, $6);
`

// SaveRun records one execution and its per-step results in a single
// transaction.
func (s *Store) SaveRun(ctx context.Context, run Run) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && rollbackErr != pgx.ErrTxClosed {
			s.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
		}
	}()

	var ticker, price any
	if run.Report.Final != nil {
		ticker = run.Report.Final.Ticker
		price = run.Report.Final.Price
	}

	if _, err := tx.Exec(ctx, insertRunSQL,
		run.ID, run.Goal, run.Report.OK, ticker, price, run.StartedAt, run.FinishedAt,
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, res := range run.Report.Results {
		if _, err := tx.Exec(ctx, insertStepSQL,
			run.ID, res.Step, string(res.Op), res.OK, res.Error, res.URL,
		); err != nil {
			return fmt.Errorf("failed to insert step %d: %w", res.Step, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
