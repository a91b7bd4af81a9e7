package usagelog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS usage_log (
	id                BIGSERIAL PRIMARY KEY,
	entity_type       TEXT NOT NULL,
	input_type        TEXT NOT NULL,
	input_size_chars  INTEGER NOT NULL,
	model             TEXT NOT NULL DEFAULT '',
	prompt_tokens     INTEGER NOT NULL DEFAULT 0,
	completion_tokens INTEGER NOT NULL DEFAULT 0,
	cost_estimate_usd DOUBLE PRECISION NOT NULL DEFAULT 0,
	status            TEXT NOT NULL,
	duration_ms       BIGINT NOT NULL DEFAULT 0,
	error_message     TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PGStore persists usage events in Postgres.
type PGStore struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPGStore opens a pool and bootstraps the usage_log table.
func NewPGStore(ctx context.Context, dsn string, logger *slog.Logger) (*PGStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open pg pool: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap usage_log: %w", err)
	}
	return &PGStore{pool: pool, log: logger}, nil
}

func (s *PGStore) Log(ctx context.Context, ev Event) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO usage_log
			(entity_type, input_type, input_size_chars, model, prompt_tokens,
			 completion_tokens, cost_estimate_usd, status, duration_ms,
			 error_message, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		string(ev.EntityType), string(ev.InputType), ev.InputSizeChars, ev.Model,
		ev.PromptTokens, ev.CompletionTokens, ev.CostEstimateUSD,
		string(ev.Status), ev.DurationMs, ev.ErrorMessage, ev.CreatedAt,
	)
	if err != nil {
		s.log.Error("usagelog.pg.insert_failed", "error", err)
		return fmt.Errorf("insert usage_log: %w", err)
	}
	return nil
}

func (s *PGStore) Close() {
	s.pool.Close()
}
