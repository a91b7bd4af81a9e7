package usagelog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS usage_log (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	entity_type       TEXT NOT NULL,
	input_type        TEXT NOT NULL,
	input_size_chars  INTEGER NOT NULL,
	model             TEXT NOT NULL DEFAULT '',
	prompt_tokens     INTEGER NOT NULL DEFAULT 0,
	completion_tokens INTEGER NOT NULL DEFAULT 0,
	cost_estimate_usd REAL NOT NULL DEFAULT 0,
	status            TEXT NOT NULL,
	duration_ms       INTEGER NOT NULL DEFAULT 0,
	error_message     TEXT NOT NULL DEFAULT '',
	created_at        TEXT NOT NULL
)`

// SQLiteStore persists usage events in a local SQLite file (dev/CLI mode).
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
}

func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap usage_log: %w", err)
	}
	return &SQLiteStore{db: db, log: logger}, nil
}

func (s *SQLiteStore) Log(ctx context.Context, ev Event) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_log
			(entity_type, input_type, input_size_chars, model, prompt_tokens,
			 completion_tokens, cost_estimate_usd, status, duration_ms,
			 error_message, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		string(ev.EntityType), string(ev.InputType), ev.InputSizeChars, ev.Model,
		ev.PromptTokens, ev.CompletionTokens, ev.CostEstimateUSD,
		string(ev.Status), ev.DurationMs, ev.ErrorMessage,
		ev.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		s.log.Error("usagelog.sqlite.insert_failed", "error", err)
		return fmt.Errorf("insert usage_log: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
