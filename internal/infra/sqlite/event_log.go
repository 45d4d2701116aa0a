package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"quizlens/internal/llm"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS llm_events (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    purpose       TEXT    NOT NULL,
    model         TEXT    NOT NULL,
    latency_ms    INTEGER NOT NULL,
    input_tokens  INTEGER NOT NULL DEFAULT 0,
    output_tokens INTEGER NOT NULL DEFAULT 0,
    success       INTEGER NOT NULL,
    error_message TEXT    NOT NULL DEFAULT '',
    created_at    TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS llm_events_created_at ON llm_events (created_at);
`

// EventLog records model calls in a SQLite database.
type EventLog struct {
	db *sql.DB
}

// Open creates the database file if needed, applies pragmas and the schema.
func Open(path string) (*EventLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create event log dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &EventLog{db: db}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (l *EventLog) Close() error {
	return l.db.Close()
}

// RecordLLMCall implements llm.EventRecorder.
func (l *EventLog) RecordLLMCall(ctx context.Context, ev llm.Event) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO llm_events (purpose, model, latency_ms, input_tokens, output_tokens, success, error_message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.Purpose, ev.Model, ev.LatencyMs, ev.InputTokens, ev.OutputTokens, ev.Success, ev.ErrorMessage,
		ev.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert llm event: %w", err)
	}
	return nil
}

// Recent returns up to n events, newest first.
func (l *EventLog) Recent(ctx context.Context, n int) ([]llm.Event, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT purpose, model, latency_ms, input_tokens, output_tokens, success, error_message, created_at
		 FROM llm_events ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query llm events: %w", err)
	}
	defer rows.Close()

	var events []llm.Event
	for rows.Next() {
		var (
			ev      llm.Event
			created string
		)
		if err := rows.Scan(&ev.Purpose, &ev.Model, &ev.LatencyMs, &ev.InputTokens, &ev.OutputTokens,
			&ev.Success, &ev.ErrorMessage, &created); err != nil {
			return nil, fmt.Errorf("scan llm event: %w", err)
		}
		if ev.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse event time %q: %w", created, err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
