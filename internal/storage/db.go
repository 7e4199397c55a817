package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyProcessing = errors.New("syllabus is already being processed")
)

// DB is satisfied by *pgxpool.Pool and by pgxmock pools.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS syllabi (
		id TEXT PRIMARY KEY,
		class_id TEXT NOT NULL,
		content_text TEXT,
		processing_status TEXT NOT NULL DEFAULT 'pending',
		processing_error TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS calendar_events (
		id TEXT PRIMARY KEY,
		syllabus_id TEXT REFERENCES syllabi(id) ON DELETE CASCADE,
		class_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		event_type TEXT NOT NULL,
		due_date DATE NOT NULL,
		due_time TIME,
		confidence_score DOUBLE PRECISION,
		source_text TEXT,
		extraction_method TEXT,
		is_exported BOOLEAN NOT NULL DEFAULT false,
		exported_at TIMESTAMPTZ,
		ics_uid TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS calendar_events_user_due_idx ON calendar_events (user_id, due_date)`,
	`CREATE INDEX IF NOT EXISTS calendar_events_syllabus_idx ON calendar_events (syllabus_id)`,
}

// Migrate creates the tables if they are missing.
func Migrate(ctx context.Context, db DB) error {
	op := "internal/storage/db.go Migrate"

	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failure to apply schema in %s: %w", op, err)
		}
	}
	return nil
}
