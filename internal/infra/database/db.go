package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 5 * time.Minute
	defaultConnMaxIdleTime = 1 * time.Minute
)

// NewPostgresConnection creates and returns a new PostgreSQL database connection.
// It also pings the database to ensure connectivity.
func NewPostgresConnection(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// EnsureSchema creates the moderation tables when they do not exist yet.
func EnsureSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tickets (
			id             TEXT PRIMARY KEY,
			submitter_ref  BIGINT NOT NULL,
			category       TEXT NOT NULL,
			preview        TEXT NOT NULL,
			content_chat   BIGINT NOT NULL,
			content_msg    INTEGER NOT NULL,
			status         TEXT NOT NULL,
			outcome        TEXT NOT NULL DEFAULT '',
			claimed_by     TEXT NOT NULL DEFAULT '',
			claimed_by_id  BIGINT NOT NULL DEFAULT 0,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			claimed_at     TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS ticket_views (
			ticket_id   TEXT NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
			destination BIGINT NOT NULL,
			message_id  INTEGER NOT NULL,
			PRIMARY KEY (ticket_id, destination, message_id)
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
