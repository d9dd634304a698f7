package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// Open connects to Postgres with dsn and creates the tables if needed
func Open(ctx context.Context, dsn string) (*DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := New(conn)
	if err := db.InitSchema(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// New wraps an existing connection
func New(conn *sql.DB) *DB {
	return &DB{conn: conn}
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// InitSchema creates the runs and ads tables if they don't exist
func (db *DB) InitSchema(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id SERIAL PRIMARY KEY,
			start_page INTEGER NOT NULL,
			end_page INTEGER NOT NULL,
			batch_size INTEGER NOT NULL,
			status VARCHAR(20) NOT NULL,
			pages_count INTEGER NOT NULL DEFAULT 0,
			ads_count INTEGER NOT NULL DEFAULT 0,
			rejected_count INTEGER NOT NULL DEFAULT 0,
			output_path TEXT,
			last_error TEXT,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS ads (
			id SERIAL PRIMARY KEY,
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			race TEXT,
			age TEXT,
			length TEXT,
			seller_name TEXT,
			seller_location TEXT,
			image_urls TEXT[] NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create ads table: %w", err)
	}

	_, err = db.conn.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_ads_run_id ON ads(run_id)`)
	if err != nil {
		return fmt.Errorf("failed to create ads index: %w", err)
	}

	return nil
}
