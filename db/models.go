package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hastnet-scraper/models"

	"github.com/lib/pq"
)

// Run statuses
const (
	StatusDone   = "done"
	StatusFailed = "failed"
)

// Run describes one scrape run as stored in the runs table
type Run struct {
	ID         int
	StartPage  int
	EndPage    int
	BatchSize  int
	Status     string
	OutputPath string
	StartedAt  time.Time
}

// SaveRun stores a finished run together with its ads in one transaction
// and returns the run ID
func (db *DB) SaveRun(ctx context.Context, run Run, result *models.RunResult) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var runID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO runs (start_page, end_page, batch_size, status, pages_count, ads_count, rejected_count, output_path, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, run.StartPage, run.EndPage, run.BatchSize, StatusDone,
		result.Pages, len(result.Ads), len(result.Rejections), run.OutputPath, run.StartedAt,
	).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	for i, ad := range result.Ads {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ads (run_id, position, title, description, race, age, length, seller_name, seller_location, image_urls)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, runID, i+1, ad.Title, ad.Description,
			nullString(ad.Race), nullString(ad.Age), nullString(ad.Length),
			nullString(ad.Seller.Name), nullString(ad.Seller.Location),
			pq.Array(ad.ImageURLs),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert ad %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	return runID, nil
}

// RecordFailure stores a run that aborted with runErr
func (db *DB) RecordFailure(ctx context.Context, run Run, runErr error) (int, error) {
	var runID int
	err := db.conn.QueryRowContext(ctx, `
		INSERT INTO runs (start_page, end_page, batch_size, status, last_error, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, run.StartPage, run.EndPage, run.BatchSize, StatusFailed, runErr.Error(), run.StartedAt).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert failed run: %w", err)
	}
	return runID, nil
}

// GetRun retrieves a run by ID
func (db *DB) GetRun(ctx context.Context, id int) (*Run, error) {
	var run Run
	var outputPath sql.NullString
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, start_page, end_page, batch_size, status, output_path, started_at
		FROM runs
		WHERE id = $1
	`, id).Scan(&run.ID, &run.StartPage, &run.EndPage, &run.BatchSize, &run.Status, &outputPath, &run.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get run %d: %w", id, err)
	}
	run.OutputPath = outputPath.String
	return &run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
