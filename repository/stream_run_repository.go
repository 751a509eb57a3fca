package repository

import (
	"context"
	"fmt"

	"encore/database"
	"encore/models"

	"github.com/jackc/pgx/v5"
)

// StreamRunRepository implements the StreamRunRepository interface over the
// single shared coordination row.
type StreamRunRepository struct {
	q queryable
}

// NewStreamRunRepository creates a new stream run repository
func NewStreamRunRepository(db *database.DB) *StreamRunRepository {
	return &StreamRunRepository{q: db.Pool}
}

// newStreamRunRepositoryWithTx creates a new stream run repository with a transaction
func newStreamRunRepositoryWithTx(tx queryable) *StreamRunRepository {
	return &StreamRunRepository{q: tx}
}

const streamRunColumns = `
	run_id, run_date, processing, locked_at, last_artist_id,
	processed_count, skipped_count, error_count, completed,
	last_error, last_error_at, updated_at
`

func (r *StreamRunRepository) get(ctx context.Context, query string) (*models.StreamRun, error) {
	var run models.StreamRun
	err := r.q.QueryRow(ctx, query).Scan(
		&run.RunID,
		&run.RunDate,
		&run.Processing,
		&run.LockedAt,
		&run.LastArtistID,
		&run.ProcessedCount,
		&run.SkippedCount,
		&run.ErrorCount,
		&run.Completed,
		&run.LastError,
		&run.LastErrorAt,
		&run.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stream run: %w", err)
	}
	return &run, nil
}

// Get retrieves the current run record, or nil if none exists yet
func (r *StreamRunRepository) Get(ctx context.Context) (*models.StreamRun, error) {
	return r.get(ctx, `SELECT `+streamRunColumns+` FROM stream_run WHERE id = 1`)
}

// GetForUpdate retrieves the run record under a row lock. Concurrent claim
// attempts serialize on this lock, which is what makes the claim step an
// atomic read-modify-write.
func (r *StreamRunRepository) GetForUpdate(ctx context.Context) (*models.StreamRun, error) {
	return r.get(ctx, `SELECT `+streamRunColumns+` FROM stream_run WHERE id = 1 FOR UPDATE`)
}

// Put inserts or fully replaces the run record
func (r *StreamRunRepository) Put(ctx context.Context, run *models.StreamRun) error {
	query := `
		INSERT INTO stream_run
		(id, run_id, run_date, processing, locked_at, last_artist_id,
		 processed_count, skipped_count, error_count, completed,
		 last_error, last_error_at, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		ON CONFLICT (id) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			run_date = EXCLUDED.run_date,
			processing = EXCLUDED.processing,
			locked_at = EXCLUDED.locked_at,
			last_artist_id = EXCLUDED.last_artist_id,
			processed_count = EXCLUDED.processed_count,
			skipped_count = EXCLUDED.skipped_count,
			error_count = EXCLUDED.error_count,
			completed = EXCLUDED.completed,
			last_error = EXCLUDED.last_error,
			last_error_at = EXCLUDED.last_error_at,
			updated_at = NOW()
	`

	_, err := r.q.Exec(ctx, query,
		run.RunID,
		run.RunDate,
		run.Processing,
		run.LockedAt,
		run.LastArtistID,
		run.ProcessedCount,
		run.SkippedCount,
		run.ErrorCount,
		run.Completed,
		run.LastError,
		run.LastErrorAt,
	)
	if err != nil {
		return fmt.Errorf("failed to put stream run %s: %w", run.RunID, err)
	}

	return nil
}

// Finalize additively increments the counters, clears the processing flag
// and advances the cursor. The increments are performed in place so a
// concurrent finalize cannot lose counts.
func (r *StreamRunRepository) Finalize(ctx context.Context, counts models.RunCounts, cursor *string, completed bool) error {
	query := `
		UPDATE stream_run
		SET processed_count = processed_count + $1,
		    skipped_count = skipped_count + $2,
		    error_count = error_count + $3,
		    processing = FALSE,
		    last_artist_id = $4,
		    completed = $5,
		    updated_at = NOW()
		WHERE id = 1
	`

	tag, err := r.q.Exec(ctx, query, counts.Processed, counts.Skipped, counts.Errored, cursor, completed)
	if err != nil {
		return fmt.Errorf("failed to finalize stream run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to finalize stream run: no run record exists")
	}

	return nil
}

// Release clears the processing flag and records a diagnostic so a later
// invocation can reclaim the run after an abnormal stop.
func (r *StreamRunRepository) Release(ctx context.Context, errMsg string) error {
	query := `
		UPDATE stream_run
		SET processing = FALSE,
		    last_error = $1,
		    last_error_at = NOW(),
		    updated_at = NOW()
		WHERE id = 1
	`

	if _, err := r.q.Exec(ctx, query, errMsg); err != nil {
		return fmt.Errorf("failed to release stream run: %w", err)
	}

	return nil
}
