package models

import (
	"time"
)

// StreamRun is the single shared record coordinating the daily stream
// growth job. Exactly one row exists; claim, finalize and release all
// operate on it through the run coordinator.
type StreamRun struct {
	RunID          string     `db:"run_id"`
	RunDate        string     `db:"run_date"` // YYYY-MM-DD game date this run covers
	Processing     bool       `db:"processing"`
	LockedAt       time.Time  `db:"locked_at"`
	LastArtistID   *string    `db:"last_artist_id"` // resumption cursor; nil means start of collection
	ProcessedCount int        `db:"processed_count"`
	SkippedCount   int        `db:"skipped_count"`
	ErrorCount     int        `db:"error_count"`
	Completed      bool       `db:"completed"`
	LastError      *string    `db:"last_error"`
	LastErrorAt    *time.Time `db:"last_error_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// RunCounts carries the per-batch tallies applied additively at finalize.
type RunCounts struct {
	Processed int
	Skipped   int
	Errored   int
}
