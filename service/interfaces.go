package service

import (
	"context"

	"encore/models"
)

// ArtistRepository defines the interface for artist data access
type ArtistRepository interface {
	// GetByID retrieves an artist by ID
	GetByID(ctx context.Context, id string) (*models.Artist, error)

	// ListAfter returns up to limit artists in ID order, starting strictly
	// after the given cursor. An empty cursor starts at the beginning.
	ListAfter(ctx context.Context, cursor string, limit int) ([]*models.Artist, error)

	// ApplyUpdates writes a batch of staged artist updates. Callers are
	// responsible for running this inside a transaction when atomicity
	// across the batch is required.
	ApplyUpdates(ctx context.Context, updates []*models.ArtistUpdate) error

	// Create inserts a new artist record
	Create(ctx context.Context, artist *models.Artist) error
}

// StreamRunRepository defines the interface for the shared run record
type StreamRunRepository interface {
	// Get retrieves the current run record, or nil if none exists yet
	Get(ctx context.Context) (*models.StreamRun, error)

	// GetForUpdate retrieves the run record under a row lock. Must be
	// called within a transaction; concurrent callers serialize here.
	GetForUpdate(ctx context.Context) (*models.StreamRun, error)

	// Put inserts or fully replaces the run record
	Put(ctx context.Context, run *models.StreamRun) error

	// Finalize additively increments the counters, clears the processing
	// flag and advances the cursor. Additive increments mean concurrent
	// finalize calls cannot lose counts.
	Finalize(ctx context.Context, counts models.RunCounts, cursor *string, completed bool) error

	// Release clears the processing flag and records a diagnostic so a
	// later invocation can reclaim the run.
	Release(ctx context.Context, errMsg string) error
}

// GameClockRepository defines the interface for the stored clock mapping
type GameClockRepository interface {
	// Get retrieves the clock mapping, or nil if none is configured
	Get(ctx context.Context) (*models.GameClock, error)

	// Set inserts or replaces the clock mapping
	Set(ctx context.Context, clock *models.GameClock) error
}

// AuditLogRepository defines the interface for the append-only audit trail
type AuditLogRepository interface {
	// Append durably records one audit entry
	Append(ctx context.Context, action string, details map[string]any) error

	// ListRecent returns the most recent entries for an action
	ListRecent(ctx context.Context, action string, limit int) ([]*models.AuditLog, error)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	ArtistRepository() ArtistRepository
	StreamRunRepository() StreamRunRepository
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}

// GameClock provides the authoritative current game date
type GameClock interface {
	// CurrentGameDate returns the current in-game calendar date as YYYY-MM-DD
	CurrentGameDate(ctx context.Context) (string, error)
}

// AuditLogger records operational events. Best-effort: implementations
// must never fail the caller.
type AuditLogger interface {
	Log(ctx context.Context, action string, details map[string]any)
}

// StreamUpdateService drives the daily stream growth job
type StreamUpdateService interface {
	// RunScheduled is the timer-triggered entry point
	RunScheduled(ctx context.Context) *RunSummary

	// RunManual is the operator-triggered entry point
	RunManual(ctx context.Context, opts ManualRunOptions) *RunSummary

	// Status returns the current run record without touching the lock
	Status(ctx context.Context) (*models.StreamRun, error)
}
