package service

import (
	"context"
	"fmt"
	"time"

	"encore/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// DefaultLeaseTimeout bounds how long a crashed worker can hold the run
// before another invocation may take over. Must exceed one batch's
// worst-case duration.
const DefaultLeaseTimeout = 8 * time.Minute

// Claim rejection reasons
const (
	ReasonCompleted = "completed"
	ReasonLocked    = "locked"
)

// ClaimResult reports whether the caller may process and, if so, the run
// state it resumes from.
type ClaimResult struct {
	CanProcess bool
	Reason     string
	Run        *models.StreamRun
}

// RunCoordinator owns the shared run record. Claim is an atomic
// read-modify-write under a row lock; finalize and release are single
// additive statements, so they are safe without the lock.
type RunCoordinator struct {
	uowFactory   UnitOfWorkFactory
	runRepo      StreamRunRepository
	clock        GameClock
	leaseTimeout time.Duration
	now          func() time.Time
}

// NewRunCoordinator creates a new run coordinator
func NewRunCoordinator(uowFactory UnitOfWorkFactory, runRepo StreamRunRepository, clock GameClock, leaseTimeout time.Duration) *RunCoordinator {
	if leaseTimeout <= 0 {
		leaseTimeout = DefaultLeaseTimeout
	}
	return &RunCoordinator{
		uowFactory:   uowFactory,
		runRepo:      runRepo,
		clock:        clock,
		leaseTimeout: leaseTimeout,
		now:          time.Now,
	}
}

func newRunID(runDate string, now time.Time) string {
	return fmt.Sprintf("%s-%d-%s", runDate, now.Unix(), uuid.NewString()[:8])
}

// Claim attempts to acquire the exclusive right to process the current
// game day. Exactly one live run exists per run date: a new date always
// supersedes the previous run, a completed run yields "completed", an
// unexpired lease held elsewhere yields "locked", and an expired lease is
// taken over in place, preserving the cursor and counters.
func (c *RunCoordinator) Claim(ctx context.Context, forceRestart bool) (*ClaimResult, error) {
	today, err := c.clock.CurrentGameDate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve run date: %w", err)
	}

	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin claim transaction: %w", err)
	}
	defer uow.Rollback()

	now := c.now().UTC()
	current, err := uow.StreamRunRepository().GetForUpdate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read run record: %w", err)
	}

	var run *models.StreamRun
	switch {
	case current == nil || forceRestart || current.RunDate != today:
		// Fresh run for this date: new run id, cursor back to the start
		run = &models.StreamRun{
			RunID:      newRunID(today, now),
			RunDate:    today,
			Processing: true,
			LockedAt:   now,
		}

	case current.Completed:
		return &ClaimResult{Reason: ReasonCompleted, Run: current}, nil

	case current.Processing && now.Sub(current.LockedAt) < c.leaseTimeout:
		return &ClaimResult{Reason: ReasonLocked, Run: current}, nil

	default:
		// Resume: either a clean handoff or a stale-lease takeover.
		// Keep run id, cursor and counters from the interrupted run.
		if current.Processing {
			log.WithFields(log.Fields{
				"run_id":    current.RunID,
				"locked_at": current.LockedAt,
			}).Warn("Taking over stale run lease")
		}
		run = current
		run.Processing = true
		run.LockedAt = now
	}

	if err := uow.StreamRunRepository().Put(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to write claimed run: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit claim: %w", err)
	}

	return &ClaimResult{CanProcess: true, Run: run}, nil
}

// Finalize records one batch's outcome: tallies are added, the cursor
// advances (or clears on completion) and the lock is dropped.
func (c *RunCoordinator) Finalize(ctx context.Context, counts models.RunCounts, cursor *string, completed bool) error {
	if completed {
		cursor = nil
	}
	if err := c.runRepo.Finalize(ctx, counts, cursor, completed); err != nil {
		return fmt.Errorf("failed to finalize run: %w", err)
	}
	return nil
}

// Release drops the lock after an unrecoverable batch failure, recording
// the diagnostic so the run stays claimable for a retry.
func (c *RunCoordinator) Release(ctx context.Context, cause error) error {
	if err := c.runRepo.Release(ctx, cause.Error()); err != nil {
		return fmt.Errorf("failed to release run: %w", err)
	}
	return nil
}

// Status returns the current run record without touching the lock
func (c *RunCoordinator) Status(ctx context.Context) (*models.StreamRun, error) {
	return c.runRepo.Get(ctx)
}
