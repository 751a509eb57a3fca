package service

import (
	"context"
	"fmt"
	"time"

	"encore/models"

	log "github.com/sirupsen/logrus"
)

// Batch outcome statuses
const (
	BatchLocked   = "locked"
	BatchIdle     = "idle"
	BatchComplete = "complete"
	BatchPartial  = "partial"
)

// Trigger sources
const (
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)

// Orchestration bounds
const (
	DefaultBatchSize    = 120
	ScheduledMaxBatches = 10
	ScheduledBudget     = 8 * time.Minute
	BudgetSafetyMargin  = 30 * time.Second

	MinManualBatches = 1
	MaxManualBatches = 100
	MinBatchSize     = 25
	MaxBatchSize     = 500
)

// ManualRunOptions bounds an operator-triggered run. Zero values fall back
// to defaults; out-of-range values are clamped.
type ManualRunOptions struct {
	MaxBatches int  `json:"maxBatches"`
	BatchSize  int  `json:"batchSize"`
	Reset      bool `json:"reset"`
}

// RunSummary is the structured result of one orchestrator invocation,
// returned to the caller and mirrored to the audit log.
type RunSummary struct {
	Success     bool   `json:"success"`
	DurationMs  int64  `json:"durationMs"`
	FinalStatus string `json:"finalStatus"`
	FinalReason string `json:"finalReason,omitempty"`
	Processed   int    `json:"processed"`
	Skipped     int    `json:"skipped"`
	Errors      int    `json:"errors"`
	Batches     int    `json:"batches"`
}

// streamUpdateService combines the pager, processor and coordinator into
// the resumable daily growth job.
type streamUpdateService struct {
	uowFactory  UnitOfWorkFactory
	artistRepo  ArtistRepository
	coordinator *RunCoordinator
	processor   *ArtistProcessor
	audit       AuditLogger
	batchSize   int
	now         func() time.Time
}

// NewStreamUpdateService creates a new stream update service. batchSize
// applies to scheduled runs; manual runs carry their own.
func NewStreamUpdateService(
	uowFactory UnitOfWorkFactory,
	artistRepo ArtistRepository,
	coordinator *RunCoordinator,
	audit AuditLogger,
	batchSize int,
) StreamUpdateService {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &streamUpdateService{
		uowFactory:  uowFactory,
		artistRepo:  artistRepo,
		coordinator: coordinator,
		processor:   NewArtistProcessor(),
		audit:       audit,
		batchSize:   batchSize,
		now:         time.Now,
	}
}

// batchResult reports one batch's outcome to the orchestrator loop
type batchResult struct {
	status string
	counts models.RunCounts
	cursor *string
}

// runBatch executes one bounded page of the run: claim, fetch, process
// sequentially, commit atomically, finalize. It never partially applies a
// page: the whole multi-write commits or none of it does.
func (s *streamUpdateService) runBatch(ctx context.Context, trigger string, pageSize int, forceRestart bool) (*batchResult, error) {
	claim, err := s.coordinator.Claim(ctx, forceRestart)
	if err != nil {
		return nil, fmt.Errorf("failed to claim run: %w", err)
	}
	if !claim.CanProcess {
		status := BatchLocked
		if claim.Reason == ReasonCompleted {
			status = BatchIdle
		}
		return &batchResult{status: status}, nil
	}

	run := claim.Run
	cursor := ""
	if run.LastArtistID != nil {
		cursor = *run.LastArtistID
	}

	artists, err := s.artistRepo.ListAfter(ctx, cursor, pageSize)
	if err != nil {
		s.releaseQuietly(ctx, err)
		return nil, fmt.Errorf("failed to fetch artist page: %w", err)
	}

	if len(artists) == 0 {
		// Nothing left past the cursor: the sweep is done
		if err := s.coordinator.Finalize(ctx, models.RunCounts{}, nil, true); err != nil {
			return nil, err
		}
		return &batchResult{status: BatchComplete}, nil
	}

	batch := &ArtistBatch{}
	for _, artist := range artists {
		s.processor.Process(artist, run.RunDate, batch)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		s.releaseQuietly(ctx, err)
		return nil, fmt.Errorf("failed to begin batch commit: %w", err)
	}
	defer uow.Rollback()

	if err := uow.ArtistRepository().ApplyUpdates(ctx, batch.Updates); err != nil {
		s.releaseQuietly(ctx, err)
		return nil, fmt.Errorf("failed to stage batch writes: %w", err)
	}
	if err := uow.Commit(); err != nil {
		s.releaseQuietly(ctx, err)
		return nil, fmt.Errorf("failed to commit batch: %w", err)
	}

	isComplete := len(artists) < pageSize
	newCursor := artists[len(artists)-1].ID

	if err := s.coordinator.Finalize(ctx, batch.Counts, &newCursor, isComplete); err != nil {
		s.releaseQuietly(ctx, err)
		return nil, err
	}

	log.WithFields(log.Fields{
		"trigger":   trigger,
		"run_id":    run.RunID,
		"processed": batch.Counts.Processed,
		"skipped":   batch.Counts.Skipped,
		"errored":   batch.Counts.Errored,
		"cursor":    newCursor,
		"complete":  isComplete,
	}).Info("Stream update batch committed")

	status := BatchPartial
	if isComplete {
		status = BatchComplete
	}
	return &batchResult{status: status, counts: batch.Counts, cursor: &newCursor}, nil
}

// releaseQuietly drops the lock with a diagnostic; the original failure is
// what propagates, not any release error.
func (s *streamUpdateService) releaseQuietly(ctx context.Context, cause error) {
	if err := s.coordinator.Release(ctx, cause); err != nil {
		log.Errorf("Failed to release run lock after error: %v", err)
	}
}

// RunScheduled is the timer-triggered entry point
func (s *streamUpdateService) RunScheduled(ctx context.Context) *RunSummary {
	return s.run(ctx, TriggerScheduled, ScheduledMaxBatches, s.batchSize, false)
}

// RunManual is the operator-triggered entry point. The reset flag is
// consumed only on the first batch.
func (s *streamUpdateService) RunManual(ctx context.Context, opts ManualRunOptions) *RunSummary {
	maxBatches := opts.MaxBatches
	if maxBatches == 0 {
		maxBatches = ScheduledMaxBatches
	}
	maxBatches = clamp(maxBatches, MinManualBatches, MaxManualBatches)

	batchSize := opts.BatchSize
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}
	batchSize = clamp(batchSize, MinBatchSize, MaxBatchSize)

	return s.run(ctx, TriggerManual, maxBatches, batchSize, opts.Reset)
}

// Status returns the current run record without touching the lock
func (s *streamUpdateService) Status(ctx context.Context) (*models.StreamRun, error) {
	return s.coordinator.Status(ctx)
}

// run is the orchestrator loop shared by both entry points: repeat batches
// until the run completes, another worker holds the lock, or the budget is
// spent, then emit one summary.
func (s *streamUpdateService) run(ctx context.Context, trigger string, maxBatches, batchSize int, reset bool) *RunSummary {
	start := s.now()
	deadline := start.Add(ScheduledBudget - BudgetSafetyMargin)
	summary := &RunSummary{Success: true}

	for i := 0; i < maxBatches; i++ {
		if i > 0 && s.now().After(deadline) {
			summary.FinalStatus = BatchPartial
			summary.FinalReason = "time budget exhausted"
			break
		}

		result, err := s.runBatch(ctx, trigger, batchSize, reset && i == 0)
		if err != nil {
			summary.Success = false
			summary.FinalStatus = "error"
			summary.FinalReason = err.Error()
			break
		}

		summary.Batches++
		summary.Processed += result.counts.Processed
		summary.Skipped += result.counts.Skipped
		summary.Errors += result.counts.Errored

		if result.status == BatchLocked || result.status == BatchIdle || result.status == BatchComplete {
			summary.FinalStatus = result.status
			break
		}
	}

	if summary.FinalStatus == "" {
		summary.FinalStatus = BatchPartial
		summary.FinalReason = "max batches reached"
	}

	summary.DurationMs = s.now().Sub(start).Milliseconds()

	s.audit.Log(ctx, "stream_update", map[string]any{
		"trigger":     trigger,
		"finalStatus": summary.FinalStatus,
		"finalReason": summary.FinalReason,
		"processed":   summary.Processed,
		"skipped":     summary.Skipped,
		"errors":      summary.Errors,
		"batches":     summary.Batches,
		"durationMs":  summary.DurationMs,
	})

	log.WithFields(log.Fields{
		"trigger":     trigger,
		"status":      summary.FinalStatus,
		"processed":   summary.Processed,
		"skipped":     summary.Skipped,
		"errors":      summary.Errors,
		"batches":     summary.Batches,
		"duration_ms": summary.DurationMs,
	}).Info("Stream update run finished")

	return summary
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
