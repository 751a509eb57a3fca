package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"encore/models"
	"encore/repository/testutil"
	"encore/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testRun(runDate string) *models.StreamRun {
	return &models.StreamRun{
		RunID:    runDate + "-1-test",
		RunDate:  runDate,
		LockedAt: time.Now().UTC(),
	}
}

func TestStreamRunRepository_PutAndGet(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewStreamRunRepository(testDB.DB)
	ctx := context.Background()

	// The migration seeds a completed bootstrap run
	seeded, err := repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, seeded)
	assert.Equal(t, "bootstrap", seeded.RunID)
	assert.True(t, seeded.Completed)

	cursor := "artist-042"
	run := testRun("2024-03-03")
	run.Processing = true
	run.LastArtistID = &cursor
	run.ProcessedCount = 42
	require.NoError(t, repo.Put(ctx, run))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, run.RunID, got.RunID)
	assert.Equal(t, "2024-03-03", got.RunDate)
	assert.True(t, got.Processing)
	require.NotNil(t, got.LastArtistID)
	assert.Equal(t, "artist-042", *got.LastArtistID)
	assert.Equal(t, 42, got.ProcessedCount)
}

func TestStreamRunRepository_FinalizeIsAdditive(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewStreamRunRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, testRun("2024-03-03")))

	cursor := "artist-120"
	require.NoError(t, repo.Finalize(ctx, models.RunCounts{Processed: 120, Skipped: 3}, &cursor, false))
	require.NoError(t, repo.Finalize(ctx, models.RunCounts{Processed: 10, Errored: 1}, nil, true))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 130, got.ProcessedCount)
	assert.Equal(t, 3, got.SkippedCount)
	assert.Equal(t, 1, got.ErrorCount)
	assert.True(t, got.Completed)
	assert.Nil(t, got.LastArtistID)
	assert.False(t, got.Processing)
}

func TestStreamRunRepository_ReleaseRecordsDiagnostic(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewStreamRunRepository(testDB.DB)
	ctx := context.Background()

	run := testRun("2024-03-03")
	run.Processing = true
	require.NoError(t, repo.Put(ctx, run))

	require.NoError(t, repo.Release(ctx, "batch commit failed: connection reset"))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.False(t, got.Processing)
	require.NotNil(t, got.LastError)
	assert.Contains(t, *got.LastError, "connection reset")
	assert.NotNil(t, got.LastErrorAt)
}

// Two concurrent claims must never both win: the FOR UPDATE row lock
// serializes them, and the loser observes the winner's unexpired lease.
func TestRunCoordinator_ClaimMutualExclusion(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	clock := new(service.MockGameClock)
	clock.On("CurrentGameDate", mock.Anything).Return("2024-03-03", nil)

	coordinator := service.NewRunCoordinator(
		NewUnitOfWorkFactory(testDB.DB),
		NewStreamRunRepository(testDB.DB),
		clock,
		8*time.Minute,
	)

	const claimants = 8
	results := make([]*service.ClaimResult, claimants)
	errs := make([]error, claimants)
	var wg sync.WaitGroup
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = coordinator.Claim(ctx, false)
		}(i)
	}
	wg.Wait()

	for i := range errs {
		require.NoError(t, errs[i])
	}

	winners := 0
	for _, result := range results {
		if result.CanProcess {
			winners++
		} else {
			assert.Equal(t, service.ReasonLocked, result.Reason)
		}
	}
	assert.Equal(t, 1, winners)
}

// A lease left dangling past the timeout must be claimable again.
func TestRunCoordinator_StaleLeaseRecovery(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewStreamRunRepository(testDB.DB)
	cursor := "artist-077"
	run := testRun("2024-03-03")
	run.Processing = true
	run.LockedAt = time.Now().UTC().Add(-10 * time.Minute)
	run.LastArtistID = &cursor
	run.ProcessedCount = 77
	require.NoError(t, repo.Put(ctx, run))

	clock := new(service.MockGameClock)
	clock.On("CurrentGameDate", mock.Anything).Return("2024-03-03", nil)

	coordinator := service.NewRunCoordinator(NewUnitOfWorkFactory(testDB.DB), repo, clock, 8*time.Minute)

	result, err := coordinator.Claim(ctx, false)
	require.NoError(t, err)
	assert.True(t, result.CanProcess)
	// Takeover resumes the interrupted run rather than restarting it
	assert.Equal(t, run.RunID, result.Run.RunID)
	require.NotNil(t, result.Run.LastArtistID)
	assert.Equal(t, "artist-077", *result.Run.LastArtistID)
	assert.Equal(t, 77, result.Run.ProcessedCount)
}
