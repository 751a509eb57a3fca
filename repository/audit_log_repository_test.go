package repository

import (
	"context"
	"testing"
	"time"

	"encore/models"
	"encore/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogRepository_AppendAndList(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAuditLogRepository(testDB.DB)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, "stream_update", map[string]any{
		"trigger":   "manual",
		"processed": float64(130),
	}))
	require.NoError(t, repo.Append(ctx, "stream_update", map[string]any{
		"trigger": "scheduled",
	}))
	require.NoError(t, repo.Append(ctx, "other_action", map[string]any{}))

	entries, err := repo.ListRecent(ctx, "stream_update", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Most recent first
	assert.Equal(t, "scheduled", entries[0].Details["trigger"])
	assert.Equal(t, "manual", entries[1].Details["trigger"])
	assert.Equal(t, float64(130), entries[1].Details["processed"])
}

func TestGameClockRepository_SetAndGet(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGameClockRepository(testDB.DB)
	ctx := context.Background()

	// Migration seeds a default mapping
	seeded, err := repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, seeded)

	clock := &models.GameClock{
		RealWorldStart: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		GameWorldStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Set(ctx, clock))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.RealWorldStart.Equal(clock.RealWorldStart))
	assert.True(t, got.GameWorldStart.Equal(clock.GameWorldStart))
}
