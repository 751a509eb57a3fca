package repository

import (
	"context"
	"testing"

	"encore/models"
	"encore/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtistRepository_ListAfter(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewArtistRepository(testDB.DB)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Create(ctx, testutil.CreateTestArtist(i)))
	}

	t.Run("from the beginning", func(t *testing.T) {
		artists, err := repo.ListAfter(ctx, "", 3)
		require.NoError(t, err)
		require.Len(t, artists, 3)
		assert.Equal(t, "artist-001", artists[0].ID)
		assert.Equal(t, "artist-003", artists[2].ID)
	})

	t.Run("strictly after cursor", func(t *testing.T) {
		artists, err := repo.ListAfter(ctx, "artist-003", 3)
		require.NoError(t, err)
		require.Len(t, artists, 2)
		assert.Equal(t, "artist-004", artists[0].ID)
		assert.Equal(t, "artist-005", artists[1].ID)
	})

	t.Run("past the end", func(t *testing.T) {
		artists, err := repo.ListAfter(ctx, "artist-005", 3)
		require.NoError(t, err)
		assert.Empty(t, artists)
	})
}

func TestArtistRepository_ApplyUpdates(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewArtistRepository(testDB.DB)
	ctx := context.Background()

	artist := testutil.CreateTestArtist(1)
	artist.Balance = 10.5
	require.NoError(t, repo.Create(ctx, artist))

	updatedSongs := make([]models.Song, len(artist.Songs))
	copy(updatedSongs, artist.Songs)
	updatedSongs[0].Streams = 72
	updatedSongs[0].TotalRevenue = 0.216
	updatedSongs[0].LastStreamsAdded = 72

	require.NoError(t, repo.ApplyUpdates(ctx, []*models.ArtistUpdate{{
		ArtistID:          artist.ID,
		Songs:             updatedSongs,
		TotalStreams:      72,
		BalanceDelta:      0.216,
		InspirationLevel:  60,
		EnergyLevel:       60,
		LastProcessedDate: "2024-03-03",
	}}))

	got, err := repo.GetByID(ctx, artist.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, int64(72), got.TotalStreams)
	assert.InDelta(t, 10.716, got.Balance, 1e-9) // balance is credited, not replaced
	assert.Equal(t, 60, got.InspirationLevel)
	assert.Equal(t, 60, got.EnergyLevel)
	require.NotNil(t, got.LastProcessedDate)
	assert.Equal(t, "2024-03-03", *got.LastProcessedDate)
	require.Len(t, got.Songs, 1)
	assert.Equal(t, int64(72), got.Songs[0].Streams)
	assert.InDelta(t, 0.216, got.Songs[0].TotalRevenue, 1e-9)
}

func TestArtistRepository_BatchRollsBackAtomically(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewArtistRepository(testDB.DB)
	require.NoError(t, repo.Create(ctx, testutil.CreateTestArtist(1)))
	require.NoError(t, repo.Create(ctx, testutil.CreateTestArtist(2)))

	factory := NewUnitOfWorkFactory(testDB.DB)
	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	require.NoError(t, uow.ArtistRepository().ApplyUpdates(ctx, []*models.ArtistUpdate{
		{ArtistID: "artist-001", TotalStreams: 100, LastProcessedDate: "2024-03-03"},
		{ArtistID: "artist-002", TotalStreams: 200, LastProcessedDate: "2024-03-03"},
	}))
	require.NoError(t, uow.Rollback())

	// Neither write survived the rollback
	for _, id := range []string{"artist-001", "artist-002"} {
		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Zero(t, got.TotalStreams)
		assert.Nil(t, got.LastProcessedDate)
	}
}

func TestArtistRepository_GetByID_NotFound(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewArtistRepository(testDB.DB)

	got, err := repo.GetByID(context.Background(), "artist-nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}
