package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"encore/database"
	"encore/models"

	"github.com/jackc/pgx/v5"
)

// ArtistRepository implements the ArtistRepository interface
type ArtistRepository struct {
	q queryable
}

// NewArtistRepository creates a new artist repository
func NewArtistRepository(db *database.DB) *ArtistRepository {
	return &ArtistRepository{q: db.Pool}
}

// newArtistRepositoryWithTx creates a new artist repository with a transaction
func newArtistRepositoryWithTx(tx queryable) *ArtistRepository {
	return &ArtistRepository{q: tx}
}

const artistColumns = `
	id, name, fame_level, inspiration_level, energy_level, balance,
	total_streams, songs, last_processed_date, created_at, updated_at
`

func scanArtist(row pgx.Row) (*models.Artist, error) {
	var artist models.Artist
	var songsJSON []byte

	err := row.Scan(
		&artist.ID,
		&artist.Name,
		&artist.FameLevel,
		&artist.InspirationLevel,
		&artist.EnergyLevel,
		&artist.Balance,
		&artist.TotalStreams,
		&songsJSON,
		&artist.LastProcessedDate,
		&artist.CreatedAt,
		&artist.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(songsJSON) > 0 {
		if err := json.Unmarshal(songsJSON, &artist.Songs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal songs for artist %s: %w", artist.ID, err)
		}
	}

	return &artist, nil
}

// GetByID retrieves an artist by ID
func (r *ArtistRepository) GetByID(ctx context.Context, id string) (*models.Artist, error) {
	query := `SELECT ` + artistColumns + ` FROM artists WHERE id = $1`

	artist, err := scanArtist(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artist %s: %w", id, err)
	}

	return artist, nil
}

// ListAfter returns up to limit artists in ID order, starting strictly after
// the given cursor. The stable total order is what makes the run resumable.
func (r *ArtistRepository) ListAfter(ctx context.Context, cursor string, limit int) ([]*models.Artist, error) {
	query := `SELECT ` + artistColumns + ` FROM artists WHERE id > $1 ORDER BY id LIMIT $2`

	rows, err := r.q.Query(ctx, query, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list artists after %q: %w", cursor, err)
	}
	defer rows.Close()

	var artists []*models.Artist
	for rows.Next() {
		artist, err := scanArtist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artist row: %w", err)
		}
		artists = append(artists, artist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read artist rows: %w", err)
	}

	return artists, nil
}

// ApplyUpdates writes a batch of staged artist updates. Only server-owned
// fields are touched; the balance is credited additively in place.
func (r *ArtistRepository) ApplyUpdates(ctx context.Context, updates []*models.ArtistUpdate) error {
	query := `
		UPDATE artists
		SET songs = $2,
		    total_streams = $3,
		    balance = balance + $4,
		    inspiration_level = $5,
		    energy_level = $6,
		    last_processed_date = $7,
		    updated_at = NOW()
		WHERE id = $1
	`

	for _, u := range updates {
		songsJSON, err := json.Marshal(u.Songs)
		if err != nil {
			return fmt.Errorf("failed to marshal songs for artist %s: %w", u.ArtistID, err)
		}

		if _, err := r.q.Exec(ctx, query,
			u.ArtistID,
			songsJSON,
			u.TotalStreams,
			u.BalanceDelta,
			u.InspirationLevel,
			u.EnergyLevel,
			u.LastProcessedDate,
		); err != nil {
			return fmt.Errorf("failed to update artist %s: %w", u.ArtistID, err)
		}
	}

	return nil
}

// Create inserts a new artist record
func (r *ArtistRepository) Create(ctx context.Context, artist *models.Artist) error {
	songsJSON, err := json.Marshal(artist.Songs)
	if err != nil {
		return fmt.Errorf("failed to marshal songs for artist %s: %w", artist.ID, err)
	}
	if artist.Songs == nil {
		songsJSON = []byte("[]")
	}

	query := `
		INSERT INTO artists
		(id, name, fame_level, inspiration_level, energy_level, balance,
		 total_streams, songs, last_processed_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err = r.q.QueryRow(ctx, query,
		artist.ID,
		artist.Name,
		artist.FameLevel,
		artist.InspirationLevel,
		artist.EnergyLevel,
		artist.Balance,
		artist.TotalStreams,
		songsJSON,
		artist.LastProcessedDate,
	).Scan(&artist.CreatedAt, &artist.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create artist %s: %w", artist.ID, err)
	}

	return nil
}
