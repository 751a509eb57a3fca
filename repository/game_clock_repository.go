package repository

import (
	"context"
	"fmt"

	"encore/database"
	"encore/models"

	"github.com/jackc/pgx/v5"
)

// GameClockRepository implements the GameClockRepository interface
type GameClockRepository struct {
	db *database.DB
}

// NewGameClockRepository creates a new game clock repository
func NewGameClockRepository(db *database.DB) *GameClockRepository {
	return &GameClockRepository{db: db}
}

// Get retrieves the clock mapping, or nil if none is configured
func (r *GameClockRepository) Get(ctx context.Context) (*models.GameClock, error) {
	query := `SELECT real_world_start, game_world_start FROM game_clock WHERE id = 1`

	var clock models.GameClock
	err := r.db.QueryRow(ctx, query).Scan(&clock.RealWorldStart, &clock.GameWorldStart)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game clock: %w", err)
	}

	return &clock, nil
}

// Set inserts or replaces the clock mapping. Runs in a transaction so a
// concurrent reader never observes a half-written mapping.
func (r *GameClockRepository) Set(ctx context.Context, clock *models.GameClock) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO game_clock (id, real_world_start, game_world_start)
			VALUES (1, $1, $2)
			ON CONFLICT (id) DO UPDATE SET
				real_world_start = EXCLUDED.real_world_start,
				game_world_start = EXCLUDED.game_world_start
		`
		if _, err := tx.Exec(ctx, query, clock.RealWorldStart, clock.GameWorldStart); err != nil {
			return fmt.Errorf("failed to set game clock: %w", err)
		}
		return nil
	})
}
