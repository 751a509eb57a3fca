package service

import (
	"context"
	"fmt"
	"time"
)

// HoursPerGameDay maps real time onto game time: one real hour is one game day.
const HoursPerGameDay = 1

// gameClockService derives the current game date from the stored
// real-time-to-game-time mapping.
type gameClockService struct {
	clockRepo GameClockRepository
	now       func() time.Time
}

// NewGameClockService creates a new game clock service
func NewGameClockService(clockRepo GameClockRepository) GameClock {
	return &gameClockService{clockRepo: clockRepo, now: time.Now}
}

// CurrentGameDate returns the current in-game calendar date as YYYY-MM-DD
func (s *gameClockService) CurrentGameDate(ctx context.Context) (string, error) {
	clock, err := s.clockRepo.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load game clock: %w", err)
	}
	if clock == nil {
		return "", fmt.Errorf("game clock is not configured")
	}

	elapsed := s.now().UTC().Sub(clock.RealWorldStart)
	if elapsed < 0 {
		elapsed = 0
	}

	gameDays := int(elapsed.Hours()) / HoursPerGameDay
	gameDate := clock.GameWorldStart.UTC().AddDate(0, 0, gameDays)

	return gameDate.Format(dateLayout), nil
}
