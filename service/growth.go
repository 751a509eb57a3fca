package service

import (
	"math"
	"time"

	"encore/models"
)

// Growth tuning constants
const (
	// DefaultSongQuality is assumed when a song has no quality score
	DefaultSongQuality = 50.0

	// DailyDecayRate is the per-day linear falloff of a song's draw
	DailyDecayRate = 0.05

	// DecayFloor keeps an old song at 10% of its base draw forever
	DecayFloor = 0.1

	// FameBonusDivisor converts fame level into a stream multiplier
	FameBonusDivisor = 1000.0

	// MaxDailyStreams is the anti-runaway ceiling per song per day
	MaxDailyStreams = 50_000_000

	// RevenuePerStream is the fixed payout rate per stream
	RevenuePerStream = 0.003
)

const dateLayout = "2006-01-02"

// CalculateSongGrowth computes one song's stream and revenue deltas for a
// single game day. Pure: the current date is a parameter, never read from
// the environment.
//
// Only released songs with a valid release date accrue streams. Streams
// decay linearly with the song's age down to a floor, and the owning
// artist's fame adds a multiplicative bonus.
func CalculateSongGrowth(song *models.Song, fameLevel int, currentDate string) (int64, float64) {
	if song.State != models.SongStateReleased || song.ReleaseDate == "" {
		return 0, 0
	}

	released, err := time.Parse(dateLayout, song.ReleaseDate)
	if err != nil {
		return 0, 0
	}
	current, err := time.Parse(dateLayout, currentDate)
	if err != nil {
		return 0, 0
	}

	daysElapsed := int(math.Floor(current.Sub(released).Hours() / 24))
	if daysElapsed < 0 {
		// Future-dated release, nothing to accrue yet
		return 0, 0
	}

	baseStreams := DefaultSongQuality
	if song.Quality != nil {
		baseStreams = *song.Quality
	}

	decayFactor := math.Max(DecayFloor, 1-DailyDecayRate*float64(daysElapsed))
	fameBonus := 1 + float64(fameLevel)/FameBonusDivisor

	streams := int64(math.Floor(baseStreams * decayFactor * fameBonus))
	if streams < 0 {
		streams = 0
	}
	if streams > MaxDailyStreams {
		streams = MaxDailyStreams
	}

	return streams, float64(streams) * RevenuePerStream
}
