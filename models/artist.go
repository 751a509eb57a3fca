package models

import (
	"time"
)

// Song states. Only released songs accrue streams.
const (
	SongStateDraft    = "draft"
	SongStateRecorded = "recorded"
	SongStateReleased = "released"
	SongStateRetired  = "retired"
)

// Song is a sub-record embedded in an artist's catalog.
// Streams and TotalRevenue are server-owned accumulators; everything else
// is set when the song is created or released.
type Song struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	State            string   `json:"state"`
	ReleaseDate      string   `json:"releaseDate,omitempty"` // YYYY-MM-DD
	Quality          *float64 `json:"quality,omitempty"`
	Streams          int64    `json:"streams"`
	TotalRevenue     float64  `json:"totalRevenue"`
	LastStreamsAdded int64    `json:"lastStreamsAdded"`
}

// Artist represents one player record
type Artist struct {
	ID                string     `db:"id"`
	Name              string     `db:"name"`
	FameLevel         int        `db:"fame_level"`
	InspirationLevel  int        `db:"inspiration_level"`
	EnergyLevel       int        `db:"energy_level"` // legacy mirror of InspirationLevel, older clients read this
	Balance           float64    `db:"balance"`
	TotalStreams      int64      `db:"total_streams"`
	Songs             []Song     `db:"songs"`
	LastProcessedDate *string    `db:"last_processed_date"` // YYYY-MM-DD of the last run that touched this artist
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

// ArtistUpdate is the staged write for one artist within a batch.
// Only server-owned fields appear here; client-owned fields are never
// touched by the daily run.
type ArtistUpdate struct {
	ArtistID          string
	Songs             []Song
	TotalStreams      int64
	BalanceDelta      float64
	InspirationLevel  int
	EnergyLevel       int
	LastProcessedDate string
}
