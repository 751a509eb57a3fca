package service

import (
	"fmt"
	"math"

	"encore/models"

	log "github.com/sirupsen/logrus"
)

// Outcome classifies the result of processing one artist
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeErrored   Outcome = "errored"
)

// Inspiration restoration applied once per processed day
const (
	InspirationRecovery = 10
	MaxInspiration      = 100
)

// ArtistBatch accumulates the staged writes and tallies for one batch.
// Everything staged here is committed in a single transaction by the
// batch driver.
type ArtistBatch struct {
	Updates []*models.ArtistUpdate
	Counts  models.RunCounts
}

// ArtistProcessor applies the daily growth computation to one artist,
// staging the resulting update into the batch.
type ArtistProcessor struct {
	calc func(song *models.Song, fameLevel int, currentDate string) (int64, float64)
}

// NewArtistProcessor creates a new artist processor
func NewArtistProcessor() *ArtistProcessor {
	return &ArtistProcessor{calc: CalculateSongGrowth}
}

// Process runs the growth computation for one artist and stages the update
// into the batch. An artist already processed for runDate is skipped. Any
// failure is contained to this artist: a fallback update preserving the
// original songs is staged instead, so one bad record can never block the
// run or lose data.
func (p *ArtistProcessor) Process(artist *models.Artist, runDate string, batch *ArtistBatch) Outcome {
	if artist.LastProcessedDate != nil && *artist.LastProcessedDate == runDate {
		batch.Counts.Skipped++
		return OutcomeSkipped
	}

	update, err := p.buildUpdate(artist, runDate)
	if err != nil {
		log.WithFields(log.Fields{
			"artist_id": artist.ID,
			"run_date":  runDate,
		}).Errorf("Artist processing failed, staging fallback: %v", err)

		// Fallback: keep the songs exactly as they were, but still stamp
		// the date so tomorrow's run is not blocked by this artist.
		batch.Updates = append(batch.Updates, &models.ArtistUpdate{
			ArtistID:          artist.ID,
			Songs:             artist.Songs,
			TotalStreams:      artist.TotalStreams,
			BalanceDelta:      0,
			InspirationLevel:  artist.InspirationLevel,
			EnergyLevel:       artist.EnergyLevel,
			LastProcessedDate: runDate,
		})
		batch.Counts.Errored++
		return OutcomeErrored
	}

	batch.Updates = append(batch.Updates, update)
	batch.Counts.Processed++
	return OutcomeProcessed
}

// buildUpdate computes the staged update for one artist. Panics from corrupt
// records are converted to errors at this boundary.
func (p *ArtistProcessor) buildUpdate(artist *models.Artist, runDate string) (update *models.ArtistUpdate, err error) {
	defer func() {
		if r := recover(); r != nil {
			update = nil
			err = recoveredError(r)
		}
	}()

	songs := make([]models.Song, len(artist.Songs))
	var incomeTotal float64
	var totalStreams int64

	for i := range artist.Songs {
		song := artist.Songs[i]

		if song.State == models.SongStateReleased {
			streams, income := p.calc(&song, artist.FameLevel, runDate)
			song.Streams += streams
			song.TotalRevenue += income
			song.LastStreamsAdded = streams
			incomeTotal += income
		}

		songs[i] = song
		// Full recomputation rather than an increment, so any historical
		// drift in the stored total self-heals here.
		totalStreams += song.Streams
	}

	inspiration := artist.InspirationLevel + InspirationRecovery
	if inspiration > MaxInspiration {
		inspiration = MaxInspiration
	}

	update = &models.ArtistUpdate{
		ArtistID:          artist.ID,
		Songs:             songs,
		TotalStreams:      totalStreams,
		BalanceDelta:      incomeTotal,
		InspirationLevel:  inspiration,
		EnergyLevel:       inspiration,
		LastProcessedDate: runDate,
	}
	sanitizeUpdate(update)
	return update, nil
}

func recoveredError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic during artist processing: %v", r)
}

// sanitizeUpdate replaces NaN and infinite values anywhere in the staged
// payload with zero, so corrupt upstream data never reaches the store.
func sanitizeUpdate(u *models.ArtistUpdate) {
	u.BalanceDelta = sanitizeFloat(u.BalanceDelta)
	for i := range u.Songs {
		u.Songs[i].TotalRevenue = sanitizeFloat(u.Songs[i].TotalRevenue)
		if u.Songs[i].Quality != nil {
			q := sanitizeFloat(*u.Songs[i].Quality)
			u.Songs[i].Quality = &q
		}
	}
}

func sanitizeFloat(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
