package testutil

import (
	"fmt"

	"encore/models"
)

// CreateTestArtist builds an artist fixture with one released song
func CreateTestArtist(n int) *models.Artist {
	quality := 80.0
	return &models.Artist{
		ID:               fmt.Sprintf("artist-%03d", n),
		Name:             fmt.Sprintf("Artist %d", n),
		FameLevel:        0,
		InspirationLevel: 50,
		EnergyLevel:      50,
		Songs: []models.Song{{
			ID:          fmt.Sprintf("song-%03d", n),
			Title:       fmt.Sprintf("Single %d", n),
			State:       models.SongStateReleased,
			ReleaseDate: "2024-03-01",
			Quality:     &quality,
		}},
	}
}
