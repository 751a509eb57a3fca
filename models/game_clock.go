package models

import (
	"time"
)

// GameClock maps real time onto game time. One real hour is one game day.
type GameClock struct {
	RealWorldStart time.Time `db:"real_world_start"`
	GameWorldStart time.Time `db:"game_world_start"`
}
