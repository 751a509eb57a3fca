package models

import (
	"time"
)

// AuditLog is an append-only operational record
type AuditLog struct {
	ID        int64          `db:"id" json:"id"`
	Action    string         `db:"action" json:"action"`
	Details   map[string]any `db:"details" json:"details"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
}
