package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"encore/database"
	"encore/models"
)

// AuditLogRepository implements the AuditLogRepository interface
type AuditLogRepository struct {
	q queryable
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *database.DB) *AuditLogRepository {
	return &AuditLogRepository{q: db.Pool}
}

// Append durably records one audit entry
func (r *AuditLogRepository) Append(ctx context.Context, action string, details map[string]any) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details for %s: %w", action, err)
	}

	query := `INSERT INTO audit_logs (action, details) VALUES ($1, $2)`
	if _, err := r.q.Exec(ctx, query, action, detailsJSON); err != nil {
		return fmt.Errorf("failed to append audit log %s: %w", action, err)
	}

	return nil
}

// ListRecent returns the most recent entries for an action
func (r *AuditLogRepository) ListRecent(ctx context.Context, action string, limit int) ([]*models.AuditLog, error) {
	query := `
		SELECT id, action, details, created_at
		FROM audit_logs
		WHERE action = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, action, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs for %s: %w", action, err)
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		var entry models.AuditLog
		var detailsJSON []byte
		if err := rows.Scan(&entry.ID, &entry.Action, &detailsJSON, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit log row: %w", err)
		}
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &entry.Details); err != nil {
				return nil, fmt.Errorf("failed to unmarshal audit details: %w", err)
			}
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log rows: %w", err)
	}

	return entries, nil
}
