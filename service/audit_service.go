package service

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// auditService appends operational events to the durable audit trail.
// Best-effort: an audit failure is logged and swallowed, it never fails
// the operation being audited.
type auditService struct {
	auditRepo AuditLogRepository
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo AuditLogRepository) AuditLogger {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) Log(ctx context.Context, action string, details map[string]any) {
	if err := s.auditRepo.Append(ctx, action, details); err != nil {
		log.WithField("action", action).Warnf("Failed to append audit log: %v", err)
	}
}
