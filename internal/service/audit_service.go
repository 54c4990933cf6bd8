package service

import (
	"fmt"
	"log/slog"

	"qa-forum/internal/models"
)

// Audit actions
const (
	ActionRolesAssigned    = "user.roles.assign"
	ActionUserCreated      = "user.create"
	ActionRequestSubmitted = "reviewer_request.submit"
	ActionRequestApproved  = "reviewer_request.approve"
	ActionRequestRejected  = "reviewer_request.reject"
)

// AuditService handles audit logging
type AuditService struct {
	store AuditStore
}

// NewAuditService creates a new audit service
func NewAuditService(store AuditStore) *AuditService {
	return &AuditService{store: store}
}

// Log creates an audit log entry. Failures are logged and never fail the caller.
func (s *AuditService) Log(actorID uint, action, resource, details string) {
	if s == nil || s.store == nil {
		return
	}

	entry := &models.AuditLog{
		Action:   action,
		Resource: resource,
		Details:  details,
	}
	if actorID != 0 {
		entry.UserID = &actorID
	}

	if err := s.store.Create(entry); err != nil {
		slog.Warn("Failed to write audit log", "action", action, "resource", resource, "error", err)
	}
}

func userResource(userID uint) string {
	return fmt.Sprintf("users/%d", userID)
}
