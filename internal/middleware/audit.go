package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"qa-forum/internal/models"
)

// AuditWriter stores audit log entries
type AuditWriter interface {
	Create(entry *models.AuditLog) error
}

// AuditMiddleware records security-related HTTP actions with client details
type AuditMiddleware struct {
	store AuditWriter
}

// NewAuditMiddleware creates a new audit middleware
func NewAuditMiddleware(store AuditWriter) *AuditMiddleware {
	return &AuditMiddleware{store: store}
}

// LogAction records an action performed through r. Failures are logged, not returned.
func (m *AuditMiddleware) LogAction(r *http.Request, userID *uint, action, resource, details string) {
	if m == nil {
		return
	}

	entry := &models.AuditLog{
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		Details:   details,
		IPAddress: ClientIP(r),
		UserAgent: r.UserAgent(),
	}

	if err := m.store.Create(entry); err != nil {
		slog.Warn("Failed to write audit log", "action", action, "error", err)
	}
}

// ClientIP returns the originating client address
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}
