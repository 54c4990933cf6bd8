package handlers

import (
	"net/http"
	"strconv"

	"qa-forum/internal/models"
)

// AuditLister reads audit entries
type AuditLister interface {
	ListByResource(resource string, limit int) ([]models.AuditLog, error)
}

// AuditHandler handles audit log requests
type AuditHandler struct {
	audit AuditLister
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(audit AuditLister) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// ListAuditLogs lists the newest audit entries for one resource (admin only)
// @Summary List audit logs
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param resource query string true "Resource, e.g. users/12"
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {array} models.AuditLog
// @Failure 400 {object} map[string]string "Missing resource"
// @Failure 403 {object} map[string]string "Forbidden - admin only"
// @Router /admin/audit-logs [get]
func (h *AuditHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	resource := r.URL.Query().Get("resource")
	if resource == "" {
		respondWithError(w, http.StatusBadRequest, ErrMsgResourceRequired)
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	logs, err := h.audit.ListByResource(resource, limit)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, logs)
}
