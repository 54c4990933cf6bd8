package handlers

import (
	"net/http"
	"sort"

	"qa-forum/internal/middleware"
	"qa-forum/internal/models"
	"qa-forum/internal/service"
)

// TrustHandler manages the caller's trusted reviewers
type TrustHandler struct {
	trustSvc *service.TrustService
}

// NewTrustHandler creates a new trust handler
func NewTrustHandler(trustSvc *service.TrustService) *TrustHandler {
	return &TrustHandler{trustSvc: trustSvc}
}

// SetTrustRequest sets the weight of a trusted reviewer
type SetTrustRequest struct {
	Weight *float64 `json:"weight" validate:"required"`
}

// TrustEntry is one trusted reviewer
type TrustEntry struct {
	ReviewerID uint    `json:"reviewer_id"`
	Weight     float64 `json:"weight"`
}

// GetTrust lists the caller's trusted reviewers, highest weight first
// @Summary List trusted reviewers
// @Tags Trust
// @Produce json
// @Security BearerAuth
// @Success 200 {array} TrustEntry
// @Failure 503 {object} map[string]string "Store unavailable"
// @Router /trust [get]
func (h *TrustHandler) GetTrust(w http.ResponseWriter, r *http.Request) {
	studentID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	weights, err := h.trustSvc.ListTrust(studentID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	entries := make([]TrustEntry, 0, len(weights))
	for _, tw := range weights {
		entries = append(entries, TrustEntry{ReviewerID: tw.ReviewerID, Weight: tw.Weight})
	}
	respondWithJSON(w, http.StatusOK, entries)
}

// SetTrust trusts a reviewer with a weight, replacing any previous weight
// @Summary Trust a reviewer
// @Tags Trust
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param reviewerID path int true "Reviewer user ID"
// @Param request body SetTrustRequest true "Trust weight"
// @Success 200 {object} TrustEntry
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "User not found"
// @Router /trust/{reviewerID} [put]
func (h *TrustHandler) SetTrust(w http.ResponseWriter, r *http.Request) {
	studentID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	reviewerID, ok := pathID(r, "reviewerID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidReviewerID)
		return
	}

	var req SetTrustRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.trustSvc.SetTrust(studentID, reviewerID, *req.Weight); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, TrustEntry{ReviewerID: reviewerID, Weight: *req.Weight})
}

// RemoveTrust stops trusting a reviewer
// @Summary Remove a trusted reviewer
// @Tags Trust
// @Security BearerAuth
// @Param reviewerID path int true "Reviewer user ID"
// @Success 204
// @Failure 404 {object} map[string]string "Reviewer is not trusted"
// @Router /trust/{reviewerID} [delete]
func (h *TrustHandler) RemoveTrust(w http.ResponseWriter, r *http.Request) {
	studentID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	reviewerID, ok := pathID(r, "reviewerID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidReviewerID)
		return
	}

	if err := h.trustSvc.RemoveTrust(studentID, reviewerID); err != nil {
		respondWithServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func trustEntries(trust models.TrustMap) []TrustEntry {
	entries := make([]TrustEntry, 0, len(trust))
	for reviewerID, weight := range trust {
		entries = append(entries, TrustEntry{ReviewerID: reviewerID, Weight: weight})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ReviewerID < entries[j].ReviewerID })
	return entries
}
