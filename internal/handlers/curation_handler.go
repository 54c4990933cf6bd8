package handlers

import (
	"net/http"

	"qa-forum/internal/middleware"
	"qa-forum/internal/service"
)

// CurationHandler serves curated answer lists
type CurationHandler struct {
	curationSvc *service.CurationService
}

// NewCurationHandler creates a new curation handler
func NewCurationHandler(curationSvc *service.CurationService) *CurationHandler {
	return &CurationHandler{curationSvc: curationSvc}
}

// ReloadResponse reports the trusted reviewers now cached for the session
type ReloadResponse struct {
	TrustedReviewers []TrustEntry `json:"trusted_reviewers"`
}

// Reload refreshes the caller's cached trusted reviewers from the store
// @Summary Reload trusted reviewers
// @Tags Curation
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ReloadResponse
// @Failure 503 {object} map[string]string "Store unavailable, previous cache kept"
// @Router /curation/reload [post]
func (h *CurationHandler) Reload(w http.ResponseWriter, r *http.Request) {
	studentID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	trust, err := h.curationSvc.Reload(studentID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ReloadResponse{TrustedReviewers: trustEntries(trust)})
}

// Curate returns the answers to a question ranked by the caller's cached trust
// @Summary Curate a question
// @Description Accepted answers come first, then higher scores, then newer answers. Answers without a positive score are left out.
// @Tags Curation
// @Produce json
// @Security BearerAuth
// @Param questionID path int true "Question ID"
// @Success 200 {object} curation.Result
// @Failure 400 {object} map[string]string "Trusted reviewers not loaded"
// @Failure 503 {object} map[string]string "Store unavailable"
// @Router /curation/questions/{questionID} [get]
func (h *CurationHandler) Curate(w http.ResponseWriter, r *http.Request) {
	studentID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	questionID, ok := pathID(r, "questionID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidQuestionID)
		return
	}

	result, err := h.curationSvc.Curate(studentID, questionID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// CheckUpdates reloads trust and curates the last question again
// @Summary Check for updates
// @Tags Curation
// @Produce json
// @Security BearerAuth
// @Success 200 {object} curation.Result
// @Failure 404 {object} map[string]string "No question curated yet"
// @Failure 503 {object} map[string]string "Store unavailable"
// @Router /curation/check-updates [post]
func (h *CurationHandler) CheckUpdates(w http.ResponseWriter, r *http.Request) {
	studentID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	result, err := h.curationSvc.CheckUpdates(studentID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
