package handlers

import (
	"net/http"

	"qa-forum/internal/middleware"
	"qa-forum/internal/service"
)

// ReviewerHandler handles reviewer requests and reviewer profiles
type ReviewerHandler struct {
	requestSvc *service.ReviewerRequestService
	profileSvc *service.ReviewerProfileService
}

// NewReviewerHandler creates a new reviewer handler
func NewReviewerHandler(requestSvc *service.ReviewerRequestService, profileSvc *service.ReviewerProfileService) *ReviewerHandler {
	return &ReviewerHandler{
		requestSvc: requestSvc,
		profileSvc: profileSvc,
	}
}

// ProcessRequestRequest approves or rejects a pending request
type ProcessRequestRequest struct {
	Approve *bool `json:"approve" validate:"required"`
}

// UpdateExperienceRequest updates the caller's reviewer experience text
type UpdateExperienceRequest struct {
	Experience string `json:"experience" validate:"max=4000"`
}

// SubmitRequest files a reviewer request for the caller
// @Summary Request reviewer status
// @Tags Reviewer Requests
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.ReviewerRequest
// @Failure 409 {object} map[string]string "A pending request already exists"
// @Router /reviewer-requests [post]
func (h *ReviewerHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	studentID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	req, err := h.requestSvc.Submit(studentID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, req)
}

// MyRequests lists the caller's reviewer requests, newest first
// @Summary My reviewer requests
// @Tags Reviewer Requests
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ReviewerRequest
// @Router /reviewer-requests/mine [get]
func (h *ReviewerHandler) MyRequests(w http.ResponseWriter, r *http.Request) {
	studentID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	requests, err := h.requestSvc.History(studentID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, requests)
}

// ListPending lists pending reviewer requests, oldest first
// @Summary Pending reviewer requests
// @Tags Reviewer Requests
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ReviewerRequest
// @Failure 403 {object} map[string]string "Forbidden - instructor only"
// @Router /reviewer-requests/pending [get]
func (h *ReviewerHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	requests, err := h.requestSvc.ListPending()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, requests)
}

// ProcessRequest approves or rejects a student's pending request
// @Summary Process a reviewer request
// @Description Approval grants the reviewer role and creates a reviewer profile when missing.
// @Tags Reviewer Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentID path int true "Student user ID"
// @Param request body ProcessRequestRequest true "Decision"
// @Success 200 {object} models.ReviewerRequest
// @Failure 404 {object} map[string]string "No pending request"
// @Router /reviewer-requests/{studentID}/process [post]
func (h *ReviewerHandler) ProcessRequest(w http.ResponseWriter, r *http.Request) {
	instructorID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	studentID, ok := pathID(r, "studentID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidStudentID)
		return
	}

	var req ProcessRequestRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	processed, err := h.requestSvc.Process(studentID, *req.Approve, instructorID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, processed)
}

// ListProfiles lists reviewer profiles with their review counts
// @Summary List reviewers
// @Tags Reviewers
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ReviewerProfileWithStats
// @Router /reviewers [get]
func (h *ReviewerHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profileSvc.ListProfiles()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, profiles)
}

// GetProfile returns one reviewer profile
// @Summary Get reviewer
// @Tags Reviewers
// @Produce json
// @Security BearerAuth
// @Param userID path int true "Reviewer user ID"
// @Success 200 {object} models.ReviewerProfileWithStats
// @Failure 404 {object} map[string]string "Reviewer profile not found"
// @Router /reviewers/{userID} [get]
func (h *ReviewerHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidUserID)
		return
	}

	profile, err := h.profileSvc.GetProfile(userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, profile)
}

// UpdateExperience updates the caller's reviewer experience
// @Summary Update reviewer experience
// @Tags Reviewers
// @Accept json
// @Security BearerAuth
// @Param request body UpdateExperienceRequest true "Experience text"
// @Success 204
// @Failure 404 {object} map[string]string "Reviewer profile not found"
// @Router /reviewers/me/experience [put]
func (h *ReviewerHandler) UpdateExperience(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var req UpdateExperienceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.profileSvc.UpdateExperience(userID, req.Experience); err != nil {
		respondWithServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
