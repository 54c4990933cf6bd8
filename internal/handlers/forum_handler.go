package handlers

import (
	"net/http"

	"qa-forum/internal/middleware"
	"qa-forum/internal/service"
)

// ForumHandler posts questions, answers and reviews
type ForumHandler struct {
	forumSvc *service.ForumService
}

// NewForumHandler creates a new forum handler
func NewForumHandler(forumSvc *service.ForumService) *ForumHandler {
	return &ForumHandler{forumSvc: forumSvc}
}

// PostQuestionRequest is a new question
type PostQuestionRequest struct {
	Title   string `json:"title" validate:"required,max=500"`
	Content string `json:"content" validate:"max=10000"`
}

// PostAnswerRequest is a new answer
type PostAnswerRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
}

// ReviewAnswerRequest is a review, or a revision of an earlier review when ParentReviewID is set
type ReviewAnswerRequest struct {
	Content        string `json:"content" validate:"required,max=4000"`
	ParentReviewID *uint  `json:"parent_review_id,omitempty" validate:"omitempty,gt=0"`
}

// SetAcceptedRequest marks or unmarks an accepted answer
type SetAcceptedRequest struct {
	Accepted *bool `json:"accepted" validate:"required"`
}

// PostQuestion asks a question
// @Summary Ask a question
// @Tags Forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PostQuestionRequest true "Question"
// @Success 201 {object} models.Question
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /questions [post]
func (h *ForumHandler) PostQuestion(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var req PostQuestionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	q, err := h.forumSvc.PostQuestion(userID, req.Title, req.Content)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, q)
}

// PostAnswer answers a question
// @Summary Answer a question
// @Tags Forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param questionID path int true "Question ID"
// @Param request body PostAnswerRequest true "Answer"
// @Success 201 {object} models.Answer
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Question not found"
// @Router /questions/{questionID}/answers [post]
func (h *ForumHandler) PostAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	questionID, ok := pathID(r, "questionID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidQuestionID)
		return
	}

	var req PostAnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	answer, err := h.forumSvc.PostAnswer(questionID, userID, req.Content)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, answer)
}

// ReviewAnswer reviews an answer
// @Summary Review an answer
// @Description Reviews are never edited in place. A revision is a new review that points at the earlier one.
// @Tags Forum
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param answerID path int true "Answer ID"
// @Param request body ReviewAnswerRequest true "Review"
// @Success 201 {object} models.Review
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Not the author of the parent review"
// @Failure 404 {object} map[string]string "Answer or parent review not found"
// @Router /answers/{answerID}/reviews [post]
func (h *ForumHandler) ReviewAnswer(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	answerID, ok := pathID(r, "answerID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidAnswerID)
		return
	}

	var req ReviewAnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	review, err := h.forumSvc.ReviewAnswer(answerID, reviewerID, req.Content, req.ParentReviewID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, review)
}

// SetAccepted marks an answer to the caller's question as accepted or not
// @Summary Accept an answer
// @Tags Forum
// @Accept json
// @Security BearerAuth
// @Param answerID path int true "Answer ID"
// @Param request body SetAcceptedRequest true "Accepted flag"
// @Success 204
// @Failure 403 {object} map[string]string "Not the question author"
// @Failure 404 {object} map[string]string "Answer not found"
// @Router /answers/{answerID}/accepted [put]
func (h *ForumHandler) SetAccepted(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	answerID, ok := pathID(r, "answerID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidAnswerID)
		return
	}

	var req SetAcceptedRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.forumSvc.SetAccepted(answerID, userID, *req.Accepted); err != nil {
		respondWithServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
