package service

import (
	"fmt"
	"log/slog"
	"strings"

	"qa-forum/internal/apperror"
	"qa-forum/internal/models"
)

// Forum audit actions
const (
	ActionAnswerAccepted   = "answer.accept"
	ActionAnswerUnaccepted = "answer.unaccept"
)

// ForumService posts questions, answers and reviews
type ForumService struct {
	answers AnswerStore
	reviews ReviewStore
	audit   *AuditService
}

// NewForumService creates a new forum service
func NewForumService(answers AnswerStore, reviews ReviewStore, audit *AuditService) *ForumService {
	return &ForumService{
		answers: answers,
		reviews: reviews,
		audit:   audit,
	}
}

// PostQuestion stores a new question
func (s *ForumService) PostQuestion(authorID uint, title, content string) (*models.Question, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.Invalid("title is required")
	}

	q := &models.Question{Title: title, Content: strings.TrimSpace(content), AuthorID: authorID}
	if err := s.answers.CreateQuestion(q); err != nil {
		logFault("Failed to create question", err, "author_id", authorID)
		return nil, err
	}
	return q, nil
}

// PostAnswer stores a new answer to a question
func (s *ForumService) PostAnswer(questionID, authorID uint, content string) (*models.Answer, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.Invalid("answer cannot be empty")
	}

	a := &models.Answer{QuestionID: questionID, AuthorID: authorID, Content: content}
	if err := s.answers.CreateAnswer(a); err != nil {
		logFault("Failed to create answer", err, "question_id", questionID, "author_id", authorID)
		return nil, err
	}
	return a, nil
}

// ReviewAnswer stores a review of an answer. A revision is a new review whose
// parent is an earlier review of the same answer by the same reviewer.
func (s *ForumService) ReviewAnswer(answerID, reviewerID uint, content string, parentID *uint) (*models.Review, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.Invalid("review cannot be empty")
	}

	if parentID != nil {
		parent, err := s.reviews.GetByID(*parentID)
		if err != nil {
			logFault("Failed to load parent review", err, "review_id", *parentID)
			return nil, err
		}
		if parent.ReviewerID != reviewerID {
			return nil, apperror.ErrNotReviewAuthor
		}
		if parent.AnswerID != answerID {
			return nil, apperror.Invalid("review %d belongs to another answer", *parentID)
		}
	}

	review := &models.Review{AnswerID: answerID, ReviewerID: reviewerID, Content: content, ParentReviewID: parentID}
	if err := s.reviews.Create(review); err != nil {
		logFault("Failed to create review", err, "answer_id", answerID, "reviewer_id", reviewerID)
		return nil, err
	}

	slog.Info("Answer reviewed", "answer_id", answerID, "reviewer_id", reviewerID, "review_id", review.ID)
	return review, nil
}

// SetAccepted marks or unmarks an answer as accepted. Only the author of the
// question may do so.
func (s *ForumService) SetAccepted(answerID, studentID uint, accepted bool) error {
	authorID, err := s.answers.QuestionAuthor(answerID)
	if err != nil {
		logFault("Failed to load question author", err, "answer_id", answerID)
		return err
	}
	if authorID != studentID {
		return apperror.ErrNotQuestionAuthor
	}

	if err := s.answers.SetAccepted(answerID, accepted); err != nil {
		logFault("Failed to update answer", err, "answer_id", answerID)
		return err
	}

	action := ActionAnswerAccepted
	if !accepted {
		action = ActionAnswerUnaccepted
	}
	s.audit.Log(studentID, action, fmt.Sprintf("answers/%d", answerID), "")
	return nil
}
