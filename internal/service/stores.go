package service

import (
	"log/slog"

	"qa-forum/internal/apperror"
	"qa-forum/internal/models"
)

// TrustStore persists per-student reviewer trust weights
type TrustStore interface {
	SetWeight(studentID, reviewerID uint, weight float64) error
	RemoveWeight(studentID, reviewerID uint) error
	GetWeights(studentID uint) (models.TrustMap, error)
	ListEntries(studentID uint) ([]models.TrustWeight, error)
}

// RoleStore reads and replaces user role sets
type RoleStore interface {
	GetUserRoles(userID uint) ([]string, error)
	CountUsersWithRole(role string) (int, error)
	ReplaceRoles(userID uint, roles []string) error
	ListRoles() ([]models.Role, error)
}

// ReviewerProfileStore manages reviewer profiles
type ReviewerProfileStore interface {
	Exists(userID uint) (bool, error)
	Create(userID uint) error
	GetByUserID(userID uint) (*models.ReviewerProfileWithStats, error)
	List() ([]models.ReviewerProfileWithStats, error)
	UpdateExperience(userID uint, experience string) error
}

// ReviewerRequestStore persists reviewer requests
type ReviewerRequestStore interface {
	FindPending(studentID uint) (*models.ReviewerRequest, error)
	Create(studentID uint) (*models.ReviewerRequest, error)
	UpdateStatus(requestID string, status models.RequestStatus, processedBy uint) (*models.ReviewerRequest, error)
	ListPending() ([]models.ReviewerRequest, error)
	ListByStudent(studentID uint) ([]models.ReviewerRequest, error)
}

// UserStore persists user accounts
type UserStore interface {
	CreateWithRoles(user *models.User, roles []string) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetAll(limit, offset int) ([]models.User, error)
	CountAll() (int, error)
}

// AnswerStore writes questions and answers
type AnswerStore interface {
	CreateQuestion(q *models.Question) error
	CreateAnswer(a *models.Answer) error
	QuestionAuthor(answerID uint) (uint, error)
	SetAccepted(answerID uint, accepted bool) error
}

// ReviewStore writes answer reviews
type ReviewStore interface {
	Create(review *models.Review) error
	GetByID(id uint) (*models.Review, error)
}

// AuditStore records audit log entries
type AuditStore interface {
	Create(entry *models.AuditLog) error
}

// logFault logs persistence failures with context. Expected rejections are not logged.
func logFault(msg string, err error, attrs ...any) {
	if apperror.IsFault(err) {
		slog.Error(msg, append(attrs, "error", err)...)
	}
}
