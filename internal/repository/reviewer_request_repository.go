package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"qa-forum/internal/apperror"
	"qa-forum/internal/models"
)

// ReviewerRequestRepository handles reviewer request database operations
type ReviewerRequestRepository struct {
	db *sql.DB
}

// NewReviewerRequestRepository creates a new reviewer request repository
func NewReviewerRequestRepository(db *sql.DB) *ReviewerRequestRepository {
	return &ReviewerRequestRepository{db: db}
}

const requestColumns = `id, student_id, status, requested_at, processed_at, processed_by`

func scanRequest(row interface{ Scan(...any) error }, req *models.ReviewerRequest) error {
	return row.Scan(&req.ID, &req.StudentID, &req.Status, &req.RequestedAt, &req.ProcessedAt, &req.ProcessedBy)
}

// Create stores a new pending request for a student.
// A second pending request for the same student violates the partial unique index.
func (r *ReviewerRequestRepository) Create(studentID uint) (*models.ReviewerRequest, error) {
	req := &models.ReviewerRequest{
		ID:          uuid.NewString(),
		StudentID:   studentID,
		Status:      models.RequestPending,
		RequestedAt: time.Now(),
	}

	query := `
		INSERT INTO reviewer_requests (id, student_id, status, requested_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.db.Exec(query, req.ID, req.StudentID, req.Status, req.RequestedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.ErrPendingRequest
		}
		if isForeignKeyViolation(err) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Unavailable("create reviewer request", err)
	}

	return req, nil
}

// FindPending returns the pending request of a student, or nil if there is none
func (r *ReviewerRequestRepository) FindPending(studentID uint) (*models.ReviewerRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM reviewer_requests WHERE student_id = $1 AND status = $2`

	req := &models.ReviewerRequest{}
	err := scanRequest(r.db.QueryRow(query, studentID, models.RequestPending), req)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Unavailable("find pending reviewer request", err)
	}

	return req, nil
}

// UpdateStatus moves a pending request to a terminal status.
// It returns ErrRequestNotFound when the request is no longer pending.
func (r *ReviewerRequestRepository) UpdateStatus(requestID string, status models.RequestStatus, processedBy uint) (*models.ReviewerRequest, error) {
	query := `
		UPDATE reviewer_requests
		SET status = $1, processed_at = $2, processed_by = $3
		WHERE id = $4 AND status = $5
		RETURNING ` + requestColumns

	req := &models.ReviewerRequest{}
	err := scanRequest(r.db.QueryRow(query, status, time.Now(), processedBy, requestID, models.RequestPending), req)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrRequestNotFound
	}
	if err != nil {
		return nil, apperror.Unavailable("update reviewer request", err)
	}

	return req, nil
}

// ListPending returns all pending requests, oldest first
func (r *ReviewerRequestRepository) ListPending() ([]models.ReviewerRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM reviewer_requests WHERE status = $1 ORDER BY requested_at, id`
	return r.list("list pending reviewer requests", query, models.RequestPending)
}

// ListByStudent returns every request of a student, newest first
func (r *ReviewerRequestRepository) ListByStudent(studentID uint) ([]models.ReviewerRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM reviewer_requests WHERE student_id = $1 ORDER BY requested_at DESC, id`
	return r.list("list reviewer requests", query, studentID)
}

func (r *ReviewerRequestRepository) list(op, query string, args ...any) ([]models.ReviewerRequest, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, apperror.Unavailable(op, err)
	}
	defer rows.Close()

	var requests []models.ReviewerRequest
	for rows.Next() {
		var req models.ReviewerRequest
		if err := scanRequest(rows, &req); err != nil {
			return nil, apperror.Unavailable("scan reviewer request", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Unavailable(op, err)
	}

	return requests, nil
}
