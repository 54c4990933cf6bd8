package service

import (
	"fmt"
	"log/slog"

	"qa-forum/internal/apperror"
	"qa-forum/internal/models"
)

// ReviewerRequestService moves reviewer requests from Pending to Approved or Rejected
type ReviewerRequestService struct {
	requests ReviewerRequestStore
	roles    *RoleService
	audit    *AuditService
}

// NewReviewerRequestService creates a new reviewer request service
func NewReviewerRequestService(requests ReviewerRequestStore, roles *RoleService, audit *AuditService) *ReviewerRequestService {
	return &ReviewerRequestService{
		requests: requests,
		roles:    roles,
		audit:    audit,
	}
}

// Submit opens a reviewer request. A student may only have one pending request.
func (s *ReviewerRequestService) Submit(studentID uint) (*models.ReviewerRequest, error) {
	pending, err := s.requests.FindPending(studentID)
	if err != nil {
		logFault("Failed to look up pending reviewer request", err, "student_id", studentID)
		return nil, err
	}
	if pending != nil {
		return nil, apperror.ErrPendingRequest
	}

	req, err := s.requests.Create(studentID)
	if err != nil {
		logFault("Failed to create reviewer request", err, "student_id", studentID)
		return nil, err
	}

	slog.Info("Reviewer request submitted", "request_id", req.ID, "student_id", studentID)
	s.audit.Log(studentID, ActionRequestSubmitted, requestResource(req.ID), "")

	return req, nil
}

// Process approves or rejects the pending request of a student. Approval grants
// the reviewer role first; if that fails the request stays pending.
func (s *ReviewerRequestService) Process(studentID uint, approve bool, actingInstructorID uint) (*models.ReviewerRequest, error) {
	pending, err := s.requests.FindPending(studentID)
	if err != nil {
		logFault("Failed to look up pending reviewer request", err, "student_id", studentID)
		return nil, err
	}
	if pending == nil {
		return nil, apperror.ErrRequestNotFound
	}

	status := models.RequestRejected
	action := ActionRequestRejected
	if approve {
		if _, err := s.roles.GrantRole(studentID, models.RoleReviewer, actingInstructorID); err != nil {
			slog.Warn("Reviewer request left pending because the role grant failed",
				"request_id", pending.ID,
				"student_id", studentID,
				"error", err,
			)
			return nil, fmt.Errorf("failed to grant reviewer role: %w", err)
		}
		status = models.RequestApproved
		action = ActionRequestApproved
	}

	processed, err := s.requests.UpdateStatus(pending.ID, status, actingInstructorID)
	if err != nil {
		logFault("Failed to update reviewer request", err, "request_id", pending.ID)
		return nil, err
	}

	slog.Info("Reviewer request processed",
		"request_id", processed.ID,
		"student_id", studentID,
		"status", processed.Status,
		"processed_by", actingInstructorID,
	)
	s.audit.Log(actingInstructorID, action, requestResource(processed.ID), userResource(studentID))

	return processed, nil
}

// ListPending returns all pending requests, oldest first
func (s *ReviewerRequestService) ListPending() ([]models.ReviewerRequest, error) {
	requests, err := s.requests.ListPending()
	if err != nil {
		logFault("Failed to list pending reviewer requests", err)
		return nil, err
	}
	return requests, nil
}

// History returns every request of a student, newest first
func (s *ReviewerRequestService) History(studentID uint) ([]models.ReviewerRequest, error) {
	requests, err := s.requests.ListByStudent(studentID)
	if err != nil {
		logFault("Failed to list reviewer requests", err, "student_id", studentID)
		return nil, err
	}
	return requests, nil
}

func requestResource(id string) string {
	return "reviewer_requests/" + id
}
