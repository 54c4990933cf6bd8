package models

import (
	"time"
)

// RequestStatus is the state of a reviewer request
type RequestStatus string

const (
	RequestPending  RequestStatus = "Pending"
	RequestApproved RequestStatus = "Approved"
	RequestRejected RequestStatus = "Rejected"
)

// IsTerminal reports whether the status can no longer change
func (s RequestStatus) IsTerminal() bool {
	return s == RequestApproved || s == RequestRejected
}

// ReviewerRequest represents a student's request to become a reviewer
type ReviewerRequest struct {
	ID          string        `json:"id" db:"id"`
	StudentID   uint          `json:"student_id" db:"student_id"`
	Status      RequestStatus `json:"status" db:"status"`
	RequestedAt time.Time     `json:"requested_at" db:"requested_at"`
	ProcessedAt *time.Time    `json:"processed_at,omitempty" db:"processed_at"`
	ProcessedBy *uint         `json:"processed_by,omitempty" db:"processed_by"`
}

// ReviewerProfile is the secondary record kept for users holding the reviewer role
type ReviewerProfile struct {
	UserID     uint      `json:"user_id" db:"user_id"`
	Name       string    `json:"name" db:"name"`
	Experience string    `json:"experience" db:"experience"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// ReviewerProfileWithStats extends ReviewerProfile with review activity
type ReviewerProfileWithStats struct {
	ReviewerProfile
	ReviewCount int `json:"review_count" db:"review_count"`
}
