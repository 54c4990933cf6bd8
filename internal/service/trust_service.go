package service

import (
	"math"

	"qa-forum/internal/apperror"
	"qa-forum/internal/models"
)

// TrustService manages the reviewers a student trusts
type TrustService struct {
	store TrustStore
}

// NewTrustService creates a new trust service
func NewTrustService(store TrustStore) *TrustService {
	return &TrustService{store: store}
}

// SetTrust sets the weight a student gives a reviewer. Setting the same weight again is a no-op.
func (s *TrustService) SetTrust(studentID, reviewerID uint, weight float64) error {
	if studentID == 0 || reviewerID == 0 {
		return apperror.Invalid("student and reviewer ids are required")
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return apperror.Invalid("weight must be a finite number")
	}

	if err := s.store.SetWeight(studentID, reviewerID, weight); err != nil {
		logFault("Failed to set trust weight", err, "student_id", studentID, "reviewer_id", reviewerID)
		return err
	}
	return nil
}

// RemoveTrust removes a reviewer from a student's trust map
func (s *TrustService) RemoveTrust(studentID, reviewerID uint) error {
	if err := s.store.RemoveWeight(studentID, reviewerID); err != nil {
		logFault("Failed to remove trust weight", err, "student_id", studentID, "reviewer_id", reviewerID)
		return err
	}
	return nil
}

// GetTrust returns a student's persisted trust map
func (s *TrustService) GetTrust(studentID uint) (models.TrustMap, error) {
	weights, err := s.store.GetWeights(studentID)
	if err != nil {
		logFault("Failed to get trust weights", err, "student_id", studentID)
		return nil, err
	}
	return weights, nil
}

// ListTrust returns a student's trust entries, highest weight first
func (s *TrustService) ListTrust(studentID uint) ([]models.TrustWeight, error) {
	entries, err := s.store.ListEntries(studentID)
	if err != nil {
		logFault("Failed to list trust entries", err, "student_id", studentID)
		return nil, err
	}
	return entries, nil
}
