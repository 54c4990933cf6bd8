package service

import (
	"strings"

	"qa-forum/internal/apperror"
	"qa-forum/internal/models"
)

const maxExperienceLength = 4000

// ReviewerProfileService exposes reviewer profiles
type ReviewerProfileService struct {
	profiles ReviewerProfileStore
}

// NewReviewerProfileService creates a new reviewer profile service
func NewReviewerProfileService(profiles ReviewerProfileStore) *ReviewerProfileService {
	return &ReviewerProfileService{profiles: profiles}
}

// GetProfile returns a reviewer's profile
func (s *ReviewerProfileService) GetProfile(userID uint) (*models.ReviewerProfileWithStats, error) {
	profile, err := s.profiles.GetByUserID(userID)
	if err != nil {
		logFault("Failed to get reviewer profile", err, "user_id", userID)
		return nil, err
	}
	return profile, nil
}

// ListProfiles returns every reviewer profile
func (s *ReviewerProfileService) ListProfiles() ([]models.ReviewerProfileWithStats, error) {
	profiles, err := s.profiles.List()
	if err != nil {
		logFault("Failed to list reviewer profiles", err)
		return nil, err
	}
	return profiles, nil
}

// UpdateExperience replaces the experience text shown on a reviewer's profile
func (s *ReviewerProfileService) UpdateExperience(userID uint, experience string) error {
	experience = strings.TrimSpace(experience)
	if len(experience) > maxExperienceLength {
		return apperror.Invalid("experience must be at most %d characters", maxExperienceLength)
	}

	if err := s.profiles.UpdateExperience(userID, experience); err != nil {
		logFault("Failed to update reviewer experience", err, "user_id", userID)
		return err
	}
	return nil
}
