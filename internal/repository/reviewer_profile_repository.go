package repository

import (
	"database/sql"
	"errors"
	"time"

	"qa-forum/internal/apperror"
	"qa-forum/internal/models"
)

// ReviewerProfileRepository handles reviewer profile database operations
type ReviewerProfileRepository struct {
	db *sql.DB
}

// NewReviewerProfileRepository creates a new reviewer profile repository
func NewReviewerProfileRepository(db *sql.DB) *ReviewerProfileRepository {
	return &ReviewerProfileRepository{db: db}
}

// Exists reports whether a user already has a reviewer profile
func (r *ReviewerProfileRepository) Exists(userID uint) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM reviewer_profiles WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, apperror.Unavailable("check reviewer profile", err)
	}
	return exists, nil
}

// Create creates a reviewer profile, copying the display name from the user
func (r *ReviewerProfileRepository) Create(userID uint) error {
	query := `
		INSERT INTO reviewer_profiles (user_id, name, experience, created_at, updated_at)
		SELECT id, name, '', $2, $2 FROM users WHERE id = $1
		ON CONFLICT (user_id) DO NOTHING
	`

	if _, err := r.db.Exec(query, userID, time.Now()); err != nil {
		return apperror.Unavailable("create reviewer profile", err)
	}
	return nil
}

// GetByUserID retrieves a reviewer profile with its review count
func (r *ReviewerProfileRepository) GetByUserID(userID uint) (*models.ReviewerProfileWithStats, error) {
	query := `
		SELECT p.user_id, p.name, p.experience, p.created_at, p.updated_at,
		       (SELECT COUNT(*) FROM answer_reviews ar WHERE ar.reviewer_id = p.user_id)
		FROM reviewer_profiles p
		WHERE p.user_id = $1
	`

	profile := &models.ReviewerProfileWithStats{}
	err := r.db.QueryRow(query, userID).Scan(
		&profile.UserID,
		&profile.Name,
		&profile.Experience,
		&profile.CreatedAt,
		&profile.UpdatedAt,
		&profile.ReviewCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrProfileNotFound
	}
	if err != nil {
		return nil, apperror.Unavailable("get reviewer profile", err)
	}

	return profile, nil
}

// List returns every reviewer profile ordered by name
func (r *ReviewerProfileRepository) List() ([]models.ReviewerProfileWithStats, error) {
	query := `
		SELECT p.user_id, p.name, p.experience, p.created_at, p.updated_at,
		       (SELECT COUNT(*) FROM answer_reviews ar WHERE ar.reviewer_id = p.user_id)
		FROM reviewer_profiles p
		ORDER BY p.name, p.user_id
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, apperror.Unavailable("list reviewer profiles", err)
	}
	defer rows.Close()

	var profiles []models.ReviewerProfileWithStats
	for rows.Next() {
		var p models.ReviewerProfileWithStats
		if err := rows.Scan(&p.UserID, &p.Name, &p.Experience, &p.CreatedAt, &p.UpdatedAt, &p.ReviewCount); err != nil {
			return nil, apperror.Unavailable("scan reviewer profile", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Unavailable("list reviewer profiles", err)
	}

	return profiles, nil
}

// UpdateExperience replaces the experience text of a profile
func (r *ReviewerProfileRepository) UpdateExperience(userID uint, experience string) error {
	result, err := r.db.Exec(
		`UPDATE reviewer_profiles SET experience = $1, updated_at = $2 WHERE user_id = $3`,
		experience, time.Now(), userID,
	)
	if err != nil {
		return apperror.Unavailable("update reviewer experience", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperror.Unavailable("update reviewer experience", err)
	}
	if affected == 0 {
		return apperror.ErrProfileNotFound
	}

	return nil
}
