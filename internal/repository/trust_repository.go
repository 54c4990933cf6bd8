package repository

import (
	"database/sql"
	"time"

	"qa-forum/internal/apperror"
	"qa-forum/internal/models"
)

// TrustRepository persists per-student reviewer trust weights
type TrustRepository struct {
	db *sql.DB
}

// NewTrustRepository creates a new trust repository
func NewTrustRepository(db *sql.DB) *TrustRepository {
	return &TrustRepository{db: db}
}

// SetWeight inserts or replaces the weight a student gives a reviewer
func (r *TrustRepository) SetWeight(studentID, reviewerID uint, weight float64) error {
	query := `
		INSERT INTO trusted_reviewers (student_id, reviewer_id, weight, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (student_id, reviewer_id)
		DO UPDATE SET weight = EXCLUDED.weight, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.Exec(query, studentID, reviewerID, weight, time.Now()); err != nil {
		if isForeignKeyViolation(err) {
			return apperror.ErrUserNotFound
		}
		return apperror.Unavailable("set trust weight", err)
	}

	return nil
}

// RemoveWeight deletes a student's trust entry for a reviewer
func (r *TrustRepository) RemoveWeight(studentID, reviewerID uint) error {
	query := `DELETE FROM trusted_reviewers WHERE student_id = $1 AND reviewer_id = $2`

	result, err := r.db.Exec(query, studentID, reviewerID)
	if err != nil {
		return apperror.Unavailable("remove trust weight", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperror.Unavailable("remove trust weight", err)
	}
	if affected == 0 {
		return apperror.ErrTrustNotFound
	}

	return nil
}

// GetWeights returns every trust weight of a student keyed by reviewer
func (r *TrustRepository) GetWeights(studentID uint) (models.TrustMap, error) {
	query := `SELECT reviewer_id, weight FROM trusted_reviewers WHERE student_id = $1`

	rows, err := r.db.Query(query, studentID)
	if err != nil {
		return nil, apperror.Unavailable("get trust weights", err)
	}
	defer rows.Close()

	weights := make(models.TrustMap)
	for rows.Next() {
		var reviewerID uint
		var weight float64
		if err := rows.Scan(&reviewerID, &weight); err != nil {
			return nil, apperror.Unavailable("scan trust weight", err)
		}
		weights[reviewerID] = weight
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Unavailable("get trust weights", err)
	}

	return weights, nil
}

// ListEntries returns a student's trust entries ordered by weight
func (r *TrustRepository) ListEntries(studentID uint) ([]models.TrustWeight, error) {
	query := `
		SELECT student_id, reviewer_id, weight, updated_at
		FROM trusted_reviewers
		WHERE student_id = $1
		ORDER BY weight DESC, reviewer_id
	`

	rows, err := r.db.Query(query, studentID)
	if err != nil {
		return nil, apperror.Unavailable("list trust entries", err)
	}
	defer rows.Close()

	var entries []models.TrustWeight
	for rows.Next() {
		var e models.TrustWeight
		if err := rows.Scan(&e.StudentID, &e.ReviewerID, &e.Weight, &e.UpdatedAt); err != nil {
			return nil, apperror.Unavailable("scan trust entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Unavailable("list trust entries", err)
	}

	return entries, nil
}
