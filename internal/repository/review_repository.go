package repository

import (
	"database/sql"
	"errors"
	"time"

	"qa-forum/internal/apperror"
	"qa-forum/internal/models"
)

// ReviewRepository indexes reviews by answer
type ReviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create stores a review. Reviews are never updated in place.
func (r *ReviewRepository) Create(review *models.Review) error {
	query := `
		INSERT INTO answer_reviews (answer_id, reviewer_id, content, parent_review_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRow(query, review.AnswerID, review.ReviewerID, review.Content, review.ParentReviewID, now).Scan(&review.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			switch violatedConstraint(err) {
			case "answer_reviews_parent_review_id_fkey":
				return apperror.ErrReviewNotFound
			case "answer_reviews_reviewer_id_fkey":
				return apperror.ErrUserNotFound
			}
			return apperror.ErrAnswerNotFound
		}
		return apperror.Unavailable("create review", err)
	}

	review.CreatedAt = now
	return nil
}

// ReviewsForAnswer returns all reviews attached to an answer, oldest first
func (r *ReviewRepository) ReviewsForAnswer(answerID uint) ([]models.Review, error) {
	query := `
		SELECT id, answer_id, reviewer_id, content, parent_review_id, created_at
		FROM answer_reviews
		WHERE answer_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.Query(query, answerID)
	if err != nil {
		return nil, apperror.Unavailable("get reviews", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var rv models.Review
		if err := rows.Scan(&rv.ID, &rv.AnswerID, &rv.ReviewerID, &rv.Content, &rv.ParentReviewID, &rv.CreatedAt); err != nil {
			return nil, apperror.Unavailable("scan review", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Unavailable("get reviews", err)
	}

	return reviews, nil
}

// GetByID retrieves a single review
func (r *ReviewRepository) GetByID(id uint) (*models.Review, error) {
	query := `
		SELECT id, answer_id, reviewer_id, content, parent_review_id, created_at
		FROM answer_reviews
		WHERE id = $1
	`

	var rv models.Review
	err := r.db.QueryRow(query, id).Scan(&rv.ID, &rv.AnswerID, &rv.ReviewerID, &rv.Content, &rv.ParentReviewID, &rv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrReviewNotFound
	}
	if err != nil {
		return nil, apperror.Unavailable("get review", err)
	}

	return &rv, nil
}
