package repository

import (
	"database/sql"
	"errors"
	"time"

	"qa-forum/internal/apperror"
	"qa-forum/internal/models"
)

// AnswerRepository reads and writes questions and answers
type AnswerRepository struct {
	db *sql.DB
}

// NewAnswerRepository creates a new answer repository
func NewAnswerRepository(db *sql.DB) *AnswerRepository {
	return &AnswerRepository{db: db}
}

// CreateQuestion creates a new question
func (r *AnswerRepository) CreateQuestion(q *models.Question) error {
	query := `
		INSERT INTO questions (title, content, author_id, is_resolved, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	now := time.Now()
	if err := r.db.QueryRow(query, q.Title, q.Content, q.AuthorID, q.IsResolved, now).Scan(&q.ID); err != nil {
		if isForeignKeyViolation(err) {
			return apperror.ErrUserNotFound
		}
		return apperror.Unavailable("create question", err)
	}

	q.CreatedAt = now
	return nil
}

// CreateAnswer creates a new answer
func (r *AnswerRepository) CreateAnswer(a *models.Answer) error {
	query := `
		INSERT INTO answers (question_id, author_id, content, is_accepted, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	if err := r.db.QueryRow(query, a.QuestionID, a.AuthorID, a.Content, a.IsAccepted, createdAt).Scan(&a.ID); err != nil {
		if isForeignKeyViolation(err) {
			if violatedConstraint(err) == "answers_question_id_fkey" {
				return apperror.ErrQuestionNotFound
			}
			return apperror.ErrUserNotFound
		}
		return apperror.Unavailable("create answer", err)
	}

	a.CreatedAt = createdAt
	return nil
}

// AnswersForQuestion returns every answer posted to a question
func (r *AnswerRepository) AnswersForQuestion(questionID uint) ([]models.Answer, error) {
	query := `
		SELECT id, question_id, author_id, content, is_accepted, created_at
		FROM answers
		WHERE question_id = $1
		ORDER BY id
	`

	rows, err := r.db.Query(query, questionID)
	if err != nil {
		return nil, apperror.Unavailable("get answers", err)
	}
	defer rows.Close()

	var answers []models.Answer
	for rows.Next() {
		var a models.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.AuthorID, &a.Content, &a.IsAccepted, &a.CreatedAt); err != nil {
			return nil, apperror.Unavailable("scan answer", err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Unavailable("get answers", err)
	}

	return answers, nil
}

// QuestionAuthor returns the author of the question an answer belongs to
func (r *AnswerRepository) QuestionAuthor(answerID uint) (uint, error) {
	query := `
		SELECT q.author_id
		FROM answers a
		JOIN questions q ON q.id = a.question_id
		WHERE a.id = $1
	`

	var authorID uint
	err := r.db.QueryRow(query, answerID).Scan(&authorID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperror.ErrAnswerNotFound
	}
	if err != nil {
		return 0, apperror.Unavailable("get question author", err)
	}

	return authorID, nil
}

// SetAccepted marks an answer as accepted or not
func (r *AnswerRepository) SetAccepted(answerID uint, accepted bool) error {
	result, err := r.db.Exec(`UPDATE answers SET is_accepted = $1 WHERE id = $2`, accepted, answerID)
	if err != nil {
		return apperror.Unavailable("update answer", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperror.Unavailable("update answer", err)
	}
	if affected == 0 {
		return apperror.ErrAnswerNotFound
	}

	return nil
}
