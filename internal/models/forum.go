package models

import (
	"maps"
	"time"
)

// Question represents a forum question
type Question struct {
	ID         uint      `json:"id" db:"id"`
	Title      string    `json:"title" db:"title"`
	Content    string    `json:"content" db:"content"`
	AuthorID   uint      `json:"author_id" db:"author_id"`
	IsResolved bool      `json:"is_resolved" db:"is_resolved"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Answer represents an answer posted to a question
type Answer struct {
	ID         uint      `json:"id" db:"id"`
	QuestionID uint      `json:"question_id" db:"question_id"`
	AuthorID   uint      `json:"author_id" db:"author_id"`
	Content    string    `json:"content" db:"content"`
	IsAccepted bool      `json:"is_accepted" db:"is_accepted"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Review represents a reviewer's review of an answer.
// Edits create a new review pointing at the previous one via ParentReviewID.
type Review struct {
	ID             uint      `json:"id" db:"id"`
	AnswerID       uint      `json:"answer_id" db:"answer_id"`
	ReviewerID     uint      `json:"reviewer_id" db:"reviewer_id"`
	Content        string    `json:"content" db:"content"`
	ParentReviewID *uint     `json:"parent_review_id,omitempty" db:"parent_review_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// TrustWeight is a student's trust in one reviewer
type TrustWeight struct {
	StudentID  uint      `json:"student_id" db:"student_id"`
	ReviewerID uint      `json:"reviewer_id" db:"reviewer_id"`
	Weight     float64   `json:"weight" db:"weight"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// TrustMap maps reviewer IDs to a student's trust weight
type TrustMap map[uint]float64

// Clone returns an independent copy of the map
func (m TrustMap) Clone() TrustMap {
	out := make(TrustMap, len(m))
	maps.Copy(out, m)
	return out
}

// Entries returns the map as a list of weights for the given student
func (m TrustMap) Entries(studentID uint) []TrustWeight {
	entries := make([]TrustWeight, 0, len(m))
	for reviewerID, weight := range m {
		entries = append(entries, TrustWeight{StudentID: studentID, ReviewerID: reviewerID, Weight: weight})
	}
	return entries
}
