package curation

import (
	"fmt"

	"qa-forum/internal/apperror"
	"qa-forum/internal/models"
)

// Result is one curated view of a question for a student
type Result struct {
	StudentID        uint           `json:"student_id"`
	QuestionID       uint           `json:"question_id"`
	Answers          []ScoredAnswer `json:"answers"`
	TrustedReviewers int            `json:"trusted_reviewers"`
}

// AnswerIDs returns the curated answer IDs in display order
func (r *Result) AnswerIDs() []uint {
	ids := make([]uint, len(r.Answers))
	for i, a := range r.Answers {
		ids[i] = a.ID
	}
	return ids
}

// Session holds one student's cached trust map and the last question curated with it.
// The cache only changes on Reload or CheckUpdates. A Session is not safe for concurrent use.
type Session struct {
	studentID uint
	engine    *Engine
	trust     TrustSource

	cache       models.TrustMap
	ready       bool
	lastCurated uint
	hasCurated  bool
}

// NewSession creates an idle session for a student
func NewSession(studentID uint, engine *Engine, trust TrustSource) *Session {
	return &Session{
		studentID: studentID,
		engine:    engine,
		trust:     trust,
	}
}

// StudentID returns the student the session belongs to
func (s *Session) StudentID() uint {
	return s.studentID
}

// Ready reports whether a trust map has been loaded
func (s *Session) Ready() bool {
	return s.ready
}

// Trust returns a copy of the cached trust map
func (s *Session) Trust() models.TrustMap {
	return s.cache.Clone()
}

// LastCuratedQuestion returns the question of the last successful curation
func (s *Session) LastCuratedQuestion() (uint, bool) {
	return s.lastCurated, s.hasCurated
}

// Reload replaces the cache with the student's persisted weights.
// On failure the previous cache and state are kept.
func (s *Session) Reload() error {
	weights, err := s.trust.GetWeights(s.studentID)
	if err != nil {
		return fmt.Errorf("failed to reload trust weights for student %d: %w", s.studentID, err)
	}
	if weights == nil {
		weights = models.TrustMap{}
	}
	s.cache = weights
	s.ready = true
	return nil
}

// Curate ranks the answers of a question using the cached trust map
func (s *Session) Curate(questionID uint) (*Result, error) {
	if !s.ready {
		return nil, apperror.ErrSessionNotReady
	}

	answers, err := s.engine.Curate(questionID, s.cache)
	if err != nil {
		return nil, err
	}

	s.lastCurated = questionID
	s.hasCurated = true

	return &Result{
		StudentID:        s.studentID,
		QuestionID:       questionID,
		Answers:          answers,
		TrustedReviewers: len(s.cache),
	}, nil
}

// CheckUpdates reloads the trust map and curates the last curated question again
func (s *Session) CheckUpdates() (*Result, error) {
	if !s.hasCurated {
		return nil, apperror.ErrNoCuratedQuestion
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s.Curate(s.lastCurated)
}
