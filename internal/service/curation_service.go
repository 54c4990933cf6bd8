package service

import (
	"sync"

	"qa-forum/internal/curation"
	"qa-forum/internal/models"
)

// CurationService keeps one curation session per student
type CurationService struct {
	engine *curation.Engine
	trust  curation.TrustSource

	// sessions holds one entry per student that has used curation and is
	// never evicted. Each entry is a trust map and a question id, so its size
	// is bounded by the number of student accounts.
	mu       sync.Mutex
	sessions map[uint]*studentSession
}

type studentSession struct {
	mu      sync.Mutex
	session *curation.Session
}

// NewCurationService creates a new curation service
func NewCurationService(engine *curation.Engine, trust curation.TrustSource) *CurationService {
	return &CurationService{
		engine:   engine,
		trust:    trust,
		sessions: make(map[uint]*studentSession),
	}
}

func (s *CurationService) session(studentID uint) *studentSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	ss, ok := s.sessions[studentID]
	if !ok {
		ss = &studentSession{session: curation.NewSession(studentID, s.engine, s.trust)}
		s.sessions[studentID] = ss
	}
	return ss
}

// Reload refreshes the student's cached trust map and returns it
func (s *CurationService) Reload(studentID uint) (models.TrustMap, error) {
	ss := s.session(studentID)
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if err := ss.session.Reload(); err != nil {
		logFault("Failed to reload trusted reviewers", err, "student_id", studentID)
		return nil, err
	}
	return ss.session.Trust(), nil
}

// Curate ranks the answers of a question with the student's cached trust map
func (s *CurationService) Curate(studentID, questionID uint) (*curation.Result, error) {
	ss := s.session(studentID)
	ss.mu.Lock()
	defer ss.mu.Unlock()

	result, err := ss.session.Curate(questionID)
	if err != nil {
		logFault("Failed to curate answers", err, "student_id", studentID, "question_id", questionID)
		return nil, err
	}
	return result, nil
}

// CheckUpdates reloads the trust map and re-curates the last curated question
func (s *CurationService) CheckUpdates(studentID uint) (*curation.Result, error) {
	ss := s.session(studentID)
	ss.mu.Lock()
	defer ss.mu.Unlock()

	result, err := ss.session.CheckUpdates()
	if err != nil {
		logFault("Failed to check curation updates", err, "student_id", studentID)
		return nil, err
	}
	return result, nil
}
