package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"qa-forum/internal/apperror"
	"qa-forum/internal/auth"
	"qa-forum/internal/config"
	"qa-forum/internal/curation"
	"qa-forum/internal/middleware"
	"qa-forum/internal/models"
	"qa-forum/internal/service"
)

// memStore backs every store interface with maps
type memStore struct {
	users    map[uint]*models.User
	roles    map[uint][]string
	trust    map[uint]models.TrustMap
	profiles map[uint]*models.ReviewerProfileWithStats
	requests []*models.ReviewerRequest
	audit    []models.AuditLog
	answers  map[uint][]models.Answer
	reviews  map[uint][]models.Review
	qs       map[uint]models.Question

	nextUserID  uint
	nextForumID uint
	trustDown   bool
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uint]*models.User),
		roles:    make(map[uint][]string),
		trust:    make(map[uint]models.TrustMap),
		profiles: make(map[uint]*models.ReviewerProfileWithStats),
		answers:  make(map[uint][]models.Answer),
		reviews:  make(map[uint][]models.Review),
		qs:       make(map[uint]models.Question),
	}
}

func (m *memStore) Create(user *models.User) error {
	for _, u := range m.users {
		if u.Username == user.Username {
			return apperror.ErrUsernameTaken
		}
	}
	m.nextUserID++
	user.ID = m.nextUserID
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *memStore) CreateWithRoles(user *models.User, roles []string) error {
	for _, role := range roles {
		if !models.IsKnownRole(role) {
			return fmt.Errorf("%w: %s", apperror.ErrUnknownRole, role)
		}
	}
	if err := m.Create(user); err != nil {
		return err
	}
	m.roles[user.ID] = slices.Clone(roles)
	return nil
}

func (m *memStore) GetAll(limit, offset int) ([]models.User, error) {
	var out []models.User
	for id := uint(1); id <= m.nextUserID; id++ {
		if u, ok := m.users[id]; ok {
			out = append(out, *u)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	return out[offset:min(offset+limit, len(out))], nil
}

func (m *memStore) GetByID(id uint) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		out := *u
		return &out, nil
	}
	return nil, apperror.ErrUserNotFound
}

func (m *memStore) GetByUsername(username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, apperror.ErrUserNotFound
}

func (m *memStore) CountAll() (int, error) { return len(m.users), nil }

func (m *memStore) GetUserRoles(userID uint) ([]string, error) {
	if _, ok := m.users[userID]; !ok {
		return nil, apperror.ErrUserNotFound
	}
	return slices.Clone(m.roles[userID]), nil
}

func (m *memStore) CountUsersWithRole(role string) (int, error) {
	n := 0
	for _, roles := range m.roles {
		if slices.Contains(roles, role) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ReplaceRoles(userID uint, roles []string) error {
	if _, ok := m.users[userID]; !ok {
		return apperror.ErrUserNotFound
	}
	m.roles[userID] = slices.Clone(roles)
	return nil
}

func (m *memStore) ListRoles() ([]models.Role, error) {
	var out []models.Role
	for i, name := range models.KnownRoles {
		out = append(out, models.Role{ID: uint(i + 1), Name: name})
	}
	return out, nil
}

func (m *memStore) AnswersForQuestion(questionID uint) ([]models.Answer, error) {
	return m.answers[questionID], nil
}

func (m *memStore) ReviewsForAnswer(answerID uint) ([]models.Review, error) {
	return m.reviews[answerID], nil
}

type trustStore struct{ *memStore }

func (t trustStore) SetWeight(studentID, reviewerID uint, weight float64) error {
	if t.trustDown {
		return apperror.Unavailable("set trust weight", fmt.Errorf("connection refused"))
	}
	if _, ok := t.users[reviewerID]; !ok {
		return apperror.ErrUserNotFound
	}
	if t.trust[studentID] == nil {
		t.trust[studentID] = models.TrustMap{}
	}
	t.trust[studentID][reviewerID] = weight
	return nil
}

func (t trustStore) RemoveWeight(studentID, reviewerID uint) error {
	if _, ok := t.trust[studentID][reviewerID]; !ok {
		return apperror.ErrTrustNotFound
	}
	delete(t.trust[studentID], reviewerID)
	return nil
}

func (t trustStore) GetWeights(studentID uint) (models.TrustMap, error) {
	if t.trustDown {
		return nil, apperror.Unavailable("get trust weights", fmt.Errorf("connection refused"))
	}
	return t.trust[studentID].Clone(), nil
}

func (t trustStore) ListEntries(studentID uint) ([]models.TrustWeight, error) {
	if t.trustDown {
		return nil, apperror.Unavailable("list trust entries", fmt.Errorf("connection refused"))
	}
	entries := t.trust[studentID].Entries(studentID)
	slices.SortFunc(entries, func(a, b models.TrustWeight) int {
		switch {
		case a.Weight > b.Weight:
			return -1
		case a.Weight < b.Weight:
			return 1
		}
		return int(a.ReviewerID) - int(b.ReviewerID)
	})
	return entries, nil
}

// answerStore writes into the same maps the curation engine reads
type answerStore struct{ *memStore }

func (a answerStore) CreateQuestion(q *models.Question) error {
	a.nextForumID++
	q.ID = a.nextForumID
	q.CreatedAt = time.Now()
	a.qs[q.ID] = *q
	return nil
}

func (a answerStore) CreateAnswer(ans *models.Answer) error {
	if _, ok := a.qs[ans.QuestionID]; !ok {
		return apperror.ErrQuestionNotFound
	}
	a.nextForumID++
	ans.ID = a.nextForumID
	ans.CreatedAt = time.Now()
	a.answers[ans.QuestionID] = append(a.answers[ans.QuestionID], *ans)
	return nil
}

func (a answerStore) find(answerID uint) (*models.Answer, bool) {
	for qid := range a.answers {
		for i := range a.answers[qid] {
			if a.answers[qid][i].ID == answerID {
				return &a.answers[qid][i], true
			}
		}
	}
	return nil, false
}

func (a answerStore) QuestionAuthor(answerID uint) (uint, error) {
	ans, ok := a.find(answerID)
	if !ok {
		return 0, apperror.ErrAnswerNotFound
	}
	return a.qs[ans.QuestionID].AuthorID, nil
}

func (a answerStore) SetAccepted(answerID uint, accepted bool) error {
	ans, ok := a.find(answerID)
	if !ok {
		return apperror.ErrAnswerNotFound
	}
	ans.IsAccepted = accepted
	return nil
}

type reviewStore struct{ *memStore }

func (r reviewStore) Create(review *models.Review) error {
	if _, ok := (answerStore{r.memStore}).find(review.AnswerID); !ok {
		return apperror.ErrAnswerNotFound
	}
	r.nextForumID++
	review.ID = r.nextForumID
	review.CreatedAt = time.Now()
	r.reviews[review.AnswerID] = append(r.reviews[review.AnswerID], *review)
	return nil
}

func (r reviewStore) GetByID(id uint) (*models.Review, error) {
	for _, list := range r.reviews {
		for _, review := range list {
			if review.ID == id {
				out := review
				return &out, nil
			}
		}
	}
	return nil, apperror.ErrReviewNotFound
}

type profileStore struct{ *memStore }

func (p profileStore) Exists(userID uint) (bool, error) {
	_, ok := p.profiles[userID]
	return ok, nil
}

func (p profileStore) Create(userID uint) error {
	if _, ok := p.profiles[userID]; !ok {
		p.profiles[userID] = &models.ReviewerProfileWithStats{
			ReviewerProfile: models.ReviewerProfile{UserID: userID, Name: p.users[userID].Name},
		}
	}
	return nil
}

func (p profileStore) GetByUserID(userID uint) (*models.ReviewerProfileWithStats, error) {
	if profile, ok := p.profiles[userID]; ok {
		out := *profile
		return &out, nil
	}
	return nil, apperror.ErrProfileNotFound
}

func (p profileStore) List() ([]models.ReviewerProfileWithStats, error) {
	var out []models.ReviewerProfileWithStats
	for _, profile := range p.profiles {
		out = append(out, *profile)
	}
	return out, nil
}

func (p profileStore) UpdateExperience(userID uint, experience string) error {
	profile, ok := p.profiles[userID]
	if !ok {
		return apperror.ErrProfileNotFound
	}
	profile.Experience = experience
	return nil
}

type requestStore struct{ *memStore }

func (r requestStore) FindPending(studentID uint) (*models.ReviewerRequest, error) {
	for _, req := range r.requests {
		if req.StudentID == studentID && req.Status == models.RequestPending {
			out := *req
			return &out, nil
		}
	}
	return nil, nil
}

func (r requestStore) Create(studentID uint) (*models.ReviewerRequest, error) {
	req := &models.ReviewerRequest{
		ID:          fmt.Sprintf("req-%d", len(r.requests)+1),
		StudentID:   studentID,
		Status:      models.RequestPending,
		RequestedAt: time.Now(),
	}
	r.memStore.requests = append(r.memStore.requests, req)
	out := *req
	return &out, nil
}

func (r requestStore) UpdateStatus(requestID string, status models.RequestStatus, processedBy uint) (*models.ReviewerRequest, error) {
	for _, req := range r.requests {
		if req.ID == requestID && req.Status == models.RequestPending {
			now := time.Now()
			req.Status = status
			req.ProcessedAt = &now
			req.ProcessedBy = &processedBy
			out := *req
			return &out, nil
		}
	}
	return nil, apperror.ErrRequestNotFound
}

func (r requestStore) ListPending() ([]models.ReviewerRequest, error) {
	var out []models.ReviewerRequest
	for _, req := range r.requests {
		if req.Status == models.RequestPending {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r requestStore) ListByStudent(studentID uint) ([]models.ReviewerRequest, error) {
	var out []models.ReviewerRequest
	for _, req := range r.requests {
		if req.StudentID == studentID {
			out = append(out, *req)
		}
	}
	return out, nil
}

type auditStore struct{ *memStore }

func (a auditStore) Create(entry *models.AuditLog) error {
	a.audit = append(a.audit, *entry)
	return nil
}

func (a auditStore) ListByResource(resource string, limit int) ([]models.AuditLog, error) {
	var out []models.AuditLog
	for i := len(a.audit) - 1; i >= 0 && len(out) < limit; i-- {
		if a.audit[i].Resource == resource {
			out = append(out, a.audit[i])
		}
	}
	return out, nil
}

type healthy struct{ err error }

func (h healthy) HealthCheck(_ context.Context) error { return h.err }

// testAPI is the full router backed by memStore
type testAPI struct {
	t       *testing.T
	store   *memStore
	tokens  *auth.Service
	handler http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	tokens, err := auth.NewService(&config.JWTConfig{Expiration: time.Hour})
	if err != nil {
		t.Fatalf("Failed to create auth service: %v", err)
	}

	store := newMemStore()
	audit := service.NewAuditService(auditStore{store})
	roles := service.NewRoleService(store, profileStore{store}, audit)
	authSvc := service.NewAuthService(store, roles, tokens, audit)
	trust := trustStore{store}

	rt := &Router{
		Auth:     NewAuthHandler(authSvc, tokens, middleware.NewAuditMiddleware(auditStore{store})),
		Users:    NewUserHandler(authSvc, roles),
		Trust:    NewTrustHandler(service.NewTrustService(trust)),
		Curation: NewCurationHandler(service.NewCurationService(curation.NewEngine(store, store), trust)),
		Reviewer: NewReviewerHandler(
			service.NewReviewerRequestService(requestStore{store}, roles, audit),
			service.NewReviewerProfileService(profileStore{store}),
		),
		Forum:  NewForumHandler(service.NewForumService(answerStore{store}, reviewStore{store}, audit)),
		Audit:  NewAuditHandler(auditStore{store}),
		Health: NewHealthHandler(healthy{}),
		AuthMw: middleware.NewAuthMiddleware(tokens),
		RBACMw: middleware.NewRBACMiddleware(store),
	}

	return &testAPI{t: t, store: store, tokens: tokens, handler: rt.Handler()}
}

// addUser stores a user with a bcrypt hash of "password123"
func (a *testAPI) addUser(username string, roles ...string) uint {
	a.t.Helper()

	hash, err := a.tokens.HashPassword("password123")
	if err != nil {
		a.t.Fatalf("Failed to hash password: %v", err)
	}
	user := &models.User{Username: username, Name: username, PasswordHash: hash}
	if err := a.store.Create(user); err != nil {
		a.t.Fatalf("Failed to create user: %v", err)
	}
	a.store.roles[user.ID] = roles
	return user.ID
}

func (a *testAPI) token(userID uint, activeRole string) string {
	a.t.Helper()

	token, _, err := a.tokens.GenerateToken(userID, a.store.users[userID].Username, activeRole)
	if err != nil {
		a.t.Fatalf("Failed to generate token: %v", err)
	}
	return token
}

// do sends a request through the router. token may be empty.
func (a *testAPI) do(method, path, token, body string) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
	return out
}
