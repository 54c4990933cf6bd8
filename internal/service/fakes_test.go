package service

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"qa-forum/internal/apperror"
	"qa-forum/internal/models"
)

var errDriver = errors.New("connection refused")

// memStore is an in-memory implementation of every store the services use
type memStore struct {
	users    map[uint]*models.User
	roles    map[uint][]string
	profiles map[uint]*models.ReviewerProfileWithStats
	requests []*models.ReviewerRequest
	trust    map[uint]models.TrustMap
	audit    []models.AuditLog
	qs       map[uint]*models.Question
	answers  map[uint]*models.Answer
	reviews  map[uint]*models.Review

	nextUserID    uint
	nextRequestID int
	nextForumID   uint
	clock         time.Time

	failReplaceRoles  bool
	failProfileCreate bool
	failFindPending   bool
	failCount         bool
	failTrust         bool
	failAudit         bool
	failForum         bool
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uint]*models.User),
		roles:    make(map[uint][]string),
		profiles: make(map[uint]*models.ReviewerProfileWithStats),
		trust:    make(map[uint]models.TrustMap),
		qs:       make(map[uint]*models.Question),
		answers:  make(map[uint]*models.Answer),
		reviews:  make(map[uint]*models.Review),
		clock:    time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *memStore) addUser(username string, roles ...string) uint {
	m.nextUserID++
	m.users[m.nextUserID] = &models.User{ID: m.nextUserID, Username: username, Name: username}
	m.roles[m.nextUserID] = roles
	return m.nextUserID
}

// UserStore

// CreateWithRoles stores nothing when the role write fails, like the transaction it stands in for
func (m *memStore) CreateWithRoles(user *models.User, roles []string) error {
	for _, u := range m.users {
		if u.Username == user.Username {
			return apperror.ErrUsernameTaken
		}
	}
	if m.failReplaceRoles {
		return apperror.Unavailable("insert user role", errDriver)
	}
	m.nextUserID++
	user.ID = m.nextUserID
	user.CreatedAt = m.tick()
	user.PrimaryRole = nil
	if len(roles) > 0 {
		primary := roles[0]
		user.PrimaryRole = &primary
	}
	stored := *user
	m.users[user.ID] = &stored
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
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.ErrUserNotFound
	}
	out := *u
	return &out, nil
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

func (m *memStore) CountAll() (int, error) {
	if m.failCount {
		return 0, apperror.Unavailable("count all users", errDriver)
	}
	return len(m.users), nil
}

// RoleStore

func (m *memStore) GetUserRoles(userID uint) ([]string, error) {
	if _, ok := m.users[userID]; !ok {
		return nil, apperror.ErrUserNotFound
	}
	return slices.Clone(m.roles[userID]), nil
}

func (m *memStore) CountUsersWithRole(role string) (int, error) {
	if m.failCount {
		return 0, apperror.Unavailable("count users with role", errDriver)
	}
	n := 0
	for _, roles := range m.roles {
		if slices.Contains(roles, role) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ReplaceRoles(userID uint, roles []string) error {
	if m.failReplaceRoles {
		return apperror.Unavailable("begin role transaction", errDriver)
	}
	u, ok := m.users[userID]
	if !ok {
		return apperror.ErrUserNotFound
	}
	m.roles[userID] = slices.Clone(roles)
	if len(roles) > 0 {
		primary := roles[0]
		u.PrimaryRole = &primary
	} else {
		u.PrimaryRole = nil
	}
	return nil
}

func (m *memStore) ListRoles() ([]models.Role, error) {
	if m.failCount {
		return nil, apperror.Unavailable("get roles", errDriver)
	}
	out := make([]models.Role, 0, len(models.KnownRoles))
	for i, name := range models.KnownRoles {
		out = append(out, models.Role{ID: uint(i + 1), Name: name})
	}
	return out, nil
}

// ReviewerProfileStore

type profileStore struct{ *memStore }

func (p profileStore) Exists(userID uint) (bool, error) {
	_, ok := p.profiles[userID]
	return ok, nil
}

func (p profileStore) Create(userID uint) error {
	if p.failProfileCreate {
		return apperror.Unavailable("create reviewer profile", errDriver)
	}
	if _, ok := p.profiles[userID]; ok {
		return nil
	}
	p.profiles[userID] = &models.ReviewerProfileWithStats{
		ReviewerProfile: models.ReviewerProfile{UserID: userID, Name: p.users[userID].Name},
	}
	return nil
}

func (p profileStore) GetByUserID(userID uint) (*models.ReviewerProfileWithStats, error) {
	profile, ok := p.profiles[userID]
	if !ok {
		return nil, apperror.ErrProfileNotFound
	}
	out := *profile
	return &out, nil
}

func (p profileStore) List() ([]models.ReviewerProfileWithStats, error) {
	var out []models.ReviewerProfileWithStats
	for _, profile := range p.profiles {
		out = append(out, *profile)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
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

// ReviewerRequestStore

type requestStore struct{ *memStore }

func (r requestStore) FindPending(studentID uint) (*models.ReviewerRequest, error) {
	if r.failFindPending {
		return nil, apperror.Unavailable("find pending reviewer request", errDriver)
	}
	for _, req := range r.requests {
		if req.StudentID == studentID && req.Status == models.RequestPending {
			out := *req
			return &out, nil
		}
	}
	return nil, nil
}

func (r requestStore) Create(studentID uint) (*models.ReviewerRequest, error) {
	if pending, _ := r.FindPending(studentID); pending != nil {
		return nil, apperror.ErrPendingRequest
	}
	r.nextRequestID++
	req := &models.ReviewerRequest{
		ID:          fmt.Sprintf("req-%d", r.nextRequestID),
		StudentID:   studentID,
		Status:      models.RequestPending,
		RequestedAt: r.tick(),
	}
	r.memStore.requests = append(r.memStore.requests, req)
	out := *req
	return &out, nil
}

func (r requestStore) UpdateStatus(requestID string, status models.RequestStatus, processedBy uint) (*models.ReviewerRequest, error) {
	for _, req := range r.requests {
		if req.ID == requestID && req.Status == models.RequestPending {
			now := r.tick()
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
	for i := len(r.requests) - 1; i >= 0; i-- {
		if r.requests[i].StudentID == studentID {
			out = append(out, *r.requests[i])
		}
	}
	return out, nil
}

// TrustStore

type trustStore struct{ *memStore }

func (t trustStore) SetWeight(studentID, reviewerID uint, weight float64) error {
	if t.failTrust {
		return apperror.Unavailable("set trust weight", errDriver)
	}
	if t.trust[studentID] == nil {
		t.trust[studentID] = models.TrustMap{}
	}
	t.trust[studentID][reviewerID] = weight
	return nil
}

func (t trustStore) RemoveWeight(studentID, reviewerID uint) error {
	if t.failTrust {
		return apperror.Unavailable("remove trust weight", errDriver)
	}
	if _, ok := t.trust[studentID][reviewerID]; !ok {
		return apperror.ErrTrustNotFound
	}
	delete(t.trust[studentID], reviewerID)
	return nil
}

func (t trustStore) GetWeights(studentID uint) (models.TrustMap, error) {
	if t.failTrust {
		return nil, apperror.Unavailable("get trust weights", errDriver)
	}
	return t.trust[studentID].Clone(), nil
}

func (t trustStore) ListEntries(studentID uint) ([]models.TrustWeight, error) {
	if t.failTrust {
		return nil, apperror.Unavailable("list trust entries", errDriver)
	}
	entries := t.trust[studentID].Entries(studentID)
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Weight != entries[j].Weight {
			return entries[i].Weight > entries[j].Weight
		}
		return entries[i].ReviewerID < entries[j].ReviewerID
	})
	return entries, nil
}

// AnswerStore

type answerStore struct{ *memStore }

func (a answerStore) CreateQuestion(q *models.Question) error {
	if a.failForum {
		return apperror.Unavailable("create question", errDriver)
	}
	if _, ok := a.users[q.AuthorID]; !ok {
		return apperror.ErrUserNotFound
	}
	a.nextForumID++
	q.ID = a.nextForumID
	q.CreatedAt = a.tick()
	stored := *q
	a.qs[q.ID] = &stored
	return nil
}

func (a answerStore) CreateAnswer(ans *models.Answer) error {
	if a.failForum {
		return apperror.Unavailable("create answer", errDriver)
	}
	if _, ok := a.qs[ans.QuestionID]; !ok {
		return apperror.ErrQuestionNotFound
	}
	a.nextForumID++
	ans.ID = a.nextForumID
	ans.CreatedAt = a.tick()
	stored := *ans
	a.answers[ans.ID] = &stored
	return nil
}

func (a answerStore) QuestionAuthor(answerID uint) (uint, error) {
	if a.failForum {
		return 0, apperror.Unavailable("get question author", errDriver)
	}
	ans, ok := a.answers[answerID]
	if !ok {
		return 0, apperror.ErrAnswerNotFound
	}
	return a.qs[ans.QuestionID].AuthorID, nil
}

func (a answerStore) SetAccepted(answerID uint, accepted bool) error {
	ans, ok := a.answers[answerID]
	if !ok {
		return apperror.ErrAnswerNotFound
	}
	ans.IsAccepted = accepted
	return nil
}

// ReviewStore

type reviewStore struct{ *memStore }

func (r reviewStore) Create(review *models.Review) error {
	if r.failForum {
		return apperror.Unavailable("create review", errDriver)
	}
	if _, ok := r.answers[review.AnswerID]; !ok {
		return apperror.ErrAnswerNotFound
	}
	r.nextForumID++
	review.ID = r.nextForumID
	review.CreatedAt = r.tick()
	stored := *review
	r.reviews[review.ID] = &stored
	return nil
}

func (r reviewStore) GetByID(id uint) (*models.Review, error) {
	review, ok := r.reviews[id]
	if !ok {
		return nil, apperror.ErrReviewNotFound
	}
	out := *review
	return &out, nil
}

// AuditStore

type auditStore struct{ *memStore }

func (a auditStore) Create(entry *models.AuditLog) error {
	if a.failAudit {
		return apperror.Unavailable("create audit log", errDriver)
	}
	a.audit = append(a.audit, *entry)
	return nil
}

// plainHasher stores passwords with a marker prefix so tests stay fast
type plainHasher struct{}

func (plainHasher) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

func (plainHasher) VerifyPassword(hashedPassword, password string) error {
	if hashedPassword != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type services struct {
	store    *memStore
	audit    *AuditService
	roles    *RoleService
	requests *ReviewerRequestService
	profiles *ReviewerProfileService
	trust    *TrustService
	auth     *AuthService
	forum    *ForumService
}

func newServices() *services {
	store := newMemStore()
	audit := NewAuditService(auditStore{store})
	roles := NewRoleService(store, profileStore{store}, audit)
	return &services{
		store:    store,
		audit:    audit,
		roles:    roles,
		requests: NewReviewerRequestService(requestStore{store}, roles, audit),
		profiles: NewReviewerProfileService(profileStore{store}),
		trust:    NewTrustService(trustStore{store}),
		auth:     NewAuthService(store, roles, plainHasher{}, audit),
		forum:    NewForumService(answerStore{store}, reviewStore{store}, audit),
	}
}
