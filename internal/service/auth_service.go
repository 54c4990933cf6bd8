package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"qa-forum/internal/apperror"
	"qa-forum/internal/models"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const minPasswordLength = 8

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hashedPassword, password string) error
}

// AuthService handles account creation and login
type AuthService struct {
	users  UserStore
	roles  *RoleService
	hasher PasswordHasher
	audit  *AuditService
}

// NewAuthService creates a new authentication service
func NewAuthService(users UserStore, roles *RoleService, hasher PasswordHasher, audit *AuditService) *AuthService {
	return &AuthService{
		users:  users,
		roles:  roles,
		hasher: hasher,
		audit:  audit,
	}
}

// Authenticate checks a username and password. When role is non-empty it must be
// held by the user and becomes the active role; otherwise the primary role is used.
func (s *AuthService) Authenticate(username, password, role string) (*models.User, models.RoleSet, error) {
	user, err := s.users.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, models.RoleSet{}, ErrInvalidCredentials
		}
		logFault("Failed to load user for login", err, "username", username)
		return nil, models.RoleSet{}, err
	}

	if err := s.hasher.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, models.RoleSet{}, ErrInvalidCredentials
	}

	roles, err := s.roles.GetRoles(user.ID)
	if err != nil {
		return nil, models.RoleSet{}, err
	}

	active := role
	if active == "" {
		active = roles.Primary()
	}
	if active != "" && !roles.SelectActive(active) {
		return nil, models.RoleSet{}, fmt.Errorf("%w: %s", apperror.ErrRoleNotHeld, role)
	}

	slog.Info("User logged in", "user_id", user.ID, "active_role", roles.Active)
	return user, roles, nil
}

// CreateUser creates an account together with its initial roles. The account and
// its roles are stored atomically; only the reviewer profile is created afterwards.
func (s *AuthService) CreateUser(username, email, name, password string, roles []string, actingAdminID uint) (*models.User, *RoleChange, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil, apperror.Invalid("username is required")
	}
	if len(password) < minPasswordLength {
		return nil, nil, apperror.Invalid("password must be at least %d characters", minPasswordLength)
	}
	normalized := models.NormalizeRoles(roles)
	for _, role := range normalized {
		if !models.IsKnownRole(role) {
			return nil, nil, fmt.Errorf("%w: %q", apperror.ErrUnknownRole, role)
		}
	}
	initial := models.NewRoleSet(normalized)

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        strings.TrimSpace(email),
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
	}
	if err := s.users.CreateWithRoles(user, initial.Roles); err != nil {
		logFault("Failed to create user", err, "username", username)
		return nil, nil, err
	}
	s.audit.Log(actingAdminID, ActionUserCreated, userResource(user.ID), username)

	change := s.roles.afterAssign(user.ID, nil, initial, actingAdminID)
	return user, change, nil
}

// EnsureBootstrapAdmin creates the first account with the admin role when no user exists yet.
// It reports whether an account was created.
func (s *AuthService) EnsureBootstrapAdmin(username, password string) (bool, error) {
	if username == "" {
		return false, nil
	}

	count, err := s.users.CountAll()
	if err != nil {
		logFault("Failed to count users", err)
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	user, _, err := s.CreateUser(username, "", username, password, []string{models.RoleAdmin}, 0)
	if err != nil {
		return false, err
	}

	slog.Info("Bootstrap admin created", "user_id", user.ID, "username", user.Username)
	return true, nil
}

// ListUsers returns one page of accounts ordered by ID
func (s *AuthService) ListUsers(limit, offset int) ([]models.User, error) {
	if limit <= 0 || offset < 0 {
		return nil, apperror.Invalid("limit must be positive and offset non-negative")
	}

	users, err := s.users.GetAll(limit, offset)
	if err != nil {
		logFault("Failed to list users", err, "limit", limit, "offset", offset)
		return nil, err
	}
	return users, nil
}

// CurrentUser returns a user together with their role set
func (s *AuthService) CurrentUser(userID uint, activeRole string) (*models.UserWithRoles, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		logFault("Failed to load user", err, "user_id", userID)
		return nil, err
	}

	roles, err := s.roles.GetRoles(userID)
	if err != nil {
		return nil, err
	}
	if activeRole == "" || !roles.SelectActive(activeRole) {
		roles.Active = roles.Primary()
	}

	return &models.UserWithRoles{
		User:       *user,
		Roles:      roles.Roles,
		ActiveRole: roles.Active,
	}, nil
}
