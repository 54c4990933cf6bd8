package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"qa-forum/internal/middleware"
	"qa-forum/internal/models"
	"qa-forum/internal/service"
)

// TokenIssuer issues session tokens
type TokenIssuer interface {
	GenerateToken(userID uint, username, activeRole string) (string, time.Time, error)
}

// AuthHandler handles login and the current user
type AuthHandler struct {
	authSvc *service.AuthService
	tokens  TokenIssuer
	auditMw *middleware.AuditMiddleware
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *service.AuthService, tokens TokenIssuer, auditMw *middleware.AuditMiddleware) *AuthHandler {
	return &AuthHandler{
		authSvc: authSvc,
		tokens:  tokens,
		auditMw: auditMw,
	}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role,omitempty" validate:"omitempty,known_role"`
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	Token      string      `json:"token"`
	ExpiresAt  time.Time   `json:"expires_at"`
	User       models.User `json:"user"`
	Roles      []string    `json:"roles"`
	ActiveRole string      `json:"active_role"`
}

// Login authenticates a user and opens a session under one of their roles
// @Summary Login
// @Description Authenticate with username and password. The optional role selects the session role and must be held by the user.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} map[string]string "Invalid request or role not held"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, roles, err := h.authSvc.Authenticate(req.Username, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.auditMw.LogAction(r, nil, AuditActionLoginFailed, "auth/login", req.Username)
		}
		respondWithServiceError(w, err)
		return
	}

	token, expiresAt, err := h.tokens.GenerateToken(user.ID, user.Username, roles.Active)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrMsgFailedToIssueToken)
		return
	}

	h.auditMw.LogAction(r, &user.ID, AuditActionLogin, fmt.Sprintf("users/%d", user.ID), "active role: "+roles.Active)

	respondWithJSON(w, http.StatusOK, LoginResponse{
		Token:      token,
		ExpiresAt:  expiresAt,
		User:       *user,
		Roles:      roles.Roles,
		ActiveRole: roles.Active,
	})
}

// Me returns the authenticated user with their roles and session role
// @Summary Current user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserWithRoles
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /users/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	user, err := h.authSvc.CurrentUser(userID, middleware.GetActiveRole(r))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}
