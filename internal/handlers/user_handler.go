package handlers

import (
	"net/http"
	"strconv"

	"qa-forum/internal/middleware"
	"qa-forum/internal/models"
	"qa-forum/internal/service"
)

// UserHandler handles user and role administration
type UserHandler struct {
	authSvc *service.AuthService
	roleSvc *service.RoleService
}

// NewUserHandler creates a new user handler
func NewUserHandler(authSvc *service.AuthService, roleSvc *service.RoleService) *UserHandler {
	return &UserHandler{
		authSvc: authSvc,
		roleSvc: roleSvc,
	}
}

// CreateUserRequest represents an account created by an admin
type CreateUserRequest struct {
	Username string   `json:"username" validate:"required,max=100"`
	Email    string   `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Name     string   `json:"name,omitempty" validate:"max=200"`
	Password string   `json:"password" validate:"required,min=8,max=72"`
	Roles    []string `json:"roles" validate:"dive,known_role"`
}

// CreateUserResponse is returned after an account was created
type CreateUserResponse struct {
	User           models.User `json:"user"`
	Roles          []string    `json:"roles"`
	ProfileCreated bool        `json:"profile_created"`
	Warning        string      `json:"warning,omitempty"`
}

// AssignRolesRequest replaces a user's role set
type AssignRolesRequest struct {
	Roles []string `json:"roles" validate:"required,dive,known_role"`
}

// AssignRolesResponse reports the stored role set
type AssignRolesResponse struct {
	UserID         uint     `json:"user_id"`
	Roles          []string `json:"roles"`
	ProfileCreated bool     `json:"profile_created"`
	Warning        string   `json:"warning,omitempty"`
}

// ListRoles lists the supported role labels
// @Summary List roles
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} string
// @Failure 403 {object} map[string]string "Forbidden - admin only"
// @Router /admin/roles [get]
func (h *UserHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roleSvc.ListRoles()
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, roles)
}

// ListUsers lists accounts ordered by ID
// @Summary List users
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} models.User
// @Failure 400 {object} map[string]string "Invalid pagination"
// @Failure 403 {object} map[string]string "Forbidden - admin only"
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := 50, 0
	query := r.URL.Query()
	if v := query.Get("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 || l > 100 {
			respondWithError(w, http.StatusBadRequest, ErrMsgInvalidPagination)
			return
		}
		limit = l
	}
	if v := query.Get("offset"); v != "" {
		o, err := strconv.Atoi(v)
		if err != nil || o < 0 {
			respondWithError(w, http.StatusBadRequest, ErrMsgInvalidPagination)
			return
		}
		offset = o
	}

	users, err := h.authSvc.ListUsers(limit, offset)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, users)
}

// GetUserRoles returns a user's role set
// @Summary Get user roles
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param userID path int true "User ID"
// @Success 200 {object} models.RoleSet
// @Failure 400 {object} map[string]string "Invalid user ID"
// @Failure 404 {object} map[string]string "User not found"
// @Router /admin/users/{userID}/roles [get]
func (h *UserHandler) GetUserRoles(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidUserID)
		return
	}

	roles, err := h.roleSvc.GetRoles(userID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, roles)
}

// AssignRoles replaces a user's role set
// @Summary Assign roles
// @Description Replace the full role set of a user. The first role becomes the primary role. An admin cannot remove their own admin role while they are the only admin.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userID path int true "User ID"
// @Param request body AssignRolesRequest true "New role set"
// @Success 200 {object} AssignRolesResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "User not found"
// @Failure 409 {object} map[string]string "Last admin"
// @Router /admin/users/{userID}/roles [put]
func (h *UserHandler) AssignRoles(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	userID, ok := pathID(r, "userID")
	if !ok {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidUserID)
		return
	}

	var req AssignRolesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	change, err := h.roleSvc.AssignRoles(userID, req.Roles, adminID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	resp := AssignRolesResponse{
		UserID:         change.UserID,
		Roles:          change.Roles.Roles,
		ProfileCreated: change.ProfileCreated,
	}
	if change.ProfileError != nil {
		resp.Warning = "roles updated but the reviewer profile could not be created"
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// CreateUser creates an account with an initial role set
// @Summary Create user
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateUserRequest true "New account"
// @Success 201 {object} CreateUserResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 409 {object} map[string]string "Username taken"
// @Router /admin/users [post]
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var req CreateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, change, err := h.authSvc.CreateUser(req.Username, req.Email, req.Name, req.Password, req.Roles, adminID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	resp := CreateUserResponse{
		User:           *user,
		Roles:          change.Roles.Roles,
		ProfileCreated: change.ProfileCreated,
	}
	if change.ProfileError != nil {
		resp.Warning = "account created but the reviewer profile could not be created"
	}

	respondWithJSON(w, http.StatusCreated, resp)
}
