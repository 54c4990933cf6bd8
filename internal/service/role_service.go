package service

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"qa-forum/internal/apperror"
	"qa-forum/internal/models"
)

// RoleChange describes the outcome of a role assignment.
// The role replacement and the reviewer profile creation are separate steps:
// a non-nil ProfileError means the roles were stored but the profile was not created.
type RoleChange struct {
	UserID         uint           `json:"user_id"`
	Roles          models.RoleSet `json:"roles"`
	ProfileCreated bool           `json:"profile_created"`
	ProfileError   error          `json:"-"`
}

// RoleService assigns role sets and guards the last admin
type RoleService struct {
	roles    RoleStore
	profiles ReviewerProfileStore
	audit    *AuditService
}

// NewRoleService creates a new role service
func NewRoleService(roles RoleStore, profiles ReviewerProfileStore, audit *AuditService) *RoleService {
	return &RoleService{
		roles:    roles,
		profiles: profiles,
		audit:    audit,
	}
}

// ListRoles returns the role labels stored in the roles table
func (s *RoleService) ListRoles() ([]string, error) {
	roles, err := s.roles.ListRoles()
	if err != nil {
		logFault("Failed to list roles", err)
		return nil, err
	}

	labels := make([]string, 0, len(roles))
	for _, role := range roles {
		labels = append(labels, role.Name)
	}
	return labels, nil
}

// GetRoles returns a user's role set
func (s *RoleService) GetRoles(userID uint) (models.RoleSet, error) {
	roles, err := s.roles.GetUserRoles(userID)
	if err != nil {
		logFault("Failed to get user roles", err, "user_id", userID)
		return models.RoleSet{}, err
	}
	return models.NewRoleSet(roles), nil
}

// AssignRoles replaces the role set of a user. An admin cannot drop their own
// admin role while they are the only admin. When the new set contains the
// reviewer role and no reviewer profile exists yet, one is created afterwards.
func (s *RoleService) AssignRoles(userID uint, roles []string, actingAdminID uint) (*RoleChange, error) {
	normalized := models.NormalizeRoles(roles)
	for _, role := range normalized {
		if !models.IsKnownRole(role) {
			return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownRole, role)
		}
	}
	next := models.NewRoleSet(normalized)

	current, err := s.roles.GetUserRoles(userID)
	if err != nil {
		logFault("Failed to get user roles", err, "user_id", userID)
		return nil, err
	}

	if userID == actingAdminID && slices.Contains(current, models.RoleAdmin) && !next.Has(models.RoleAdmin) {
		admins, err := s.roles.CountUsersWithRole(models.RoleAdmin)
		if err != nil {
			logFault("Failed to count admins", err, "user_id", userID)
			return nil, err
		}
		if admins <= 1 {
			slog.Warn("Rejected removal of the last admin", "user_id", userID)
			return nil, apperror.ErrLastAdmin
		}
	}

	if err := s.roles.ReplaceRoles(userID, next.Roles); err != nil {
		logFault("Failed to replace user roles", err, "user_id", userID)
		return nil, err
	}

	return s.afterAssign(userID, current, next, actingAdminID), nil
}

// afterAssign runs the steps that follow a stored role change: the reviewer
// profile is created when missing and the change is audited.
func (s *RoleService) afterAssign(userID uint, previous []string, next models.RoleSet, actingID uint) *RoleChange {
	change := &RoleChange{UserID: userID, Roles: next}
	if next.Has(models.RoleReviewer) {
		s.attachProfile(change)
	}

	slog.Info("User roles updated",
		"user_id", userID,
		"acting_admin_id", actingID,
		"previous_roles", previous,
		"roles", next.Roles,
	)
	s.audit.Log(actingID, ActionRolesAssigned, userResource(userID),
		fmt.Sprintf("roles changed from [%s] to [%s]", strings.Join(previous, ","), strings.Join(next.Roles, ",")))

	return change
}

func (s *RoleService) attachProfile(change *RoleChange) {
	change.ProfileCreated, change.ProfileError = s.ensureReviewerProfile(change.UserID)
	if change.ProfileError != nil {
		slog.Error("Roles updated but reviewer profile creation failed",
			"user_id", change.UserID,
			"error", change.ProfileError,
		)
	}
}

// GrantRole adds a single role to a user's set, keeping the existing roles first.
// When the role is already held the set is left as is; a missing reviewer
// profile is still created.
func (s *RoleService) GrantRole(userID uint, role string, actingID uint) (*RoleChange, error) {
	current, err := s.GetRoles(userID)
	if err != nil {
		return nil, err
	}
	if current.Has(role) {
		change := &RoleChange{UserID: userID, Roles: current}
		if role == models.RoleReviewer {
			s.attachProfile(change)
		}
		return change, nil
	}
	return s.AssignRoles(userID, current.With(role).Roles, actingID)
}

func (s *RoleService) ensureReviewerProfile(userID uint) (bool, error) {
	exists, err := s.profiles.Exists(userID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := s.profiles.Create(userID); err != nil {
		return false, err
	}
	return true, nil
}
