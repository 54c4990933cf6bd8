package models

import (
	"slices"
	"strings"
)

// Role labels
const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleStudent    = "student"
	RoleReviewer   = "reviewer"
	RoleStaff      = "staff"
)

// KnownRoles lists every role label in display order
var KnownRoles = []string{RoleAdmin, RoleInstructor, RoleStudent, RoleReviewer, RoleStaff}

// IsKnownRole reports whether name is a supported role label
func IsKnownRole(name string) bool {
	return slices.Contains(KnownRoles, name)
}

// NormalizeRoles trims and lower-cases labels and drops duplicates and blanks,
// keeping the first occurrence so the assignment order survives.
func NormalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" || slices.Contains(out, r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// RoleSet is the ordered set of roles held by a user plus the role selected
// for the current session.
type RoleSet struct {
	Roles  []string `json:"roles"`
	Active string   `json:"active_role,omitempty"`
}

// NewRoleSet builds a role set from labels in assignment order
func NewRoleSet(roles []string) RoleSet {
	return RoleSet{Roles: NormalizeRoles(roles)}
}

// Has reports whether the set contains role
func (s RoleSet) Has(role string) bool {
	return slices.Contains(s.Roles, role)
}

// Primary returns the first assigned role, or "" for an empty set
func (s RoleSet) Primary() string {
	if len(s.Roles) == 0 {
		return ""
	}
	return s.Roles[0]
}

// SelectActive sets the session role. It returns false if role is not held.
func (s *RoleSet) SelectActive(role string) bool {
	role = strings.ToLower(strings.TrimSpace(role))
	if !s.Has(role) {
		return false
	}
	s.Active = role
	return true
}

// With returns a copy of the set with role appended if missing
func (s RoleSet) With(role string) RoleSet {
	if s.Has(role) {
		return RoleSet{Roles: slices.Clone(s.Roles), Active: s.Active}
	}
	return RoleSet{Roles: append(slices.Clone(s.Roles), role), Active: s.Active}
}
