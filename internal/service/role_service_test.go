package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qa-forum/internal/apperror"
	"qa-forum/internal/models"
)

func TestAssignRolesSoleAdminCannotDropAdmin(t *testing.T) {
	s := newServices()
	admin := s.store.addUser("admin1", models.RoleAdmin)

	_, err := s.roles.AssignRoles(admin, []string{models.RoleStudent}, admin)
	require.ErrorIs(t, err, apperror.ErrLastAdmin)
	require.ErrorIs(t, err, apperror.ErrInvariantViolation)

	assert.Equal(t, []string{models.RoleAdmin}, s.store.roles[admin])
	assert.Empty(t, s.store.audit)
}

func TestAssignRolesAdminMayDropOwnAdminWhenAnotherExists(t *testing.T) {
	s := newServices()
	a := s.store.addUser("a", models.RoleAdmin)
	s.store.addUser("b", models.RoleAdmin)

	change, err := s.roles.AssignRoles(a, []string{"instructor"}, a)
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleInstructor}, change.Roles.Roles)
	assert.Equal(t, models.RoleInstructor, *s.store.users[a].PrimaryRole)
}

func TestAssignRolesSelfWithoutAdminIsNotGuarded(t *testing.T) {
	s := newServices()
	s.store.addUser("admin", models.RoleAdmin)
	ta := s.store.addUser("ta", models.RoleStudent, models.RoleInstructor)

	change, err := s.roles.AssignRoles(ta, []string{models.RoleStudent, models.RoleInstructor, models.RoleReviewer}, ta)
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleStudent, models.RoleInstructor, models.RoleReviewer}, change.Roles.Roles)
}

func TestAssignRolesSelfWithoutAdminSkipsAdminCount(t *testing.T) {
	s := newServices()
	ta := s.store.addUser("ta", models.RoleStudent, models.RoleInstructor)
	s.store.failCount = true

	_, err := s.roles.AssignRoles(ta, []string{models.RoleStudent}, ta)
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleStudent}, s.store.roles[ta])
}

func TestAssignRolesOtherAdminIsNotGuarded(t *testing.T) {
	s := newServices()
	target := s.store.addUser("target", models.RoleAdmin)
	actor := s.store.addUser("actor", models.RoleStaff)

	_, err := s.roles.AssignRoles(target, []string{models.RoleStudent}, actor)
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleStudent}, s.store.roles[target])
}

func TestAssignRolesNormalizesAndKeepsOrder(t *testing.T) {
	s := newServices()
	admin := s.store.addUser("admin", models.RoleAdmin)
	user := s.store.addUser("u")

	change, err := s.roles.AssignRoles(user, []string{" Staff", "student", "STAFF"}, admin)
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleStaff, models.RoleStudent}, change.Roles.Roles)
	assert.Equal(t, models.RoleStaff, change.Roles.Primary())
	assert.Equal(t, models.RoleStaff, *s.store.users[user].PrimaryRole)

	require.Len(t, s.store.audit, 1)
	assert.Equal(t, ActionRolesAssigned, s.store.audit[0].Action)
	assert.Equal(t, admin, *s.store.audit[0].UserID)
}

func TestAssignRolesEmptySetClearsPrimary(t *testing.T) {
	s := newServices()
	admin := s.store.addUser("admin", models.RoleAdmin)
	user := s.store.addUser("u", models.RoleStudent)

	change, err := s.roles.AssignRoles(user, nil, admin)
	require.NoError(t, err)
	assert.Empty(t, change.Roles.Roles)
	assert.Nil(t, s.store.users[user].PrimaryRole)
}

func TestAssignRolesRejectsUnknownRole(t *testing.T) {
	s := newServices()
	admin := s.store.addUser("admin", models.RoleAdmin)
	user := s.store.addUser("u", models.RoleStudent)

	_, err := s.roles.AssignRoles(user, []string{"student", "wizard"}, admin)
	require.ErrorIs(t, err, apperror.ErrUnknownRole)
	require.ErrorIs(t, err, apperror.ErrInvalidArgument)
	assert.Equal(t, []string{models.RoleStudent}, s.store.roles[user])
}

func TestAssignRolesUnknownUser(t *testing.T) {
	s := newServices()
	admin := s.store.addUser("admin", models.RoleAdmin)

	_, err := s.roles.AssignRoles(999, []string{"student"}, admin)
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestAssignRolesPersistenceFailureLeavesRoles(t *testing.T) {
	s := newServices()
	admin := s.store.addUser("admin", models.RoleAdmin)
	user := s.store.addUser("u", models.RoleStudent)
	s.store.failReplaceRoles = true

	_, err := s.roles.AssignRoles(user, []string{"reviewer"}, admin)
	require.ErrorIs(t, err, apperror.ErrPersistenceUnavailable)
	require.ErrorIs(t, err, errDriver)
	assert.Equal(t, []string{models.RoleStudent}, s.store.roles[user])
	assert.Empty(t, s.store.profiles)
}

func TestAssignRolesCreatesReviewerProfileOnce(t *testing.T) {
	s := newServices()
	admin := s.store.addUser("admin", models.RoleAdmin)
	user := s.store.addUser("u", models.RoleStudent)

	change, err := s.roles.AssignRoles(user, []string{"student", "reviewer"}, admin)
	require.NoError(t, err)
	assert.True(t, change.ProfileCreated)
	assert.NoError(t, change.ProfileError)
	require.Contains(t, s.store.profiles, user)

	change, err = s.roles.AssignRoles(user, []string{"reviewer"}, admin)
	require.NoError(t, err)
	assert.False(t, change.ProfileCreated)
}

func TestAssignRolesProfileFailureKeepsRoles(t *testing.T) {
	s := newServices()
	admin := s.store.addUser("admin", models.RoleAdmin)
	user := s.store.addUser("u", models.RoleStudent)
	s.store.failProfileCreate = true

	change, err := s.roles.AssignRoles(user, []string{"student", "reviewer"}, admin)
	require.NoError(t, err)
	require.ErrorIs(t, change.ProfileError, apperror.ErrPersistenceUnavailable)
	assert.False(t, change.ProfileCreated)
	assert.Equal(t, []string{models.RoleStudent, models.RoleReviewer}, s.store.roles[user])
}

func TestGrantRoleIsIdempotent(t *testing.T) {
	s := newServices()
	instructor := s.store.addUser("i", models.RoleInstructor)
	user := s.store.addUser("u", models.RoleStudent, models.RoleReviewer)

	change, err := s.roles.GrantRole(user, models.RoleReviewer, instructor)
	require.NoError(t, err)
	assert.Equal(t, []string{models.RoleStudent, models.RoleReviewer}, change.Roles.Roles)
	assert.Empty(t, s.store.audit)

	change, err = s.roles.GrantRole(user, models.RoleReviewer, instructor)
	require.NoError(t, err)
	assert.False(t, change.ProfileCreated)
	assert.Empty(t, s.store.audit)
}

func TestGrantRoleRepairsMissingReviewerProfile(t *testing.T) {
	s := newServices()
	instructor := s.store.addUser("i", models.RoleInstructor)
	user := s.store.addUser("u", models.RoleStudent, models.RoleReviewer)
	require.NotContains(t, s.store.profiles, user)

	change, err := s.roles.GrantRole(user, models.RoleReviewer, instructor)
	require.NoError(t, err)
	assert.True(t, change.ProfileCreated)
	assert.Contains(t, s.store.profiles, user)

	change, err = s.roles.GrantRole(user, models.RoleStudent, instructor)
	require.NoError(t, err)
	assert.False(t, change.ProfileCreated)
}

func TestListRolesReadsStore(t *testing.T) {
	s := newServices()

	roles, err := s.roles.ListRoles()
	require.NoError(t, err)
	assert.Equal(t, models.KnownRoles, roles)

	s.store.failCount = true
	_, err = s.roles.ListRoles()
	require.ErrorIs(t, err, apperror.ErrPersistenceUnavailable)
}
