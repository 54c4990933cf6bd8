package curation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qa-forum/internal/apperror"
	"qa-forum/internal/models"
)

func newTestSession(t *testing.T) (*Session, *fakeForum, *fakeTrust) {
	t.Helper()

	forum := newFakeForum()
	forum.addAnswer(1, 101, false, base)
	forum.addAnswer(1, 102, false, base)
	forum.addReview(101, 10)
	forum.addReview(102, 20)

	trust := &fakeTrust{weights: map[uint]models.TrustMap{
		5: {10: 1.0, 20: 2.0},
	}}

	return NewSession(5, NewEngine(forum, forum), trust), forum, trust
}

func TestSessionCurateRequiresReload(t *testing.T) {
	session, _, _ := newTestSession(t)

	assert.False(t, session.Ready())
	_, err := session.Curate(1)
	require.ErrorIs(t, err, apperror.ErrSessionNotReady)
	require.ErrorIs(t, err, apperror.ErrInvalidArgument)

	_, ok := session.LastCuratedQuestion()
	assert.False(t, ok)
}

func TestSessionCurateUsesCachedTrust(t *testing.T) {
	session, _, trust := newTestSession(t)
	require.NoError(t, session.Reload())

	// Later writes to the store do not reach the cache
	delete(trust.weights[5], 10)

	result, err := session.Curate(1)
	require.NoError(t, err)
	assert.Equal(t, []uint{102, 101}, result.AnswerIDs())
	assert.Equal(t, 2, result.TrustedReviewers)
	assert.Equal(t, uint(5), result.StudentID)

	last, ok := session.LastCuratedQuestion()
	require.True(t, ok)
	assert.Equal(t, uint(1), last)
}

func TestSessionCheckUpdatesRefreshesLastQuestion(t *testing.T) {
	session, _, trust := newTestSession(t)

	_, err := session.CheckUpdates()
	require.ErrorIs(t, err, apperror.ErrNoCuratedQuestion)

	require.NoError(t, session.Reload())
	_, err = session.Curate(1)
	require.NoError(t, err)

	delete(trust.weights[5], 10)

	result, err := session.CheckUpdates()
	require.NoError(t, err)
	assert.Equal(t, []uint{102}, result.AnswerIDs())
	assert.Equal(t, models.TrustMap{20: 2.0}, session.Trust())
}

func TestSessionFailedReloadKeepsCache(t *testing.T) {
	session, _, trust := newTestSession(t)
	require.NoError(t, session.Reload())

	trust.err = errStoreDown
	err := session.Reload()
	require.ErrorIs(t, err, errStoreDown)

	assert.True(t, session.Ready())
	assert.Equal(t, models.TrustMap{10: 1.0, 20: 2.0}, session.Trust())
}

func TestSessionFailedCurateKeepsMarker(t *testing.T) {
	session, forum, _ := newTestSession(t)
	require.NoError(t, session.Reload())

	_, err := session.Curate(1)
	require.NoError(t, err)

	forum.answersErr = errStoreDown
	_, err = session.Curate(2)
	require.ErrorIs(t, err, errStoreDown)

	last, ok := session.LastCuratedQuestion()
	require.True(t, ok)
	assert.Equal(t, uint(1), last)
}

func TestSessionEmptyTrustIsValid(t *testing.T) {
	session, _, _ := newTestSession(t)
	session.studentID = 6
	require.NoError(t, session.Reload())

	result, err := session.Curate(1)
	require.NoError(t, err)
	assert.Empty(t, result.Answers)
	assert.Equal(t, 0, result.TrustedReviewers)
}

func TestSessionTrustReturnsCopy(t *testing.T) {
	session, _, _ := newTestSession(t)
	require.NoError(t, session.Reload())

	snapshot := session.Trust()
	snapshot[10] = 100

	assert.Equal(t, 1.0, session.Trust()[10])
}
