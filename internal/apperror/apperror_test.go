package apperror

import (
	"database/sql"
	"errors"
	"testing"
)

func TestUnavailableMatchesCategoryAndCause(t *testing.T) {
	err := Unavailable("get trusted reviewers", sql.ErrConnDone)

	if !errors.Is(err, ErrPersistenceUnavailable) {
		t.Errorf("expected ErrPersistenceUnavailable, got %v", err)
	}
	if !errors.Is(err, sql.ErrConnDone) {
		t.Errorf("expected cause to be preserved, got %v", err)
	}
	if !IsFault(err) {
		t.Error("persistence errors should be faults")
	}
}

func TestSpecificErrorsWrapCategories(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category error
	}{
		{"last admin", ErrLastAdmin, ErrInvariantViolation},
		{"pending request", ErrPendingRequest, ErrDuplicateRequest},
		{"username taken", ErrUsernameTaken, ErrConflict},
		{"not question author", ErrNotQuestionAuthor, ErrPermissionDenied},
		{"not review author", ErrNotReviewAuthor, ErrPermissionDenied},
		{"question", ErrQuestionNotFound, ErrNotFound},
		{"review", ErrReviewNotFound, ErrNotFound},
		{"trust", ErrTrustNotFound, ErrNotFound},
		{"request", ErrRequestNotFound, ErrNotFound},
		{"no curated question", ErrNoCuratedQuestion, ErrNotFound},
		{"unknown role", ErrUnknownRole, ErrInvalidArgument},
		{"session not ready", ErrSessionNotReady, ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.category) {
				t.Errorf("%v should wrap %v", tt.err, tt.category)
			}
			if tt.category != ErrDuplicateRequest && errors.Is(tt.err, ErrDuplicateRequest) {
				t.Errorf("%v should not be a duplicate reviewer request", tt.err)
			}
			if IsFault(tt.err) {
				t.Errorf("%v should not be a fault", tt.err)
			}
		})
	}
}
