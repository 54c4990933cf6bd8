// Package apperror defines the error categories shared by the store, the
// curation engine and the role/request services.
package apperror

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by the core wraps exactly one of them.
var (
	// ErrPersistenceUnavailable means the store could not be reached or failed.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
	// ErrInvariantViolation means the operation would break a domain invariant.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrDuplicateRequest means a pending reviewer request already exists.
	ErrDuplicateRequest = errors.New("duplicate request")
	// ErrConflict means a uniquely named resource already exists.
	ErrConflict = errors.New("conflict")
	// ErrPermissionDenied means the caller may not act on the resource.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound means the referenced user, trust entry or request does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument means the caller supplied unusable input.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Specific errors
var (
	ErrLastAdmin         = fmt.Errorf("%w: cannot remove the admin role from the last admin", ErrInvariantViolation)
	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
	ErrTrustNotFound     = fmt.Errorf("trusted reviewer %w", ErrNotFound)
	ErrRequestNotFound   = fmt.Errorf("pending reviewer request %w", ErrNotFound)
	ErrProfileNotFound   = fmt.Errorf("reviewer profile %w", ErrNotFound)
	ErrAnswerNotFound    = fmt.Errorf("answer %w", ErrNotFound)
	ErrQuestionNotFound  = fmt.Errorf("question %w", ErrNotFound)
	ErrReviewNotFound    = fmt.Errorf("review %w", ErrNotFound)
	ErrNoCuratedQuestion = fmt.Errorf("curated question %w", ErrNotFound)
	ErrPendingRequest    = fmt.Errorf("%w: you already have a pending reviewer request", ErrDuplicateRequest)
	ErrUsernameTaken     = fmt.Errorf("%w: username already exists", ErrConflict)
	ErrNotQuestionAuthor = fmt.Errorf("%w: only the question author can accept answers", ErrPermissionDenied)
	ErrNotReviewAuthor   = fmt.Errorf("%w: reviews can only be revised by their author", ErrPermissionDenied)
	ErrUnknownRole       = fmt.Errorf("%w: unknown role", ErrInvalidArgument)
	ErrSessionNotReady   = fmt.Errorf("%w: trusted reviewers have not been loaded", ErrInvalidArgument)
	ErrRoleNotHeld       = fmt.Errorf("%w: role is not assigned to the user", ErrInvalidArgument)
)

// Unavailable wraps a driver error so callers can match both the category and the cause.
func Unavailable(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, ErrPersistenceUnavailable, err)
}

// Invalid builds an ErrInvalidArgument with a message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// IsFault reports whether err is a system fault rather than an expected rejection.
func IsFault(err error) bool {
	return errors.Is(err, ErrPersistenceUnavailable)
}
