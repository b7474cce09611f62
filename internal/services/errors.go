package services

import (
	"errors"
	"fmt"
)

// ===== SERVICE ERRORS =====

var (
	// ErrInvalidSelection means the exam type / subject pairing is not in the
	// catalog. User-correctable; surfaced verbatim.
	ErrInvalidSelection = errors.New("subject is not available for this exam type")

	// ErrSessionNotFound means the session id is unknown, already scored and
	// collected, or expired past its grace period.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionNotActive means the session has left in_progress; the client
	// should resync and fetch its result.
	ErrSessionNotActive = errors.New("session is not active")

	// ErrUnknownQuestion rejects a single answer whose question id is not in
	// the session's sampled set. The session itself stays intact.
	ErrUnknownQuestion = errors.New("question is not part of this session")

	// ErrStorageUnavailable wraps transient repository failures. Callers may
	// retry with the same session id; submission stays idempotent.
	ErrStorageUnavailable = errors.New("storage temporarily unavailable")

	ErrUserNotFound = errors.New("user not found")
)

// ===== ERROR HELPERS =====

// NewStorageError tags a repository failure as retryable without losing the
// underlying cause.
func NewStorageError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, op, err)
}

// IsNotFound checks if the error represents a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsUserError checks if the error is correctable by the caller rather than a
// server-side failure.
func IsUserError(err error) bool {
	return errors.Is(err, ErrInvalidSelection) ||
		errors.Is(err, ErrSessionNotActive) ||
		errors.Is(err, ErrUnknownQuestion)
}

// IsRetryable checks if the error came from transient storage trouble.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
