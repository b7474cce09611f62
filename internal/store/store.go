// Package store holds in-progress exam sessions. Sessions are ephemeral:
// they exist from startSession until scoring completes, after which only the
// stored CBTResult survives.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/naijaprep/cbt-service/internal/models"
)

var (
	// ErrSessionNotFound means the session never existed or its TTL elapsed
	// and it was collected.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionNotActive means the session has already left in_progress.
	ErrSessionNotActive = errors.New("session is not active")

	// ErrScoringClaimed means another caller already won the transition out
	// of in_progress. The loser should read the stored result instead.
	ErrScoringClaimed = errors.New("scoring already claimed for session")
)

// GracePeriod pads the store TTL past the session deadline so a submission
// arriving at the buzzer still finds its session.
const GracePeriod = 5 * time.Minute

// SessionStore owns ExamSession state while a test is being taken.
//
// BeginScoring is the single-transition guard from the concurrency contract:
// it atomically moves a session from in_progress to submitting and hands the
// caller the one snapshot used for scoring. Exactly one of a manual submit
// and a clock expiry can ever succeed; the other receives ErrScoringClaimed.
type SessionStore interface {
	Save(ctx context.Context, session *models.ExamSession) error
	Get(ctx context.Context, sessionID string) (*models.ExamSession, error)

	// PutAnswer records one answer, overwriting any prior answer for the
	// same question id. Legal only while the session is in_progress.
	PutAnswer(ctx context.Context, sessionID string, record models.AnswerRecord) error

	// BeginScoring performs the in_progress -> submitting compare-and-set
	// and returns the full session including collected answers.
	BeginScoring(ctx context.Context, sessionID string) (*models.ExamSession, error)

	Delete(ctx context.Context, sessionID string) error
}
