package models

import (
	"time"
)

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	// SessionSubmitting marks the window between winning the submit race and
	// the result becoming durable. Exactly one caller ever holds it.
	SessionSubmitting SessionStatus = "submitting"
	SessionScored     SessionStatus = "scored"
)

type SessionEndReason string

const (
	EndReasonManual  SessionEndReason = "manual"
	EndReasonTimeout SessionEndReason = "timeout"
)

// SessionDuration is the fixed time allotted to every CBT attempt. The
// duration is immutable for the life of a session; there is no pausing or
// extension.
const SessionDuration = 5400 * time.Second

// ExamSession is one timed attempt at a sampled question set. It is ephemeral:
// it lives in the session store while in progress and is discarded once its
// scored projection (CBTResult) has been persisted.
type ExamSession struct {
	ID       string   `json:"id"`
	UserID   string   `json:"user_id"`
	ExamType ExamType `json:"exam_type"`
	Subject  string   `json:"subject"`

	// Sampled question ids, disjoint by construction.
	ObjectiveIDs []string `json:"objective_ids"`
	TheoryIDs    []string `json:"theory_ids"`

	StartedAt time.Time     `json:"started_at"`
	Duration  int           `json:"duration"` // seconds
	Status    SessionStatus `json:"status"`

	// Answers keyed by question id, last write wins.
	Answers map[string]AnswerRecord `json:"answers"`
}

// AnswerRecord is one collected answer within an in-progress session.
type AnswerRecord struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
	TimeSpent  int    `json:"time_spent"` // seconds, clamped non-negative
}

// EndsAt is the server-authoritative submission deadline.
func (s *ExamSession) EndsAt() time.Time {
	return s.StartedAt.Add(time.Duration(s.Duration) * time.Second)
}

// TimeRemaining reports whole seconds left at the given instant, never
// negative.
func (s *ExamSession) TimeRemaining(now time.Time) int {
	remaining := int(s.EndsAt().Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// HasQuestion reports whether the question id belongs to this session's
// sampled set.
func (s *ExamSession) HasQuestion(questionID string) bool {
	for _, id := range s.ObjectiveIDs {
		if id == questionID {
			return true
		}
	}
	for _, id := range s.TheoryIDs {
		if id == questionID {
			return true
		}
	}
	return false
}
