package events

import (
	"time"

	"github.com/naijaprep/cbt-service/internal/models"
)

const ResultCreatedEventType = "cbt.result.created"

// ResultCreatedEvent announces a newly stored CBT result. Downstream
// consumers (notification, analytics) subscribe to the topic; delivery
// mechanics are outside this service.
type ResultCreatedEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`

	SessionID   string            `json:"session_id"`
	UserID      string            `json:"user_id"`
	ExamType    models.ExamType   `json:"exam_type"`
	Subject     string            `json:"subject"`
	Score       models.ScoreBlock `json:"score"`
	TimeTaken   int               `json:"time_taken"`
	CompletedAt time.Time         `json:"completed_at"`
}

// NewResultCreatedEvent builds the event envelope for a stored result.
func NewResultCreatedEvent(result *models.CBTResult) *ResultCreatedEvent {
	return &ResultCreatedEvent{
		ID:          result.ID,
		Type:        ResultCreatedEventType,
		Source:      "cbt-service",
		Version:     "1.0",
		Timestamp:   time.Now(),
		SessionID:   result.SessionID,
		UserID:      result.UserID,
		ExamType:    result.ExamType,
		Subject:     result.Subject,
		Score:       result.Score.Data(),
		TimeTaken:   result.TimeTaken,
		CompletedAt: result.CompletedAt,
	}
}
