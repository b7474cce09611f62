package models

import (
	"time"

	"gorm.io/datatypes"
)

// QuestionOutcome is one per-question line in a stored result. IsCorrect is
// nil for theory and practical answers, which are never auto-graded.
type QuestionOutcome struct {
	QuestionID string `json:"question_id"`
	UserAnswer string `json:"user_answer"`
	IsCorrect  *bool  `json:"is_correct"`
	TimeSpent  int    `json:"time_spent"`
}

type ObjectiveScore struct {
	Total      int     `json:"total"`
	Correct    int     `json:"correct"`
	Percentage float64 `json:"percentage"`
}

type TheoryScore struct {
	Total    int `json:"total"`
	Answered int `json:"answered"`
}

type OverallScore struct {
	Percentage float64 `json:"percentage"`
	Grade      string  `json:"grade"`
}

// ScoreBlock is the full scored projection of a submitted session. The
// overall percentage mirrors the objective percentage: theory answers are
// recorded for later human or AI review and do not feed the automated grade.
type ScoreBlock struct {
	Objectives ObjectiveScore `json:"objectives"`
	Theory     TheoryScore    `json:"theory"`
	Overall    OverallScore   `json:"overall"`
}

// CBTResult is the immutable record of one submitted session. The unique
// session id index is the storage-level half of submit idempotence.
type CBTResult struct {
	ID        string   `json:"id" gorm:"primaryKey;size:36"`
	SessionID string   `json:"session_id" gorm:"uniqueIndex;not null;size:36"`
	UserID    string   `json:"user_id" gorm:"not null;size:36;index"`
	ExamType  ExamType `json:"exam_type" gorm:"not null;size:10"`
	Subject   string   `json:"subject" gorm:"not null;size:100"`

	Outcomes datatypes.JSONType[[]QuestionOutcome] `json:"outcomes" gorm:"type:jsonb"`
	Score    datatypes.JSONType[ScoreBlock]        `json:"score" gorm:"type:jsonb"`

	TimeTaken   int       `json:"time_taken"` // seconds
	EndReason   string    `json:"end_reason" gorm:"size:20"`
	CompletedAt time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
}

func (CBTResult) TableName() string {
	return "cbt_results"
}
