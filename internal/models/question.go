package models

import (
	"time"

	"gorm.io/datatypes"
)

type ExamType string

const (
	ExamWAEC ExamType = "WAEC"
	ExamNECO ExamType = "NECO"
	ExamJAMB ExamType = "JAMB"
)

type QuestionKind string

const (
	KindObjective QuestionKind = "objective"
	KindTheory    QuestionKind = "theory"
	KindPractical QuestionKind = "practical"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

// UngradedAnswer is the catalog sentinel for questions that carry no
// authoritative answer (theory and practical items).
const UngradedAnswer = "N/A"

// Question is a read-mostly catalog entry. Catalog management lives outside
// this service; the CBT engine only samples and looks questions up.
type Question struct {
	ID       string                      `json:"id" gorm:"primaryKey;size:36"`
	ExamType ExamType                    `json:"exam_type" gorm:"not null;size:10;index:idx_questions_pool" validate:"required,exam_type"`
	Subject  string                      `json:"subject" gorm:"not null;size:100;index:idx_questions_pool" validate:"required,min=1,max=100"`
	Year     string                      `json:"year" gorm:"size:10;default:Unknown"`
	Kind     QuestionKind                `json:"kind" gorm:"not null;size:20;index:idx_questions_pool" validate:"required,question_kind"`
	Text     string                      `json:"text" gorm:"type:text;not null" validate:"required"`
	Options  datatypes.JSONSlice[string] `json:"options" gorm:"type:jsonb"`
	Answer   string                      `json:"answer" gorm:"size:255;default:N/A"`
	// Explanation is shown to students during review, never used for scoring.
	Explanation string          `json:"explanation" gorm:"type:text;default:No explanation available"`
	Points      int             `json:"points" gorm:"default:1" validate:"omitempty,min=1"`
	Difficulty  DifficultyLevel `json:"difficulty" gorm:"size:10;default:medium" validate:"omitempty,difficulty_level"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// IsGradable reports whether the question carries an authoritative answer the
// scoring engine may judge against.
func (q *Question) IsGradable() bool {
	return q.Kind == KindObjective && q.Answer != "" && q.Answer != UngradedAnswer
}
