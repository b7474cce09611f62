package models

import (
	"time"

	"gorm.io/datatypes"
)

// Performance is a user's rolling per-subject profile. It is derived state:
// the aggregator recomputes it wholesale from the full result history after
// every stored result and overwrites the previous value.
type Performance struct {
	TotalTests     int      `json:"total_tests"`
	AverageScore   float64  `json:"average_score"`
	WeakSubjects   []string `json:"weak_subjects"`   // per-subject mean < 60
	StrongSubjects []string `json:"strong_subjects"` // per-subject mean >= 80
}

// User is the minimal projection this service needs. Identity and session
// tokens are owned elsewhere; we only read the id and own the performance
// block.
type User struct {
	ID       string  `json:"id" gorm:"primaryKey;size:36"`
	FullName string  `json:"full_name" gorm:"size:100"`
	Email    *string `json:"email" gorm:"size:255"`

	Performance datatypes.JSONType[Performance] `json:"performance" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
