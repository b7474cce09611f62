package services

import (
	"math"
	"strings"

	"github.com/naijaprep/cbt-service/internal/models"
)

// Grade bands, inclusive lower bounds. Highest matching band wins.
var gradeBands = []struct {
	min   float64
	grade string
}{
	{90, "A+"},
	{80, "A"},
	{70, "B"},
	{60, "C"},
	{50, "D"},
}

// GradeFor maps an overall percentage to its letter grade.
func GradeFor(percentage float64) string {
	for _, band := range gradeBands {
		if percentage >= band.min {
			return band.grade
		}
	}
	return "F"
}

// ScoreAttempt evaluates collected answers against the authoritative catalog
// entries and produces the full score block with per-question outcomes.
//
// It is a pure function: no clock, no storage, no failure modes. Every
// degenerate input (missing answer, missing authoritative key, zero objective
// questions) degrades to "not correct" or a zero percentage rather than an
// error. Identical inputs always produce an identical score block.
//
// Question kind comes from the catalog lookup, never from the client, so a
// tampered payload cannot reclassify a graded question as ungraded.
func ScoreAttempt(questions []*models.Question, answers map[string]models.AnswerRecord) ([]models.QuestionOutcome, models.ScoreBlock) {
	outcomes := make([]models.QuestionOutcome, 0, len(questions))

	var objectiveTotal, objectiveCorrect int
	var theoryTotal, theoryAnswered int

	for _, question := range questions {
		record, answered := answers[question.ID]

		outcome := models.QuestionOutcome{
			QuestionID: question.ID,
			UserAnswer: record.Answer,
			TimeSpent:  clampNonNegative(record.TimeSpent),
		}

		switch question.Kind {
		case models.KindObjective:
			objectiveTotal++
			correct := answered && answersMatch(record.Answer, question.Answer)
			if correct {
				objectiveCorrect++
			}
			outcome.IsCorrect = &correct
		default:
			// Theory and practical answers are never auto-graded; they count
			// toward completion stats only.
			theoryTotal++
			if answered && strings.TrimSpace(record.Answer) != "" {
				theoryAnswered++
			}
		}

		outcomes = append(outcomes, outcome)
	}

	var objectivePercentage float64
	if objectiveTotal > 0 {
		// Rounded to two decimals so 2/3 serializes as 66.67, not a full
		// float64 expansion.
		objectivePercentage = roundPercentage(float64(objectiveCorrect) / float64(objectiveTotal) * 100)
	}

	score := models.ScoreBlock{
		Objectives: models.ObjectiveScore{
			Total:      objectiveTotal,
			Correct:    objectiveCorrect,
			Percentage: objectivePercentage,
		},
		Theory: models.TheoryScore{
			Total:    theoryTotal,
			Answered: theoryAnswered,
		},
		Overall: models.OverallScore{
			Percentage: objectivePercentage,
			Grade:      GradeFor(objectivePercentage),
		},
	}

	return outcomes, score
}

// answersMatch compares a user answer against the authoritative answer:
// whitespace-trimmed, case-insensitive. The "N/A" sentinel and empty keys
// never match anything.
func answersMatch(userAnswer, authoritative string) bool {
	authoritative = strings.TrimSpace(authoritative)
	if authoritative == "" || authoritative == models.UngradedAnswer {
		return false
	}
	userAnswer = strings.TrimSpace(userAnswer)
	if userAnswer == "" {
		return false
	}
	return strings.EqualFold(userAnswer, authoritative)
}

func roundPercentage(p float64) float64 {
	return math.Round(p*100) / 100
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
