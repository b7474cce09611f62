package services

import (
	"context"
	"sort"

	"github.com/naijaprep/cbt-service/internal/models"
	"github.com/naijaprep/cbt-service/internal/repositories"
	"github.com/naijaprep/cbt-service/internal/utils"
)

// Per-subject mean thresholds for the weak/strong classification.
const (
	weakSubjectThreshold   = 60.0
	strongSubjectThreshold = 80.0
)

// ComputePerformance derives a performance profile from a full result
// history. Pure: the same history always yields the same profile, and no
// state survives between calls. Subject lists come out sorted so repeated
// recomputes are byte-identical.
func ComputePerformance(history []*models.CBTResult) models.Performance {
	performance := models.Performance{
		TotalTests:     len(history),
		WeakSubjects:   []string{},
		StrongSubjects: []string{},
	}
	if len(history) == 0 {
		return performance
	}

	var sum float64
	subjectSums := make(map[string]float64)
	subjectCounts := make(map[string]int)

	for _, result := range history {
		overall := result.Score.Data().Overall.Percentage
		sum += overall
		subjectSums[result.Subject] += overall
		subjectCounts[result.Subject]++
	}
	performance.AverageScore = sum / float64(len(history))

	for subject, total := range subjectSums {
		mean := total / float64(subjectCounts[subject])
		switch {
		case mean < weakSubjectThreshold:
			performance.WeakSubjects = append(performance.WeakSubjects, subject)
		case mean >= strongSubjectThreshold:
			performance.StrongSubjects = append(performance.StrongSubjects, subject)
		}
	}
	sort.Strings(performance.WeakSubjects)
	sort.Strings(performance.StrongSubjects)

	return performance
}

// PerformanceAggregator recomputes a user's profile from scratch after each
// stored result. O(history) per call by design; it must only run after the
// triggering result is durable so the profile never reflects a phantom read.
type PerformanceAggregator struct {
	results repositories.ResultRepository
	users   repositories.UserRepository
	logger  utils.Logger
}

func NewPerformanceAggregator(results repositories.ResultRepository, users repositories.UserRepository, logger utils.Logger) *PerformanceAggregator {
	return &PerformanceAggregator{
		results: results,
		users:   users,
		logger:  logger,
	}
}

// Recompute fetches the full history, derives the profile and overwrites the
// stored one wholesale.
func (a *PerformanceAggregator) Recompute(ctx context.Context, userID string) (models.Performance, error) {
	history, err := a.results.FindByUser(ctx, userID, 0)
	if err != nil {
		return models.Performance{}, NewStorageError("load result history", err)
	}

	performance := ComputePerformance(history)

	if err := a.users.UpdatePerformance(ctx, userID, performance); err != nil {
		if repositories.IsNotFoundError(err) {
			return models.Performance{}, ErrUserNotFound
		}
		return models.Performance{}, NewStorageError("update performance", err)
	}

	a.logger.Info("Recomputed user performance",
		"user_id", userID,
		"total_tests", performance.TotalTests,
		"average_score", performance.AverageScore)

	return performance, nil
}
