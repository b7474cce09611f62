package services

import (
	"context"
	"errors"
	"testing"

	"github.com/naijaprep/cbt-service/internal/models"
	"github.com/naijaprep/cbt-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSampleQuestions(t *testing.T) {
	repo := &MockQuestionRepository{}

	objectives := []*models.Question{objectiveQuestion("q1", "A"), objectiveQuestion("q2", "B")}
	theories := []*models.Question{theoryQuestion("t1")}

	repo.On("Sample", mock.Anything, repositories.SampleFilters{
		ExamType: models.ExamWAEC,
		Subject:  "Mathematics",
		Kind:     models.KindObjective,
		Count:    ObjectiveSampleSize,
	}).Return(objectives, nil)
	repo.On("Sample", mock.Anything, repositories.SampleFilters{
		ExamType: models.ExamWAEC,
		Subject:  "Mathematics",
		Kind:     models.KindTheory,
		Count:    TheorySampleSize,
	}).Return(theories, nil)

	sampled, err := SampleQuestions(context.Background(), repo, models.ExamWAEC, "Mathematics")

	require.NoError(t, err)
	objectiveIDs, theoryIDs := sampled.IDs()
	assert.Equal(t, []string{"q1", "q2"}, objectiveIDs)
	assert.Equal(t, []string{"t1"}, theoryIDs)
	repo.AssertExpectations(t)
}

// A pool smaller than the draw yields the whole pool, never an error.
func TestSampleQuestions_UnderFilledPool(t *testing.T) {
	repo := &MockQuestionRepository{}

	repo.On("Sample", mock.Anything, mock.MatchedBy(func(f repositories.SampleFilters) bool {
		return f.Kind == models.KindObjective
	})).Return([]*models.Question{objectiveQuestion("q1", "A")}, nil)
	repo.On("Sample", mock.Anything, mock.MatchedBy(func(f repositories.SampleFilters) bool {
		return f.Kind == models.KindTheory
	})).Return([]*models.Question{}, nil)

	sampled, err := SampleQuestions(context.Background(), repo, models.ExamJAMB, "Physics")

	require.NoError(t, err)
	assert.Len(t, sampled.Objectives, 1)
	assert.Empty(t, sampled.Theories)
}

func TestSampleQuestions_StorageFailureIsRetryable(t *testing.T) {
	repo := &MockQuestionRepository{}
	repo.On("Sample", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := SampleQuestions(context.Background(), repo, models.ExamNECO, "Chemistry")

	require.Error(t, err)
	assert.True(t, IsRetryable(err))
}
