package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/naijaprep/cbt-service/internal/models"
	"github.com/naijaprep/cbt-service/internal/repositories"
	"github.com/naijaprep/cbt-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func resultWithScore(userID, subject string, percentage float64) *models.CBTResult {
	return &models.CBTResult{
		ID:        uuid.NewString(),
		SessionID: uuid.NewString(),
		UserID:    userID,
		ExamType:  models.ExamWAEC,
		Subject:   subject,
		Score: datatypes.NewJSONType(models.ScoreBlock{
			Overall: models.OverallScore{Percentage: percentage, Grade: GradeFor(percentage)},
		}),
		CompletedAt: time.Now(),
	}
}

func TestComputePerformance_EmptyHistory(t *testing.T) {
	performance := ComputePerformance(nil)

	assert.Equal(t, 0, performance.TotalTests)
	assert.InDelta(t, 0, performance.AverageScore, 0.0001)
	assert.Empty(t, performance.WeakSubjects)
	assert.Empty(t, performance.StrongSubjects)
	assert.NotNil(t, performance.WeakSubjects, "subject lists serialize as [], not null")
}

func TestComputePerformance_Classification(t *testing.T) {
	history := []*models.CBTResult{
		resultWithScore("u1", "Mathematics", 90),
		resultWithScore("u1", "Mathematics", 82),
		resultWithScore("u1", "English", 40),
		resultWithScore("u1", "Chemistry", 65),
	}

	performance := ComputePerformance(history)

	assert.Equal(t, 4, performance.TotalTests)
	assert.InDelta(t, (90+82+40+65)/4.0, performance.AverageScore, 0.0001)
	assert.Equal(t, []string{"English"}, performance.WeakSubjects)
	assert.Equal(t, []string{"Mathematics"}, performance.StrongSubjects)
}

func TestComputePerformance_Thresholds(t *testing.T) {
	tests := []struct {
		name   string
		score  float64
		weak   bool
		strong bool
	}{
		{"just under weak cutoff", 59.9, true, false},
		{"exactly at weak cutoff", 60, false, false},
		{"between cutoffs", 79.9, false, false},
		{"exactly at strong cutoff", 80, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			performance := ComputePerformance([]*models.CBTResult{
				resultWithScore("u1", "Biology", tt.score),
			})
			assert.Equal(t, tt.weak, len(performance.WeakSubjects) == 1)
			assert.Equal(t, tt.strong, len(performance.StrongSubjects) == 1)
		})
	}
}

func TestComputePerformance_SubjectMeanNotSingleResult(t *testing.T) {
	// One bad outing does not mark a subject weak when the mean holds up.
	history := []*models.CBTResult{
		resultWithScore("u1", "Physics", 40),
		resultWithScore("u1", "Physics", 90),
	}

	performance := ComputePerformance(history)

	assert.Empty(t, performance.WeakSubjects)
	assert.Empty(t, performance.StrongSubjects)
}

func TestPerformanceAggregator_Recompute(t *testing.T) {
	results := newFakeResultRepo()
	users := &MockUserRepository{}
	aggregator := NewPerformanceAggregator(results, users, utils.NewDevelopmentLogger())

	require.NoError(t, results.Create(context.Background(), resultWithScore("u1", "Mathematics", 85)))
	require.NoError(t, results.Create(context.Background(), resultWithScore("u1", "English", 50)))

	users.On("UpdatePerformance", mock.Anything, "u1", mock.MatchedBy(func(p models.Performance) bool {
		return p.TotalTests == 2
	})).Return(nil)

	performance, err := aggregator.Recompute(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, 2, performance.TotalTests)
	assert.InDelta(t, 67.5, performance.AverageScore, 0.0001)
	users.AssertExpectations(t)
}

func TestPerformanceAggregator_UnknownUser(t *testing.T) {
	results := newFakeResultRepo()
	users := &MockUserRepository{}
	aggregator := NewPerformanceAggregator(results, users, utils.NewDevelopmentLogger())

	users.On("UpdatePerformance", mock.Anything, "ghost", mock.Anything).
		Return(repositories.ErrNotFound)

	_, err := aggregator.Recompute(context.Background(), "ghost")

	assert.ErrorIs(t, err, ErrUserNotFound)
}
