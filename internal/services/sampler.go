package services

import (
	"context"

	"github.com/naijaprep/cbt-service/internal/models"
	"github.com/naijaprep/cbt-service/internal/repositories"
)

// Session composition. The engine always asks for the full draw; pools with
// fewer matching questions yield smaller sessions, never an error.
const (
	ObjectiveSampleSize = 50
	TheorySampleSize    = 7
)

// SampledSet is one session's worth of questions, drawn uniformly at random
// without replacement from the catalog pool for an exam type and subject.
// The objective and theory sets are disjoint because they are drawn from
// disjoint kinds.
type SampledSet struct {
	Objectives []*models.Question
	Theories   []*models.Question
}

// SampleQuestions draws the fixed session composition. Repository failures
// surface as transient storage errors; retrying is the caller's call.
func SampleQuestions(ctx context.Context, repo repositories.QuestionRepository, examType models.ExamType, subject string) (*SampledSet, error) {
	objectives, err := repo.Sample(ctx, repositories.SampleFilters{
		ExamType: examType,
		Subject:  subject,
		Kind:     models.KindObjective,
		Count:    ObjectiveSampleSize,
	})
	if err != nil {
		return nil, NewStorageError("sample objective questions", err)
	}

	theories, err := repo.Sample(ctx, repositories.SampleFilters{
		ExamType: examType,
		Subject:  subject,
		Kind:     models.KindTheory,
		Count:    TheorySampleSize,
	})
	if err != nil {
		return nil, NewStorageError("sample theory questions", err)
	}

	return &SampledSet{Objectives: objectives, Theories: theories}, nil
}

// IDs returns the sampled question ids in draw order.
func (s *SampledSet) IDs() (objectiveIDs, theoryIDs []string) {
	objectiveIDs = make([]string, len(s.Objectives))
	for i, q := range s.Objectives {
		objectiveIDs[i] = q.ID
	}
	theoryIDs = make([]string, len(s.Theories))
	for i, q := range s.Theories {
		theoryIDs[i] = q.ID
	}
	return objectiveIDs, theoryIDs
}
