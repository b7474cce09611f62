package services

import (
	"context"
	"sort"
	"sync"

	"github.com/naijaprep/cbt-service/internal/models"
	"github.com/naijaprep/cbt-service/internal/repositories"
	"github.com/stretchr/testify/mock"
)

// MockQuestionRepository is a mock implementation of QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) CreateBatch(ctx context.Context, questions []*models.Question) error {
	args := m.Called(ctx, questions)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id string) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Question, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) Sample(ctx context.Context, filters repositories.SampleFilters) ([]*models.Question, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) DistinctSubjects(ctx context.Context, examType models.ExamType) ([]string, error) {
	args := m.Called(ctx, examType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockQuestionRepository) DistinctYears(ctx context.Context, examType models.ExamType, subject string) ([]string, error) {
	args := m.Called(ctx, examType, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePerformance(ctx context.Context, userID string, performance models.Performance) error {
	args := m.Called(ctx, userID, performance)
	return args.Error(0)
}

// fakeResultRepo is an in-memory ResultRepository with the same idempotence
// contract as the Postgres implementation: one row per session id, first
// writer wins.
type fakeResultRepo struct {
	mu        sync.Mutex
	bySession map[string]*models.CBTResult
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{bySession: make(map[string]*models.CBTResult)}
}

func (f *fakeResultRepo) Create(ctx context.Context, result *models.CBTResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.bySession[result.SessionID]; ok {
		return nil
	}
	stored := *result
	f.bySession[result.SessionID] = &stored
	return nil
}

func (f *fakeResultRepo) GetBySession(ctx context.Context, sessionID string) (*models.CBTResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result, ok := f.bySession[sessionID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *result
	return &copied, nil
}

func (f *fakeResultRepo) FindByUser(ctx context.Context, userID string, limit int) ([]*models.CBTResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var results []*models.CBTResult
	for _, result := range f.bySession {
		if result.UserID == userID {
			copied := *result
			results = append(results, &copied)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CompletedAt.After(results[j].CompletedAt)
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (f *fakeResultRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bySession)
}

// mockRepository aggregates the per-entity test doubles.
type mockRepository struct {
	questions *MockQuestionRepository
	results   *fakeResultRepo
	users     *MockUserRepository
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		questions: &MockQuestionRepository{},
		results:   newFakeResultRepo(),
		users:     &MockUserRepository{},
	}
}

func (m *mockRepository) Question() repositories.QuestionRepository { return m.questions }
func (m *mockRepository) Result() repositories.ResultRepository     { return m.results }
func (m *mockRepository) User() repositories.UserRepository         { return m.users }
func (m *mockRepository) Ping(ctx context.Context) error            { return nil }
