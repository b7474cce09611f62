package repositories

import (
	"context"
	"errors"

	"github.com/naijaprep/cbt-service/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned by lookups that matched nothing. Storage-level
// failures are returned as-is and should be treated as retryable.
var ErrNotFound = errors.New("record not found")

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// SampleFilters narrows the catalog pool a random draw is taken from.
type SampleFilters struct {
	ExamType models.ExamType     `json:"exam_type"`
	Subject  string              `json:"subject"`
	Kind     models.QuestionKind `json:"kind"`
	Count    int                 `json:"count"`
}

// QuestionRepository supplies the catalog the engine samples from. The
// catalog is authored elsewhere; Create/CreateBatch exist for the import
// path only.
type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	CreateBatch(ctx context.Context, questions []*models.Question) error
	GetByID(ctx context.Context, id string) (*models.Question, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Question, error)

	// Sample draws up to filters.Count questions uniformly at random without
	// replacement from the matching pool. A pool smaller than Count yields
	// the whole pool, not an error.
	Sample(ctx context.Context, filters SampleFilters) ([]*models.Question, error)

	DistinctSubjects(ctx context.Context, examType models.ExamType) ([]string, error)
	DistinctYears(ctx context.Context, examType models.ExamType, subject string) ([]string, error)
}

// ResultRepository stores scored results. Create must be idempotent on
// session id: a second insert for the same session is a no-op and callers
// fall back to GetBySession.
type ResultRepository interface {
	Create(ctx context.Context, result *models.CBTResult) error
	GetBySession(ctx context.Context, sessionID string) (*models.CBTResult, error)
	FindByUser(ctx context.Context, userID string, limit int) ([]*models.CBTResult, error)
}

// UserRepository is the profile store surface the aggregator writes to.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdatePerformance(ctx context.Context, userID string, performance models.Performance) error
}

// Repository aggregates the per-entity repositories, mirroring how services
// receive their data dependencies.
type Repository interface {
	Question() QuestionRepository
	Result() ResultRepository
	User() UserRepository
	Ping(ctx context.Context) error
}
