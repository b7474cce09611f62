package postgres

import (
	"context"

	"github.com/naijaprep/cbt-service/internal/models"
	"github.com/naijaprep/cbt-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResultPostgreSQL struct {
	db *gorm.DB
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{db: db}
}

// Create inserts the result unless one already exists for the session. The
// unique index on session_id collapses concurrent duplicate submissions into
// a single stored row; losers see a silent no-op and re-read by session.
func (r ResultPostgreSQL) Create(ctx context.Context, result *models.CBTResult) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoNothing: true,
		}).
		Create(result).Error
}

func (r ResultPostgreSQL) GetBySession(ctx context.Context, sessionID string) (*models.CBTResult, error) {
	var result models.CBTResult
	if err := r.db.WithContext(ctx).First(&result, "session_id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r ResultPostgreSQL) FindByUser(ctx context.Context, userID string, limit int) ([]*models.CBTResult, error) {
	var results []*models.CBTResult
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
