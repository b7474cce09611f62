package postgres

import (
	"context"

	"github.com/naijaprep/cbt-service/internal/models"
	"github.com/naijaprep/cbt-service/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u UserPostgreSQL) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePerformance overwrites the whole performance block. The aggregator
// always recomputes from full history, so there is no partial update path.
func (u UserPostgreSQL) UpdatePerformance(ctx context.Context, userID string, performance models.Performance) error {
	res := u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("performance", datatypes.NewJSONType(performance))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
