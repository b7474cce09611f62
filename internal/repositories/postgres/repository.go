package postgres

import (
	"context"

	"github.com/naijaprep/cbt-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	db       *gorm.DB
	question repositories.QuestionRepository
	result   repositories.ResultRepository
	user     repositories.UserRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:       db,
		question: NewQuestionPostgreSQL(db),
		result:   NewResultPostgreSQL(db),
		user:     NewUserPostgreSQL(db),
	}
}

func (r *repository) Question() repositories.QuestionRepository { return r.question }
func (r *repository) Result() repositories.ResultRepository     { return r.result }
func (r *repository) User() repositories.UserRepository         { return r.user }

func (r *repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
