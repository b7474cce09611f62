package postgres

import (
	"context"

	"github.com/naijaprep/cbt-service/internal/models"
	"github.com/naijaprep/cbt-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (q QuestionPostgreSQL) Create(ctx context.Context, question *models.Question) error {
	return q.db.WithContext(ctx).Create(question).Error
}

func (q QuestionPostgreSQL) CreateBatch(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return q.db.WithContext(ctx).CreateInBatches(questions, 100).Error
}

func (q QuestionPostgreSQL) GetByID(ctx context.Context, id string) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).First(&question, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q QuestionPostgreSQL) GetByIDs(ctx context.Context, ids []string) ([]*models.Question, error) {
	var questions []*models.Question
	if len(ids) == 0 {
		return questions, nil
	}
	if err := q.db.WithContext(ctx).Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

// Sample delegates the uniform draw to Postgres. ORDER BY RANDOM() is a full
// scan of the matching pool, which is acceptable at catalog sizes here and
// guarantees sampling without replacement.
func (q QuestionPostgreSQL) Sample(ctx context.Context, filters repositories.SampleFilters) ([]*models.Question, error) {
	var questions []*models.Question
	err := q.db.WithContext(ctx).
		Where("exam_type = ? AND subject = ? AND kind = ?", filters.ExamType, filters.Subject, filters.Kind).
		Order("RANDOM()").
		Limit(filters.Count).
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (q QuestionPostgreSQL) DistinctSubjects(ctx context.Context, examType models.ExamType) ([]string, error) {
	var subjects []string
	err := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("exam_type = ?", examType).
		Distinct("subject").
		Order("subject").
		Pluck("subject", &subjects).Error
	if err != nil {
		return nil, err
	}
	return subjects, nil
}

func (q QuestionPostgreSQL) DistinctYears(ctx context.Context, examType models.ExamType, subject string) ([]string, error) {
	var years []string
	err := q.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("exam_type = ? AND subject = ?", examType, subject).
		Distinct("year").
		Pluck("year", &years).Error
	if err != nil {
		return nil, err
	}
	sortYearsDescending(years)
	return years, nil
}
