package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/naijaprep/cbt-service/internal/models"
)

// Validator wraps go-playground/validator with the domain's custom tags
// registered.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	RegisterCustomValidators(validate)
	return &Validator{validate: validate}
}

func (v *Validator) Validate(s interface{}) error {
	return v.validate.Struct(s)
}

// Custom validation functions

func ValidateExamType(fl validator.FieldLevel) bool {
	validTypes := []models.ExamType{
		models.ExamWAEC,
		models.ExamNECO,
		models.ExamJAMB,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func ValidateQuestionKind(fl validator.FieldLevel) bool {
	validKinds := []models.QuestionKind{
		models.KindObjective,
		models.KindTheory,
		models.KindPractical,
	}

	value := fl.Field().String()
	for _, validKind := range validKinds {
		if string(validKind) == value {
			return true
		}
	}
	return false
}

func ValidateDifficultyLevel(fl validator.FieldLevel) bool {
	validLevels := []models.DifficultyLevel{
		models.DifficultyEasy,
		models.DifficultyMedium,
		models.DifficultyHard,
	}

	value := fl.Field().String()
	for _, validLevel := range validLevels {
		if string(validLevel) == value {
			return true
		}
	}
	return false
}

// RegisterCustomValidators registers all custom validators.
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("exam_type", ValidateExamType)
	validate.RegisterValidation("question_kind", ValidateQuestionKind)
	validate.RegisterValidation("difficulty_level", ValidateDifficultyLevel)

	// Report json field names in validation errors.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
