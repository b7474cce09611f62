package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/naijaprep/cbt-service/internal/models"
	"github.com/naijaprep/cbt-service/internal/repositories"
	"github.com/naijaprep/cbt-service/internal/utils"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
)

// QuestionImportService seeds the question catalog from CSV or Excel files.
// Rows are validated independently: bad rows are reported, good rows land.
type QuestionImportService interface {
	ImportFromFile(ctx context.Context, reader io.Reader, filename string) (*ImportResult, error)
	ImportFromCSV(ctx context.Context, reader io.Reader) (*ImportResult, error)
	ImportFromExcel(ctx context.Context, reader io.Reader) (*ImportResult, error)
}

type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ImportResult struct {
	TotalRows    int              `json:"total_rows"`
	SuccessCount int              `json:"success_count"`
	ErrorCount   int              `json:"error_count"`
	Errors       []ImportRowError `json:"errors,omitempty"`
}

type questionImportService struct {
	questions repositories.QuestionRepository
	logger    utils.Logger
	validator *utils.Validator
}

func NewQuestionImportService(questions repositories.QuestionRepository, logger utils.Logger, validator *utils.Validator) QuestionImportService {
	return &questionImportService{
		questions: questions,
		logger:    logger,
		validator: validator,
	}
}

var requiredImportColumns = []string{"exam_type", "subject", "kind", "question"}

func (s *questionImportService) ImportFromFile(ctx context.Context, reader io.Reader, filename string) (*ImportResult, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		return s.ImportFromCSV(ctx, reader)
	case ".xlsx", ".xls":
		return s.ImportFromExcel(ctx, reader)
	default:
		return nil, fmt.Errorf("unsupported import format %q", ext)
	}
}

func (s *questionImportService) ImportFromCSV(ctx context.Context, reader io.Reader) (*ImportResult, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return s.importRows(ctx, records)
}

func (s *questionImportService) ImportFromExcel(ctx context.Context, reader io.Reader) (*ImportResult, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return s.importRows(ctx, rows)
}

func (s *questionImportService) importRows(ctx context.Context, rows [][]string) (*ImportResult, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("import needs a header row and at least one data row")
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range requiredImportColumns {
		if _, ok := headerMap[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	result := &ImportResult{TotalRows: len(rows) - 1}
	var questions []*models.Question

	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after header
		question, rowErrs := s.parseRow(row, headerMap, rowNum)
		if len(rowErrs) > 0 {
			result.Errors = append(result.Errors, rowErrs...)
			result.ErrorCount++
			continue
		}
		questions = append(questions, question)
	}

	if err := s.questions.CreateBatch(ctx, questions); err != nil {
		return nil, NewStorageError("import questions", err)
	}
	result.SuccessCount = len(questions)

	s.logger.Info("Imported question catalog rows",
		"total", result.TotalRows,
		"imported", result.SuccessCount,
		"failed", result.ErrorCount)

	return result, nil
}

func (s *questionImportService) parseRow(row []string, headerMap map[string]int, rowNum int) (*models.Question, []ImportRowError) {
	cell := func(name string) string {
		idx, ok := headerMap[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	question := &models.Question{
		ID:          uuid.NewString(),
		ExamType:    models.ExamType(strings.ToUpper(cell("exam_type"))),
		Subject:     cell("subject"),
		Year:        cell("year"),
		Kind:        models.QuestionKind(strings.ToLower(cell("kind"))),
		Text:        cell("question"),
		Answer:      cell("answer"),
		Explanation: cell("explanation"),
		Difficulty:  models.DifficultyLevel(strings.ToLower(cell("difficulty"))),
		Points:      1,
	}
	if question.Year == "" {
		question.Year = "Unknown"
	}
	if question.Answer == "" {
		question.Answer = models.UngradedAnswer
	}
	if question.Explanation == "" {
		question.Explanation = "No explanation available"
	}
	if question.Difficulty == "" {
		question.Difficulty = models.DifficultyMedium
	}
	if options := cell("options"); options != "" {
		question.Options = datatypes.NewJSONSlice(strings.Split(options, "|"))
	}
	if points := cell("points"); points != "" {
		parsed, err := strconv.Atoi(points)
		if err != nil || parsed < 1 {
			return nil, []ImportRowError{{Row: rowNum, Field: "points", Message: "points must be a positive integer"}}
		}
		question.Points = parsed
	}

	if err := s.validator.Validate(question); err != nil {
		return nil, []ImportRowError{{Row: rowNum, Field: "row", Message: err.Error()}}
	}
	return question, nil
}
