package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/naijaprep/cbt-service/internal/models"
	"github.com/naijaprep/cbt-service/internal/services"
	"github.com/naijaprep/cbt-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSessionService lets each test script the service surface directly.
type stubSessionService struct {
	start         func(ctx context.Context, req *services.StartSessionRequest) (*services.SessionResponse, error)
	recordAnswer  func(ctx context.Context, req *services.RecordAnswerRequest) error
	submit        func(ctx context.Context, sessionID string) (*models.CBTResult, error)
	timeRemaining func(ctx context.Context, sessionID string) (int, error)
	results       func(ctx context.Context, userID string, limit int) ([]*models.CBTResult, error)
	subjects      func(ctx context.Context, examType models.ExamType) ([]string, error)
	years         func(ctx context.Context, examType models.ExamType, subject string) ([]string, error)
}

func (s *stubSessionService) Start(ctx context.Context, req *services.StartSessionRequest) (*services.SessionResponse, error) {
	return s.start(ctx, req)
}

func (s *stubSessionService) RecordAnswer(ctx context.Context, req *services.RecordAnswerRequest) error {
	return s.recordAnswer(ctx, req)
}

func (s *stubSessionService) Submit(ctx context.Context, sessionID string) (*models.CBTResult, error) {
	return s.submit(ctx, sessionID)
}

func (s *stubSessionService) TimeRemaining(ctx context.Context, sessionID string) (int, error) {
	return s.timeRemaining(ctx, sessionID)
}

func (s *stubSessionService) Results(ctx context.Context, userID string, limit int) ([]*models.CBTResult, error) {
	return s.results(ctx, userID, limit)
}

func (s *stubSessionService) Subjects(ctx context.Context, examType models.ExamType) ([]string, error) {
	return s.subjects(ctx, examType)
}

func (s *stubSessionService) Years(ctx context.Context, examType models.ExamType, subject string) ([]string, error) {
	return s.years(ctx, examType, subject)
}

func (s *stubSessionService) Close() {}

type stubImportService struct {
	importFromFile func(ctx context.Context, reader io.Reader, filename string) (*services.ImportResult, error)
}

func (s *stubImportService) ImportFromFile(ctx context.Context, reader io.Reader, filename string) (*services.ImportResult, error) {
	return s.importFromFile(ctx, reader, filename)
}

func (s *stubImportService) ImportFromCSV(ctx context.Context, reader io.Reader) (*services.ImportResult, error) {
	return nil, nil
}

func (s *stubImportService) ImportFromExcel(ctx context.Context, reader io.Reader) (*services.ImportResult, error) {
	return nil, nil
}

func newTestRouter(sessions services.SessionService, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if userID != "" {
		router.Use(func(c *gin.Context) {
			c.Set("user_id", userID)
			c.Next()
		})
	}

	manager := NewHandlerManager(sessions, &stubImportService{}, utils.NewValidator(), utils.NewDevelopmentLogger())
	manager.SetupRoutes(router)
	return router
}

func TestStartSession(t *testing.T) {
	sessionID := uuid.NewString()
	stub := &stubSessionService{
		start: func(ctx context.Context, req *services.StartSessionRequest) (*services.SessionResponse, error) {
			assert.Equal(t, "user-1", req.UserID)
			assert.Equal(t, models.ExamWAEC, req.ExamType)
			assert.Equal(t, "Mathematics", req.Subject)
			return &services.SessionResponse{
				SessionID:      sessionID,
				ExamType:       req.ExamType,
				Subject:        req.Subject,
				Duration:       5400,
				TotalQuestions: 57,
			}, nil
		},
	}
	router := newTestRouter(stub, "user-1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cbt/questions/WAEC/Mathematics", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body services.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, sessionID, body.SessionID)
	assert.Equal(t, 57, body.TotalQuestions)
}

func TestStartSession_Unauthenticated(t *testing.T) {
	router := newTestRouter(&stubSessionService{}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cbt/questions/WAEC/Mathematics", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStartSession_InvalidSelection(t *testing.T) {
	stub := &stubSessionService{
		start: func(ctx context.Context, req *services.StartSessionRequest) (*services.SessionResponse, error) {
			return nil, services.ErrInvalidSelection
		},
	}
	router := newTestRouter(stub, "user-1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cbt/questions/WAEC/Latin", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordAnswer(t *testing.T) {
	recorded := false
	stub := &stubSessionService{
		recordAnswer: func(ctx context.Context, req *services.RecordAnswerRequest) error {
			recorded = true
			assert.Equal(t, "q1", req.QuestionID)
			return nil
		},
	}
	router := newTestRouter(stub, "user-1")

	payload := `{"session_id":"` + uuid.NewString() + `","question_id":"q1","answer":"A","time_spent":30}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cbt/answer", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, recorded)
}

func TestRecordAnswer_MalformedSessionID(t *testing.T) {
	router := newTestRouter(&stubSessionService{}, "user-1")

	payload := `{"session_id":"not-a-uuid","question_id":"q1","answer":"A"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cbt/answer", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordAnswer_UnknownQuestion(t *testing.T) {
	stub := &stubSessionService{
		recordAnswer: func(ctx context.Context, req *services.RecordAnswerRequest) error {
			return services.ErrUnknownQuestion
		},
	}
	router := newTestRouter(stub, "user-1")

	payload := `{"session_id":"` + uuid.NewString() + `","question_id":"rogue","answer":"A"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cbt/answer", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSubmit_SessionNotActive(t *testing.T) {
	stub := &stubSessionService{
		submit: func(ctx context.Context, sessionID string) (*models.CBTResult, error) {
			return nil, services.ErrSessionNotActive
		},
	}
	router := newTestRouter(stub, "user-1")

	payload := `{"session_id":"` + uuid.NewString() + `"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cbt/submit", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTimeRemaining(t *testing.T) {
	stub := &stubSessionService{
		timeRemaining: func(ctx context.Context, sessionID string) (int, error) {
			return 4321, nil
		},
	}
	router := newTestRouter(stub, "user-1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cbt/time-remaining/"+uuid.NewString(), nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"time_remaining":4321}`, w.Body.String())
}

func TestResults_InvalidLimit(t *testing.T) {
	router := newTestRouter(&stubSessionService{}, "user-1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cbt/results?limit=-3", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubjects(t *testing.T) {
	stub := &stubSessionService{
		subjects: func(ctx context.Context, examType models.ExamType) ([]string, error) {
			assert.Equal(t, models.ExamJAMB, examType)
			return []string{"English", "Mathematics"}, nil
		},
	}
	router := newTestRouter(stub, "user-1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/questions/subjects/JAMB", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["English","Mathematics"]`, w.Body.String())
}

func TestYears(t *testing.T) {
	stub := &stubSessionService{
		years: func(ctx context.Context, examType models.ExamType, subject string) ([]string, error) {
			return []string{"2023", "2022", "Unknown"}, nil
		},
	}
	router := newTestRouter(stub, "user-1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/questions/years/WAEC/Mathematics", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["2023","2022","Unknown"]`, w.Body.String())
}
