package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/naijaprep/cbt-service/internal/events"
	"github.com/naijaprep/cbt-service/internal/models"
	"github.com/naijaprep/cbt-service/internal/repositories"
	"github.com/naijaprep/cbt-service/internal/store"
	"github.com/naijaprep/cbt-service/internal/utils"
	"gorm.io/datatypes"
)

// Result history returned to clients, newest first.
const resultHistoryLimit = 20

type StartSessionRequest struct {
	UserID   string          `json:"user_id" validate:"required"`
	ExamType models.ExamType `json:"exam_type" validate:"required,exam_type"`
	Subject  string          `json:"subject" validate:"required,min=1,max=100"`
}

type RecordAnswerRequest struct {
	SessionID  string `json:"session_id" validate:"required,uuid4"`
	QuestionID string `json:"question_id" validate:"required"`
	Answer     string `json:"answer"`
	TimeSpent  int    `json:"time_spent" validate:"omitempty,min=0"`
}

// SessionResponse hands the client its session with the sampled questions.
// The full objective draw is returned; clients must tolerate under-filled
// sets when the catalog pool is small.
type SessionResponse struct {
	SessionID      string             `json:"session_id"`
	ExamType       models.ExamType    `json:"exam_type"`
	Subject        string             `json:"subject"`
	StartedAt      time.Time          `json:"started_at"`
	Duration       int                `json:"duration"`
	Objectives     []*models.Question `json:"objectives"`
	Theories       []*models.Question `json:"theories"`
	TotalQuestions int                `json:"total_questions"`
}

// SessionService is the surface the rest of the application drives: it owns
// the session lifecycle from sampling through scoring to the stored result.
type SessionService interface {
	Start(ctx context.Context, req *StartSessionRequest) (*SessionResponse, error)
	RecordAnswer(ctx context.Context, req *RecordAnswerRequest) error
	Submit(ctx context.Context, sessionID string) (*models.CBTResult, error)
	TimeRemaining(ctx context.Context, sessionID string) (int, error)
	Results(ctx context.Context, userID string, limit int) ([]*models.CBTResult, error)
	Subjects(ctx context.Context, examType models.ExamType) ([]string, error)
	Years(ctx context.Context, examType models.ExamType, subject string) ([]string, error)
	Close()
}

type sessionService struct {
	repo       repositories.Repository
	sessions   store.SessionStore
	timers     *ExpiryTimers
	aggregator *PerformanceAggregator
	publisher  events.EventPublisher
	logger     utils.Logger
	validator  *utils.Validator

	now func() time.Time
}

func NewSessionService(
	repo repositories.Repository,
	sessions store.SessionStore,
	publisher events.EventPublisher,
	logger utils.Logger,
	validator *utils.Validator,
) SessionService {
	return &sessionService{
		repo:       repo,
		sessions:   sessions,
		timers:     NewExpiryTimers(),
		aggregator: NewPerformanceAggregator(repo.Result(), repo.User(), logger),
		publisher:  publisher,
		logger:     logger,
		validator:  validator,
		now:        time.Now,
	}
}

// ===== SESSION LIFECYCLE =====

func (s *sessionService) Start(ctx context.Context, req *StartSessionRequest) (*SessionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	s.logger.Info("Starting CBT session",
		"user_id", req.UserID,
		"exam_type", req.ExamType,
		"subject", req.Subject)

	if err := s.checkSelection(ctx, req.ExamType, req.Subject); err != nil {
		return nil, err
	}

	sampled, err := SampleQuestions(ctx, s.repo.Question(), req.ExamType, req.Subject)
	if err != nil {
		return nil, err
	}
	objectiveIDs, theoryIDs := sampled.IDs()

	session := &models.ExamSession{
		ID:           uuid.NewString(),
		UserID:       req.UserID,
		ExamType:     req.ExamType,
		Subject:      req.Subject,
		ObjectiveIDs: objectiveIDs,
		TheoryIDs:    theoryIDs,
		StartedAt:    s.now(),
		Duration:     int(models.SessionDuration.Seconds()),
		Status:       models.SessionInProgress,
		Answers:      map[string]models.AnswerRecord{},
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, NewStorageError("save session", err)
	}

	s.timers.Arm(session.ID, session.EndsAt().Sub(s.now()), func() {
		s.handleExpiry(session.ID)
	})

	s.logger.Info("CBT session started",
		"session_id", session.ID,
		"objective_count", len(objectiveIDs),
		"theory_count", len(theoryIDs))

	return &SessionResponse{
		SessionID:      session.ID,
		ExamType:       session.ExamType,
		Subject:        session.Subject,
		StartedAt:      session.StartedAt,
		Duration:       session.Duration,
		Objectives:     stripAnswers(sampled.Objectives),
		Theories:       stripAnswers(sampled.Theories),
		TotalQuestions: len(objectiveIDs) + len(theoryIDs),
	}, nil
}

func (s *sessionService) RecordAnswer(ctx context.Context, req *RecordAnswerRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	session, err := s.sessions.Get(ctx, req.SessionID)
	if err != nil {
		return mapStoreError(err)
	}

	if session.Status != models.SessionInProgress {
		return ErrSessionNotActive
	}
	if session.TimeRemaining(s.now()) == 0 {
		// Deadline passed but the timer has not fired yet (or was lost to a
		// restart). Force the expiry path and reject the write.
		go s.handleExpiry(req.SessionID)
		return ErrSessionNotActive
	}
	if !session.HasQuestion(req.QuestionID) {
		return ErrUnknownQuestion
	}

	record := models.AnswerRecord{
		QuestionID: req.QuestionID,
		Answer:     req.Answer,
		TimeSpent:  clampNonNegative(req.TimeSpent),
	}
	if err := s.sessions.PutAnswer(ctx, req.SessionID, record); err != nil {
		return mapStoreError(err)
	}
	return nil
}

func (s *sessionService) Submit(ctx context.Context, sessionID string) (*models.CBTResult, error) {
	return s.submit(ctx, sessionID, models.EndReasonManual)
}

func (s *sessionService) TimeRemaining(ctx context.Context, sessionID string) (int, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return 0, mapStoreError(err)
	}
	if session.Status != models.SessionInProgress {
		return 0, ErrSessionNotActive
	}
	return session.TimeRemaining(s.now()), nil
}

// ===== SUBMISSION =====

// submit resolves the race between a manual submit and the expiry timer: the
// session store's compare-and-set lets exactly one caller through, and every
// other caller is served the already-stored result.
func (s *sessionService) submit(ctx context.Context, sessionID string, reason models.SessionEndReason) (*models.CBTResult, error) {
	session, err := s.sessions.BeginScoring(ctx, sessionID)
	if err != nil {
		switch err {
		case store.ErrScoringClaimed:
			return s.awaitStoredResult(ctx, sessionID)
		case store.ErrSessionNotFound:
			// The session may already be scored and collected; the result
			// outlives it.
			return s.storedResult(ctx, sessionID)
		default:
			return nil, NewStorageError("claim scoring", err)
		}
	}

	s.timers.Cancel(sessionID)

	result, err := s.scoreAndPersist(ctx, session, reason)
	if err != nil {
		// Hand the claim back so a retry with the same session id can win it
		// again.
		session.Status = models.SessionInProgress
		if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
			s.logger.Error("Failed to release scoring claim",
				"session_id", sessionID, "error", saveErr)
		}
		return nil, err
	}

	// The profile recompute and the result event both require the durable
	// write above; neither may fail the submission that already happened.
	if _, err := s.aggregator.Recompute(ctx, session.UserID); err != nil {
		s.logger.Error("Failed to recompute performance",
			"user_id", session.UserID, "session_id", sessionID, "error", err)
	}
	s.publishResult(ctx, result)

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		s.logger.Error("Failed to discard scored session",
			"session_id", sessionID, "error", err)
	}

	s.logger.Info("CBT session scored",
		"session_id", sessionID,
		"user_id", session.UserID,
		"grade", result.Score.Data().Overall.Grade,
		"end_reason", reason)

	return result, nil
}

func (s *sessionService) scoreAndPersist(ctx context.Context, session *models.ExamSession, reason models.SessionEndReason) (*models.CBTResult, error) {
	questions, err := s.answeredQuestions(ctx, session)
	if err != nil {
		return nil, err
	}

	outcomes, score := ScoreAttempt(questions, session.Answers)

	elapsed := int(s.now().Sub(session.StartedAt).Seconds())
	if elapsed > session.Duration {
		elapsed = session.Duration
	}

	result := &models.CBTResult{
		ID:          uuid.NewString(),
		SessionID:   session.ID,
		UserID:      session.UserID,
		ExamType:    session.ExamType,
		Subject:     session.Subject,
		Outcomes:    datatypes.NewJSONType(outcomes),
		Score:       datatypes.NewJSONType(score),
		TimeTaken:   clampNonNegative(elapsed),
		EndReason:   string(reason),
		CompletedAt: s.now(),
	}

	if err := s.repo.Result().Create(ctx, result); err != nil {
		return nil, NewStorageError("persist result", err)
	}

	// Re-read by session id: if the unique-index backstop swallowed our
	// insert, the first writer's row is the canonical one.
	stored, err := s.repo.Result().GetBySession(ctx, session.ID)
	if err != nil {
		return nil, NewStorageError("load persisted result", err)
	}
	return stored, nil
}

// answeredQuestions resolves the catalog entries for every answered question,
// in the session's sample order. Kind and authoritative answers come from the
// catalog, never from the client.
func (s *sessionService) answeredQuestions(ctx context.Context, session *models.ExamSession) ([]*models.Question, error) {
	answeredIDs := make([]string, 0, len(session.Answers))
	for _, id := range session.ObjectiveIDs {
		if _, ok := session.Answers[id]; ok {
			answeredIDs = append(answeredIDs, id)
		}
	}
	for _, id := range session.TheoryIDs {
		if _, ok := session.Answers[id]; ok {
			answeredIDs = append(answeredIDs, id)
		}
	}

	questions, err := s.repo.Question().GetByIDs(ctx, answeredIDs)
	if err != nil {
		return nil, NewStorageError("load answered questions", err)
	}

	byID := make(map[string]*models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	ordered := make([]*models.Question, 0, len(questions))
	for _, id := range answeredIDs {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

// handleExpiry is the timer callback: force a submission with whatever
// answers were collected. Losing the race to a manual submit is fine.
func (s *sessionService) handleExpiry(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.logger.Info("CBT session expired, forcing submission", "session_id", sessionID)

	if _, err := s.submit(ctx, sessionID, models.EndReasonTimeout); err != nil {
		if IsNotFound(err) || err == ErrSessionNotActive {
			return
		}
		s.logger.Error("Failed to submit expired session",
			"session_id", sessionID, "error", err)
	}
}

// awaitStoredResult serves the loser of the submit race. The winner may still
// be persisting, so poll briefly before telling the client to resync.
func (s *sessionService) awaitStoredResult(ctx context.Context, sessionID string) (*models.CBTResult, error) {
	for attempt := 0; attempt < 5; attempt++ {
		result, err := s.repo.Result().GetBySession(ctx, sessionID)
		if err == nil {
			return result, nil
		}
		if !repositories.IsNotFoundError(err) {
			return nil, NewStorageError("load result", err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return nil, ErrSessionNotActive
}

func (s *sessionService) storedResult(ctx context.Context, sessionID string) (*models.CBTResult, error) {
	result, err := s.repo.Result().GetBySession(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, NewStorageError("load result", err)
	}
	return result, nil
}

func (s *sessionService) publishResult(ctx context.Context, result *models.CBTResult) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishResultCreated(ctx, events.NewResultCreatedEvent(result)); err != nil {
		s.logger.Error("Failed to publish result event",
			"session_id", result.SessionID, "error", err)
	}
}

// ===== QUERIES =====

func (s *sessionService) Results(ctx context.Context, userID string, limit int) ([]*models.CBTResult, error) {
	if limit <= 0 || limit > resultHistoryLimit {
		limit = resultHistoryLimit
	}
	results, err := s.repo.Result().FindByUser(ctx, userID, limit)
	if err != nil {
		return nil, NewStorageError("load results", err)
	}
	return results, nil
}

func (s *sessionService) Subjects(ctx context.Context, examType models.ExamType) ([]string, error) {
	subjects, err := s.repo.Question().DistinctSubjects(ctx, examType)
	if err != nil {
		return nil, NewStorageError("load subjects", err)
	}
	return subjects, nil
}

func (s *sessionService) Years(ctx context.Context, examType models.ExamType, subject string) ([]string, error) {
	years, err := s.repo.Question().DistinctYears(ctx, examType, subject)
	if err != nil {
		return nil, NewStorageError("load years", err)
	}
	return years, nil
}

// Close cancels all armed expiry timers.
func (s *sessionService) Close() {
	s.timers.Stop()
}

// ===== HELPERS =====

func (s *sessionService) checkSelection(ctx context.Context, examType models.ExamType, subject string) error {
	subjects, err := s.repo.Question().DistinctSubjects(ctx, examType)
	if err != nil {
		return NewStorageError("load subjects", err)
	}
	for _, known := range subjects {
		if known == subject {
			return nil
		}
	}
	return ErrInvalidSelection
}

// stripAnswers blanks the authoritative answer and explanation before the
// questions leave the server.
func stripAnswers(questions []*models.Question) []*models.Question {
	out := make([]*models.Question, len(questions))
	for i, q := range questions {
		clean := *q
		clean.Answer = ""
		clean.Explanation = ""
		out[i] = &clean
	}
	return out
}

func mapStoreError(err error) error {
	switch err {
	case store.ErrSessionNotFound:
		return ErrSessionNotFound
	case store.ErrSessionNotActive, store.ErrScoringClaimed:
		return ErrSessionNotActive
	default:
		return NewStorageError("session store", err)
	}
}
