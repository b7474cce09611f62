package store

import (
	"context"
	"sync"
	"time"

	"github.com/naijaprep/cbt-service/internal/models"
)

// memorySessionStore is a process-local SessionStore with the same CAS
// semantics as the Redis store. Used in tests and single-node development.
type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*memorySession
}

type memorySession struct {
	session   models.ExamSession
	answers   map[string]models.AnswerRecord
	expiresAt time.Time
}

func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		sessions: make(map[string]*memorySession),
	}
}

func (s *memorySessionStore) Save(ctx context.Context, session *models.ExamSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &memorySession{
		session:   *session,
		answers:   make(map[string]models.AnswerRecord),
		expiresAt: time.Now().Add(time.Duration(session.Duration)*time.Second + GracePeriod),
	}
	for id, record := range session.Answers {
		entry.answers[id] = record
	}
	s.sessions[session.ID] = entry
	return nil
}

// get collects expired entries on access; callers must hold the lock.
func (s *memorySessionStore) get(sessionID string) (*memorySession, bool) {
	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.sessions, sessionID)
		return nil, false
	}
	return entry, true
}

func (s *memorySessionStore) Get(ctx context.Context, sessionID string) (*models.ExamSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return entry.snapshot(), nil
}

func (s *memorySessionStore) PutAnswer(ctx context.Context, sessionID string, record models.AnswerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	if entry.session.Status != models.SessionInProgress {
		return ErrSessionNotActive
	}
	entry.answers[record.QuestionID] = record
	return nil
}

func (s *memorySessionStore) BeginScoring(ctx context.Context, sessionID string) (*models.ExamSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if entry.session.Status != models.SessionInProgress {
		return nil, ErrScoringClaimed
	}
	entry.session.Status = models.SessionSubmitting
	return entry.snapshot(), nil
}

func (s *memorySessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (e *memorySession) snapshot() *models.ExamSession {
	session := e.session
	session.Answers = make(map[string]models.AnswerRecord, len(e.answers))
	for id, record := range e.answers {
		session.Answers[id] = record
	}
	session.ObjectiveIDs = append([]string(nil), e.session.ObjectiveIDs...)
	session.TheoryIDs = append([]string(nil), e.session.TheoryIDs...)
	return &session
}
