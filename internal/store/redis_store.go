package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/naijaprep/cbt-service/internal/models"
	"github.com/redis/go-redis/v9"
)

// redisSessionStore keeps each session in three keys sharing one TTL:
//
//	cbt:session:<id>         JSON session metadata (ids, timestamps, status)
//	cbt:session:<id>:status  current status, the CAS target
//	cbt:session:<id>:answers hash of question id -> JSON AnswerRecord
//
// Answers live in a hash so PutAnswer is a single HSET: last write wins per
// question id without read-modify-write races.
type redisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) SessionStore {
	return &redisSessionStore{client: client}
}

// putAnswerScript records an answer only while the session is in_progress.
var putAnswerScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) ~= ARGV[1] then
	return 0
end
redis.call("HSET", KEYS[2], ARGV[2], ARGV[3])
return 1
`)

// claimScoringScript is the atomic in_progress -> submitting transition.
var claimScoringScript = redis.NewScript(`
local status = redis.call("GET", KEYS[1])
if status == false then
	return -1
end
if status ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "KEEPTTL")
return 1
`)

func sessionKey(id string) string { return "cbt:session:" + id }
func statusKey(id string) string  { return "cbt:session:" + id + ":status" }
func answersKey(id string) string { return "cbt:session:" + id + ":answers" }

func (s *redisSessionStore) ttl(session *models.ExamSession) time.Duration {
	return time.Duration(session.Duration)*time.Second + GracePeriod
}

func (s *redisSessionStore) Save(ctx context.Context, session *models.ExamSession) error {
	meta, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := s.ttl(session)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(session.ID), meta, ttl)
	pipe.Set(ctx, statusKey(session.ID), string(session.Status), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Get(ctx context.Context, sessionID string) (*models.ExamSession, error) {
	meta, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session models.ExamSession
	if err := json.Unmarshal(meta, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	status, err := s.client.Get(ctx, statusKey(sessionID)).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get session status: %w", err)
	}
	if status != "" {
		session.Status = models.SessionStatus(status)
	}

	if err := s.loadAnswers(ctx, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *redisSessionStore) loadAnswers(ctx context.Context, session *models.ExamSession) error {
	raw, err := s.client.HGetAll(ctx, answersKey(session.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to load answers: %w", err)
	}
	session.Answers = make(map[string]models.AnswerRecord, len(raw))
	for questionID, payload := range raw {
		var record models.AnswerRecord
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return fmt.Errorf("failed to unmarshal answer for question %s: %w", questionID, err)
		}
		session.Answers[questionID] = record
	}
	return nil
}

func (s *redisSessionStore) PutAnswer(ctx context.Context, sessionID string, record models.AnswerRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}

	keys := []string{statusKey(sessionID), answersKey(sessionID)}
	ok, err := putAnswerScript.Run(ctx, s.client, keys,
		string(models.SessionInProgress), record.QuestionID, payload).Int()
	if err != nil {
		return fmt.Errorf("failed to record answer: %w", err)
	}
	if ok != 1 {
		// Either the session is gone or it has left in_progress.
		exists, err := s.client.Exists(ctx, sessionKey(sessionID)).Result()
		if err != nil {
			return fmt.Errorf("failed to check session: %w", err)
		}
		if exists == 0 {
			return ErrSessionNotFound
		}
		return ErrSessionNotActive
	}

	// The answers hash is created lazily by the first HSET; align its TTL
	// with the session keys.
	ttl, err := s.client.TTL(ctx, sessionKey(sessionID)).Result()
	if err == nil && ttl > 0 {
		s.client.Expire(ctx, answersKey(sessionID), ttl)
	}
	return nil
}

func (s *redisSessionStore) BeginScoring(ctx context.Context, sessionID string) (*models.ExamSession, error) {
	res, err := claimScoringScript.Run(ctx, s.client, []string{statusKey(sessionID)},
		string(models.SessionInProgress), string(models.SessionSubmitting)).Int()
	if err != nil {
		return nil, fmt.Errorf("failed to claim scoring: %w", err)
	}
	switch res {
	case -1:
		return nil, ErrSessionNotFound
	case 0:
		return nil, ErrScoringClaimed
	}

	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.Status = models.SessionSubmitting
	return session, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx,
		sessionKey(sessionID), statusKey(sessionID), answersKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
