package redis

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"quizlens/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Session state stays in a local map so the in-process broadcast keeps working.
//   - Redis holds a liveness key per session with a TTL that every access
//     refreshes. Once the key expires the local session is dropped, so idle
//     users start over.
//   - Redis errors are logged and treated as "alive"; an outage never loses state.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.Mutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) GetOrCreate(ctx context.Context, sessionID string) *app.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.liveLocked(ctx, sessionID); ok {
		return session
	}
	session := app.NewSession(sessionID)
	s.sessions[sessionID] = session
	// best-effort liveness marker
	if err := s.client.Set(ctx, s.key(sessionID), "1", s.ttl).Err(); err != nil {
		log.Printf("redis session mark %s: %v", sessionID, err)
	}
	return session
}

func (s *SessionStore) Get(ctx context.Context, sessionID string) (*app.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveLocked(ctx, sessionID)
}

// liveLocked returns the local session if its liveness key still exists,
// pushing the expiry forward.
func (s *SessionStore) liveLocked(ctx context.Context, sessionID string) (*app.Session, bool) {
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, false
	}
	alive, err := s.client.Expire(ctx, s.key(sessionID), s.ttl).Result()
	if err != nil {
		log.Printf("redis session refresh %s: %v", sessionID, err)
		return session, true
	}
	if !alive {
		delete(s.sessions, sessionID)
		return nil, false
	}
	return session, true
}

func (s *SessionStore) DeleteIfEmpty(ctx context.Context, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	if session.IsEmpty() {
		delete(s.sessions, sessionID)
		_ = s.client.Del(ctx, s.key(sessionID)).Err()
	}
}

func (s *SessionStore) key(sessionID string) string {
	return "quizlens:session:" + sessionID
}
