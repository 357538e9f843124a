package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"study-aid-service/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Sessions stay in a local map; Redis only carries a liveness marker
// (owner name, refreshed on lookup) so other instances and operators can see
// which sessions are active. EvictExpired drops both together.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Add(session *app.Session) {
	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(session.ID()), session.Owner(), s.ttl).Err()
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok && s.ttl > 0 {
		_ = s.client.Expire(context.Background(), s.key(sessionID), s.ttl).Err()
	}
	return session, ok
}

func (s *SessionStore) DeleteIfIdle(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return
	}
	if session.IsIdle() {
		delete(s.sessions, sessionID)
		_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
	}
}

func (s *SessionStore) key(sessionID string) string {
	return "studyaid:session:" + sessionID
}

// EvictExpired removes sessions unused for ttl along with their liveness keys.
func (s *SessionStore) EvictExpired(now time.Time, ttl time.Duration) int {
	s.mu.Lock()
	var expired []string
	for id, session := range s.sessions {
		if session.Expired(now, ttl) {
			delete(s.sessions, id)
			expired = append(expired, id)
		}
	}
	s.mu.Unlock()

	if len(expired) > 0 {
		keys := make([]string, len(expired))
		for i, id := range expired {
			keys[i] = s.key(id)
		}
		_ = s.client.Del(context.Background(), keys...).Err()
	}
	return len(expired)
}
