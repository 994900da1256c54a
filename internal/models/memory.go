package models

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// MemorySessionStore keeps the session in process memory only
type MemorySessionStore struct {
	cache *cache.Cache
}

// NewMemorySessionStore creates an empty in-memory store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{cache: cache.New(cache.NoExpiration, 0)}
}

func (s *MemorySessionStore) Get() (*Session, error) {
	v, ok := s.cache.Get(SessionKey)
	if !ok {
		return nil, ErrNoSession
	}
	session := v.(Session)
	return &session, nil
}

func (s *MemorySessionStore) Set(session *Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	s.cache.Set(SessionKey, *session, cache.NoExpiration)
	return nil
}

func (s *MemorySessionStore) Clear() error {
	s.cache.Delete(SessionKey)
	return nil
}
