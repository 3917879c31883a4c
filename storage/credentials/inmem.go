// Package credstore provides the durable session stores behind the
// session.Store contract.
package credstore

import (
	"sync"

	"github.com/huynhmanh219/project-course-sub001/core"
	"github.com/huynhmanh219/project-course-sub001/core/session"
)

// InMemStore keeps the session in memory only; used in tests and for
// ephemeral "do not remember me" runs.
type InMemStore struct {
	mu   sync.RWMutex
	sess *session.Session
}

var _ session.Store = (*InMemStore)(nil)

func NewInMemStore() *InMemStore {
	return &InMemStore{}
}

func (s *InMemStore) Set(sess session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = &sess
	return nil
}

func (s *InMemStore) Get() (session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sess == nil {
		return session.Session{}, core.ErrNotFound
	}
	return *s.sess, nil
}

func (s *InMemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = nil
	return nil
}
