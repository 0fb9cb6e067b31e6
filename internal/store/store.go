// Package store holds the live in-memory session and practice state. Every
// quiz session and lesson tracker exists only inside this process; losing the
// process loses the state, which is acceptable for short-lived runs.
package store

import (
	"sync"

	"github.com/vedalearn/session-backend/internal/session"
)

type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
	trackers map[string]*session.LessonTracker
}

func New() *Store {
	return &Store{
		sessions: make(map[string]*session.Session),
		trackers: make(map[string]*session.LessonTracker),
	}
}

func (s *Store) PutSession(sess *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID()] = sess
}

func (s *Store) Session(id string) (*session.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// DeleteSession removes a session and stops its timer so the countdown
// goroutine does not outlive the entry.
func (s *Store) DeleteSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	sess.Stop()
	delete(s.sessions, id)
	return true
}

func (s *Store) PutTracker(t *session.LessonTracker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trackers[t.ID()] = t
}

func (s *Store) Tracker(id string) (*session.LessonTracker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.trackers[id]
	return t, ok
}

func (s *Store) DeleteTracker(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.trackers[id]; !ok {
		return false
	}
	delete(s.trackers, id)
	return true
}

// Close stops every live session timer. Called once during shutdown.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		sess.Stop()
	}
	s.sessions = make(map[string]*session.Session)
	s.trackers = make(map[string]*session.LessonTracker)
}
