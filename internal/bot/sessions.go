package bot

import (
	"sync"

	"kuryer-manager/internal/service/register"
)

// Sessions is an in-memory registration session store keyed by chat id.
// A restart drops in-progress dialogs, the user restarts with the same token.
type Sessions struct {
	mu sync.Mutex
	m  map[int64]*register.Session
}

// NewSessions creates an empty session store.
func NewSessions() *Sessions {
	return &Sessions{m: make(map[int64]*register.Session)}
}

// Get returns the session for a chat, nil when none is in progress.
func (s *Sessions) Get(chatID int64) *register.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[chatID]
}

// Put stores the session for a chat.
func (s *Sessions) Put(chatID int64, sess *register.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[chatID] = sess
}

// Clear discards the session for a chat, returning true if one existed.
func (s *Sessions) Clear(chatID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[chatID]
	delete(s.m, chatID)
	return ok
}
