package chatbot

import "sync"

// SessionStore maps NLU session paths to authenticated user IDs. The
// frontend announces the pair once after login; webhook turns then
// resolve the user from the session, never from global state.
type SessionStore struct {
	mu    sync.RWMutex
	users map[string]string
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		users: make(map[string]string),
	}
}

// Bind associates the session with a user.
func (s *SessionStore) Bind(session, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[session] = userID
}

// Lookup returns the user bound to the session, if any.
func (s *SessionStore) Lookup(session string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.users[session]
	return id, ok
}

// Unbind forgets the session.
func (s *SessionStore) Unbind(session string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, session)
}
