package wizard

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store manages active wizard sessions keyed by session ID.
type Store struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	timeout  time.Duration
}

// NewStore creates a session store with an idle timeout.
func NewStore(timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &Store{
		sessions: make(map[string]*Session),
		timeout:  timeout,
	}
}

// Create starts a new session for a doctor/patient pair.
func (st *Store) Create(doctorID, patientID string) *Session {
	session := NewSession(uuid.NewString(), doctorID, patientID)

	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[session.ID] = session
	return session
}

// Get returns the session, or nil when unknown or expired.
func (st *Store) Get(id string) *Session {
	st.mu.RLock()
	session := st.sessions[id]
	st.mu.RUnlock()

	if session == nil || session.IsExpired(st.timeout) {
		return nil
	}
	return session
}

// Delete removes a session. The draft is discarded; nothing persists across
// wizard sessions.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Cleanup removes expired sessions and returns how many were dropped.
func (st *Store) Cleanup() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, session := range st.sessions {
		if session.IsExpired(st.timeout) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked sessions, including not-yet-swept
// expired ones.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
