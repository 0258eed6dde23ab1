// Package pending holds the transient per-user state: the single
// unconfirmed appointment slot and the registry of known chats.
// Nothing here survives a restart.
package pending

import (
	"sync"

	"minder/internal/model"
)

// Store keeps at most one unconfirmed appointment per user. It is the
// session state behind the confirm/cancel buttons and is owned
// exclusively by the bot handler.
type Store struct {
	mu    sync.Mutex
	slots map[int64]model.Appointment
}

func NewStore() *Store {
	return &Store{slots: make(map[int64]model.Appointment)}
}

// Put stores the appointment for userID, unconditionally replacing any
// existing pending appointment. Last write wins.
func (s *Store) Put(userID int64, a model.Appointment) {
	s.mu.Lock()
	s.slots[userID] = a
	s.mu.Unlock()
}

// Take returns the pending appointment for userID and clears the slot
// in the same critical section, so a confirmation can never be
// replayed.
func (s *Store) Take(userID int64) (model.Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.slots[userID]
	if ok {
		delete(s.slots, userID)
	}
	return a, ok
}

// Clear drops any pending appointment for userID.
func (s *Store) Clear(userID int64) {
	s.mu.Lock()
	delete(s.slots, userID)
	s.mu.Unlock()
}
