package session

import (
	"context"
	"sync"
	"time"

	"github.com/example/careslot/internal/domain/appointment"
	"github.com/example/careslot/internal/internaltypes"
)

const DefaultTTL = 2 * time.Hour

type entry struct {
	slots   []appointment.Slot
	expires time.Time
}

// MemoryStore keeps each session's latest result set in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, now: time.Now, entries: map[string]entry{}}
}

func (s *MemoryStore) SaveResults(_ context.Context, sessionID string, slots []appointment.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, id)
		}
	}
	cp := make([]appointment.Slot, len(slots))
	copy(cp, slots)
	s.entries[sessionID] = entry{slots: cp, expires: now.Add(s.ttl)}
	return nil
}

func (s *MemoryStore) LoadResults(_ context.Context, sessionID string) ([]appointment.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	if !ok || s.now().After(e.expires) {
		delete(s.entries, sessionID)
		return nil, internaltypes.ErrNotFound
	}
	cp := make([]appointment.Slot, len(e.slots))
	copy(cp, e.slots)
	return cp, nil
}
