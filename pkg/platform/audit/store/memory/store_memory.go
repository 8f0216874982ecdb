package memory

import (
	"context"
	"sync"

	id "sendgate/pkg/domain"
	audit "sendgate/pkg/platform/audit"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.RecipientID][]audit.Event
	total  int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.RecipientID][]audit.Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[id.RecipientID][]audit.Event)
	s.total = 0
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.RecipientID] = append(s.events[event.RecipientID], event)
	s.total++
	return nil
}

func (s *InMemoryStore) ListByRecipient(_ context.Context, recipientID id.RecipientID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[recipientID]...), nil
}

// Len returns the number of events appended since creation or the last Clear.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}
