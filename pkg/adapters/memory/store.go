package memory

import (
	"context"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
)

// Store implements ports.JourneyStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Journey
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Journey),
	}
}

// Save persists the journey in memory.
func (s *Store) Save(ctx context.Context, journeyID string, journey *domain.Journey) error {
	copied := clone(journey)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[journeyID] = copied
	return nil
}

// Load retrieves the journey from memory.
func (s *Store) Load(ctx context.Context, journeyID string) (*domain.Journey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	journey, ok := s.data[journeyID]
	if !ok {
		return nil, domain.ErrJourneyNotFound
	}

	// Copy on read so the caller can't mutate store state through the pointer.
	return clone(journey), nil
}

// Delete removes the journey.
func (s *Store) Delete(ctx context.Context, journeyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, journeyID)
	return nil
}

// List returns the stored journey IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func clone(src *domain.Journey) *domain.Journey {
	out := &domain.Journey{
		ID:     src.ID,
		Values: make(map[string]any, len(src.Values)),
	}
	for k, v := range src.Values {
		out.Values[k] = v
	}
	if src.History != nil {
		out.History = make([]domain.HistoryEntry, len(src.History))
		for i, entry := range src.History {
			copied := entry
			if entry.Fields != nil {
				copied.Fields = make(map[string]any, len(entry.Fields))
				for k, v := range entry.Fields {
					copied.Fields[k] = v
				}
			}
			out.History[i] = copied
		}
	}
	return out
}
