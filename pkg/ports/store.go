package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// JourneyStore defines the interface for persisting journey state. The
// engine itself never touches it: the surrounding session layer loads the
// journey before invoking the core and flushes it after the core returns.
type JourneyStore interface {
	// Save persists the journey under its ID.
	Save(ctx context.Context, journeyID string, journey *domain.Journey) error

	// Load retrieves the journey for a given ID.
	// Returns domain.ErrJourneyNotFound if the journey does not exist.
	Load(ctx context.Context, journeyID string) (*domain.Journey, error)

	// Delete removes the journey for a given ID.
	Delete(ctx context.Context, journeyID string) error

	// List returns the IDs of stored journeys.
	List(ctx context.Context) ([]string, error)
}
