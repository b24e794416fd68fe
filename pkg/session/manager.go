package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/google/uuid"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu     sync.Mutex
	refs   int
	unlock ports.UnlockFunc // Function to release distributed lock (if any)
}

// Manager orchestrates journey access, ensuring safe concurrent operations.
// Duplicate submissions and multiple tabs within one journey race on the
// shared history; the Manager serializes them per journey ID, locally via
// reference-counted mutexes and optionally across replicas via a
// DistributedLocker.
type Manager struct {
	store ports.JourneyStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker ports.DistributedLocker // Optional distributed locker
	logger *slog.Logger            // Logger for internal events (like deferred errors)
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new session Manager with the given persistence store.
func NewManager(store ports.JourneyStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(journeyID) after
// unlocking.
func (m *Manager) acquire(journeyID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[journeyID]
	if !exists {
		entry = &lockEntry{}
		m.locks[journeyID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches
// zero.
func (m *Manager) release(journeyID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[journeyID]
	if !exists {
		return // Should not happen if paired correctly
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, journeyID)
	}
}

// Load retrieves an existing journey from the store.
func (m *Manager) Load(ctx context.Context, journeyID string) (*domain.Journey, error) {
	var journey *domain.Journey
	err := m.WithLock(ctx, journeyID, func(ctx context.Context) error {
		var err error
		journey, err = m.store.Load(ctx, journeyID)
		return err
	})
	return journey, err
}

// Start initializes and persists a fresh journey. An empty ID is replaced
// with a generated UUID.
func (m *Manager) Start(ctx context.Context, journeyID string) (*domain.Journey, error) {
	if journeyID == "" {
		journeyID = uuid.NewString()
	}
	journey := domain.NewJourney(journeyID)
	err := m.WithLock(ctx, journeyID, func(ctx context.Context) error {
		return m.store.Save(ctx, journeyID, journey)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize journey: %w", err)
	}
	return journey, nil
}

// LoadOrStart tries to load a journey. If not found, it initializes a new one.
func (m *Manager) LoadOrStart(ctx context.Context, journeyID string) (*domain.Journey, error) {
	var journey *domain.Journey
	err := m.WithLock(ctx, journeyID, func(ctx context.Context) error {
		var err error
		journey, err = m.store.Load(ctx, journeyID)
		if err == nil {
			return nil
		}

		if err != domain.ErrJourneyNotFound {
			return fmt.Errorf("failed to check journey existence: %w", err)
		}

		// Not found, create new and persist immediately to reserve the ID.
		journey = domain.NewJourney(journeyID)
		if err := m.store.Save(ctx, journeyID, journey); err != nil {
			return fmt.Errorf("failed to initialize journey: %w", err)
		}
		return nil
	})
	return journey, err
}

// Save persists the journey state.
func (m *Manager) Save(ctx context.Context, journeyID string, journey *domain.Journey) error {
	return m.WithLock(ctx, journeyID, func(ctx context.Context) error {
		return m.store.Save(ctx, journeyID, journey)
	})
}

// Delete removes the journey from the store.
func (m *Manager) Delete(ctx context.Context, journeyID string) error {
	return m.WithLock(ctx, journeyID, func(ctx context.Context) error {
		return m.store.Delete(ctx, journeyID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying journey store.
func (m *Manager) Store() ports.JourneyStore {
	return m.store
}

// WithLock executes a function while holding the lock for the journey.
func (m *Manager) WithLock(ctx context.Context, journeyID string, fn func(context.Context) error) error {
	entry := m.acquire(journeyID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(journeyID)
	}()

	// Distributed Locking
	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, journeyID, 30*time.Second)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"journey_id", journeyID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
