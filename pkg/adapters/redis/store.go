package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.JourneyStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for journeys.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for journeys.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "arbor:journey:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(journeyID string) string {
	return s.prefix + journeyID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the journey to Redis.
func (s *Store) Save(ctx context.Context, journeyID string, journey *domain.Journey) error {
	data, err := json.Marshal(journey)
	if err != nil {
		return fmt.Errorf("failed to marshal journey: %w", err)
	}

	pipe := s.client.Pipeline()

	// JSON payload with TTL (0 = no expiration), plus a ZSET index scored by
	// expiry so List can skim live journeys.
	pipe.Set(ctx, s.key(journeyID), data, s.ttl)

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: journeyID,
	})

	if _, err = pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the journey from Redis.
func (s *Store) Load(ctx context.Context, journeyID string) (*domain.Journey, error) {
	val, err := s.client.Get(ctx, s.key(journeyID)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrJourneyNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var journey domain.Journey
	if err := json.Unmarshal([]byte(val), &journey); err != nil {
		return nil, fmt.Errorf("failed to unmarshal journey: %w", err)
	}
	if journey.Values == nil {
		journey.Values = make(map[string]any)
	}

	return &journey, nil
}

// Delete removes the journey.
func (s *Store) Delete(ctx context.Context, journeyID string) error {
	pipe := s.client.Pipeline()

	pipe.Del(ctx, s.key(journeyID))
	pipe.ZRem(ctx, s.indexKey(), journeyID)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns journey IDs that have not expired according to the index.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	ids, err := s.client.ZRangeByScore(ctx, s.indexKey(), &backend.ZRangeBy{
		Min: fmt.Sprintf("%f", now),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list journeys: %w", err)
	}
	return ids, nil
}
