package gymctx

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNoSelection indicates no gym has been selected for this session
// yet. An absent key is a valid state, not a failure.
var ErrNoSelection = errors.New("no gym selected")

// SelectionStore persists the per-session gym selection. It is passed
// into the resolver explicitly so tests can substitute an in-memory
// implementation and so races on the value stay visible at the call
// site. At most one selection exists per session; last writer wins.
type SelectionStore interface {
	Get(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, error)
	Set(ctx context.Context, sessionID, gymID uuid.UUID) error
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

const selectionKeyPrefix = "gym:selected:"

// RedisSelectionStore keeps selections in Redis with a TTL matching the
// session lifetime.
type RedisSelectionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSelectionStore creates a Redis-backed selection store.
func NewRedisSelectionStore(client *redis.Client, ttl time.Duration) *RedisSelectionStore {
	return &RedisSelectionStore{client: client, ttl: ttl}
}

func (s *RedisSelectionStore) Get(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, error) {
	val, err := s.client.Get(ctx, selectionKeyPrefix+sessionID.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrNoSelection
		}
		return uuid.Nil, err
	}
	gymID, err := uuid.Parse(val)
	if err != nil {
		// A corrupt value behaves like no selection; the resolver
		// self-heals it on the next write.
		return uuid.Nil, ErrNoSelection
	}
	return gymID, nil
}

func (s *RedisSelectionStore) Set(ctx context.Context, sessionID, gymID uuid.UUID) error {
	return s.client.Set(ctx, selectionKeyPrefix+sessionID.String(), gymID.String(), s.ttl).Err()
}

func (s *RedisSelectionStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	return s.client.Del(ctx, selectionKeyPrefix+sessionID.String()).Err()
}

// MemorySelectionStore is an in-memory SelectionStore for tests and
// single-process deployments.
type MemorySelectionStore struct {
	mu         sync.RWMutex
	selections map[uuid.UUID]uuid.UUID
}

// NewMemorySelectionStore creates an empty in-memory selection store.
func NewMemorySelectionStore() *MemorySelectionStore {
	return &MemorySelectionStore{selections: make(map[uuid.UUID]uuid.UUID)}
}

func (s *MemorySelectionStore) Get(_ context.Context, sessionID uuid.UUID) (uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	gymID, ok := s.selections[sessionID]
	if !ok {
		return uuid.Nil, ErrNoSelection
	}
	return gymID, nil
}

func (s *MemorySelectionStore) Set(_ context.Context, sessionID, gymID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections[sessionID] = gymID
	return nil
}

func (s *MemorySelectionStore) Delete(_ context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selections, sessionID)
	return nil
}
