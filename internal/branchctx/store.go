package branchctx

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// StorageName prefixes every persisted session state key.
const StorageName = "smartstore-auth"

// State is the persisted branch context of one logged-in session.
type State struct {
	User           UserContext          `json:"user"`
	Authz          AuthorizationContext `json:"authz"`
	ActiveBranchID string               `json:"activeBranchId,omitempty"`
}

// Store persists session state. Load returns nil, nil when nothing is stored.
type Store interface {
	Load(ctx context.Context, sessionID string) (*State, error)
	Save(ctx context.Context, sessionID string, s State) error
	Delete(ctx context.Context, sessionID string) error
}

func storageKey(sessionID string) string {
	return StorageName + ":" + sessionID
}

// MemoryStore keeps state in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]State)}
}

func (m *MemoryStore) Load(_ context.Context, sessionID string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.states[storageKey(sessionID)]
	if !ok {
		return nil, nil
	}
	s.Authz.AllowedBranchIDs = append([]string(nil), s.Authz.AllowedBranchIDs...)
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, sessionID string, s State) error {
	if sessionID == "" {
		return fmt.Errorf("branchctx: missing session id")
	}
	s.Authz.AllowedBranchIDs = append([]string(nil), s.Authz.AllowedBranchIDs...)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[storageKey(sessionID)] = s
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, storageKey(sessionID))
	return nil
}

// RedisStore keeps state in Redis as JSON, expiring after ttl.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Load(ctx context.Context, sessionID string) (*State, error) {
	val, err := r.client.Get(ctx, storageKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("branchctx: redis get: %w", err)
	}

	var s State
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, fmt.Errorf("branchctx: failed to unmarshal state: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, sessionID string, s State) error {
	if sessionID == "" {
		return fmt.Errorf("branchctx: missing session id")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("branchctx: failed to marshal state: %w", err)
	}
	return r.client.Set(ctx, storageKey(sessionID), data, r.ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, storageKey(sessionID)).Err()
}
