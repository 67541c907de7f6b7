package uniqueness

import (
	"context"
	"fmt"
	"sync"

	backend "github.com/redis/go-redis/v9"
)

// Store answers whether a value is already claimed within a scope (for
// example "user/email"). Implementations must be safe for concurrent use.
type Store interface {
	Taken(ctx context.Context, scope, value string) (bool, error)
	Claim(ctx context.Context, scope, value string) error
	Release(ctx context.Context, scope, value string) error
}

// RedisStore keeps one Redis set per scope.
type RedisStore struct {
	client backend.UniversalClient
	prefix string
}

type Option func(*RedisStore)

// WithPrefix sets the key prefix of the scope sets.
func WithPrefix(prefix string) Option {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore connects to a single Redis node.
func NewRedisStore(address, password string, db int, opts ...Option) *RedisStore {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewRedisStoreFromClient(rdb, opts...)
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client backend.UniversalClient, opts ...Option) *RedisStore {
	s := &RedisStore{client: client, prefix: "objectschema:unique:"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(scope string) string { return s.prefix + scope }

func (s *RedisStore) Taken(ctx context.Context, scope, value string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, s.key(scope), value).Result()
	if err != nil {
		return false, fmt.Errorf("redis sismember %s: %w", s.key(scope), err)
	}
	return ok, nil
}

func (s *RedisStore) Claim(ctx context.Context, scope, value string) error {
	if err := s.client.SAdd(ctx, s.key(scope), value).Err(); err != nil {
		return fmt.Errorf("redis sadd %s: %w", s.key(scope), err)
	}
	return nil
}

func (s *RedisStore) Release(ctx context.Context, scope, value string) error {
	if err := s.client.SRem(ctx, s.key(scope), value).Err(); err != nil {
		return fmt.Errorf("redis srem %s: %w", s.key(scope), err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error { return s.client.Close() }

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu     sync.RWMutex
	scopes map[string]map[string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{scopes: make(map[string]map[string]struct{})}
}

func (m *MemoryStore) Taken(_ context.Context, scope, value string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.scopes[scope][value]
	return ok, nil
}

func (m *MemoryStore) Claim(_ context.Context, scope, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.scopes[scope]
	if !ok {
		set = make(map[string]struct{})
		m.scopes[scope] = set
	}
	set[value] = struct{}{}
	return nil
}

func (m *MemoryStore) Release(_ context.Context, scope, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.scopes[scope], value)
	return nil
}
