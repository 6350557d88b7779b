package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockRedisClient is an in-memory stand-in for the Redis commands the token store issues.
type MockRedisClient struct {
	mu   sync.RWMutex
	keys map[string]redisEntry
	now  func() time.Time

	// Error injection
	SetError    error
	ExistsError error
	PingError   error
}

type redisEntry struct {
	value     string
	ttl       time.Duration
	expiresAt time.Time
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{keys: make(map[string]redisEntry), now: time.Now}
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewStatusCmd(ctx)
	if m.SetError != nil {
		cmd.SetErr(m.SetError)
		return cmd
	}
	entry := redisEntry{ttl: expiration}
	if s, ok := value.(string); ok {
		entry.value = s
	}
	if expiration > 0 {
		entry.expiresAt = m.now().Add(expiration)
	}
	m.keys[key] = entry
	cmd.SetVal("OK")
	return cmd
}

func (m *MockRedisClient) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cmd := redis.NewIntCmd(ctx)
	if m.ExistsError != nil {
		cmd.SetErr(m.ExistsError)
		return cmd
	}
	var count int64
	for _, k := range keys {
		if m.live(k) {
			count++
		}
	}
	cmd.SetVal(count)
	return cmd
}

func (m *MockRedisClient) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if m.PingError != nil {
		cmd.SetErr(m.PingError)
		return cmd
	}
	cmd.SetVal("PONG")
	return cmd
}

func (m *MockRedisClient) live(key string) bool {
	e, ok := m.keys[key]
	return ok && (e.expiresAt.IsZero() || m.now().Before(e.expiresAt))
}

// TTL returns the expiration the key was written with.
func (m *MockRedisClient) TTL(key string) (time.Duration, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.keys[key]
	return e.ttl, ok
}

// HasKey reports whether key is present and not expired.
func (m *MockRedisClient) HasKey(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.live(key)
}

// Advance moves the mock clock forward so written keys can expire.
func (m *MockRedisClient) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	base := m.now
	m.now = func() time.Time { return base().Add(d) }
}
