package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

// MockPublisher records published notification events instead of sending them to RabbitMQ.
type MockPublisher struct {
	mu sync.RWMutex

	Published []ports.NotificationEvent

	// Error injection; FailIDs fails only the listed notifications.
	PublishError error
	FailIDs      map[string]bool

	CallCount int
}

var _ ports.NotificationPublisher = (*MockPublisher)(nil)

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{FailIDs: map[string]bool{}}
}

func (m *MockPublisher) PublishNotification(ctx context.Context, evt ports.NotificationEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CallCount++
	if m.PublishError != nil {
		return m.PublishError
	}
	if m.FailIDs[evt.NotificationID] {
		return context.DeadlineExceeded
	}
	m.Published = append(m.Published, evt)
	return nil
}

// Events returns a copy of everything published so far.
func (m *MockPublisher) Events() []ports.NotificationEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ports.NotificationEvent, len(m.Published))
	copy(out, m.Published)
	return out
}

// MockTokenStore is an in-memory ports.TokenStore.
type MockTokenStore struct {
	mu      sync.Mutex
	revoked map[string]time.Duration

	RevokeError error
	LookupError error
}

var _ ports.TokenStore = (*MockTokenStore)(nil)

func NewMockTokenStore() *MockTokenStore {
	return &MockTokenStore{revoked: map[string]time.Duration{}}
}

func (m *MockTokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RevokeError != nil {
		return m.RevokeError
	}
	m.revoked[jti] = ttl
	return nil
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LookupError != nil {
		return false, m.LookupError
	}
	_, ok := m.revoked[jti]
	return ok, nil
}

// RevokedTTL returns the ttl a jti was revoked with.
func (m *MockTokenStore) RevokedTTL(jti string) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ttl, ok := m.revoked[jti]
	return ttl, ok
}
