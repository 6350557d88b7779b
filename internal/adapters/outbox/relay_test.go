package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
	"github.com/AchilleasB/cuidotecas/community-service/internal/mocks"
)

type fakeStore struct {
	mu        sync.Mutex
	rows      []domain.Notification
	listErr   error
	markErr   error
	degraded  bool
	limitSeen int
}

func (s *fakeStore) GetNotification(_ context.Context, id string) (*domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.rows {
		if n.ID == id {
			return &n, nil
		}
	}
	return nil, ports.ErrNotFound
}

func (s *fakeStore) ListUndelivered(_ context.Context, limit int) ([]domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limitSeen = limit
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []domain.Notification
	for _, n := range s.rows {
		if n.DeliveredAt == nil && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *fakeStore) MarkDelivered(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markErr != nil {
		return s.markErr
	}
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows[i].DeliveredAt = &at
		}
	}
	return nil
}

func (s *fakeStore) Degraded() bool { return s.degraded }

func (s *fakeStore) delivered(id string) bool {
	n, _ := s.GetNotification(context.Background(), id)
	return n != nil && n.DeliveredAt != nil
}

func note(id string) domain.Notification {
	return domain.Notification{
		ID:        id,
		UserID:    "ana",
		Message:   "Nova cuidoteca disponível",
		Type:      domain.NotificationCuidotecaCreated,
		CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestProcessByID(t *testing.T) {
	store := &fakeStore{rows: []domain.Notification{note("n-1")}}
	pub := mocks.NewMockPublisher()
	relay := NewRelay(store, "", pub, nil)

	require.NoError(t, relay.ProcessByID(t.Context(), "n-1"))
	require.Len(t, pub.Events(), 1)
	evt := pub.Events()[0]
	assert.Equal(t, "n-1", evt.NotificationID)
	assert.Equal(t, "ana", evt.UserID)
	assert.Equal(t, "cuidoteca_created", evt.Type)
	assert.True(t, store.delivered("n-1"))

	require.NoError(t, relay.ProcessByID(t.Context(), "n-1"), "already delivered")
	assert.Equal(t, 1, pub.CallCount)

	require.NoError(t, relay.ProcessByID(t.Context(), "gone"), "deleted before relay")
	assert.Equal(t, 1, pub.CallCount)
}

func TestProcessByID_PublishFailureLeavesRowPending(t *testing.T) {
	store := &fakeStore{rows: []domain.Notification{note("n-1")}}
	pub := mocks.NewMockPublisher()
	pub.PublishError = errors.New("channel closed")
	relay := NewRelay(store, "", pub, nil)

	assert.Error(t, relay.ProcessByID(t.Context(), "n-1"))
	assert.False(t, store.delivered("n-1"))
}

func TestProcessBacklog(t *testing.T) {
	store := &fakeStore{rows: []domain.Notification{note("n-1"), note("n-2"), note("n-3")}}
	pub := mocks.NewMockPublisher()
	pub.FailIDs["n-2"] = true
	relay := NewRelay(store, "", pub, nil)

	n, err := relay.ProcessBacklog(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, maxEventsPerBatch, store.limitSeen)
	assert.True(t, store.delivered("n-1"))
	assert.False(t, store.delivered("n-2"))
	assert.True(t, store.delivered("n-3"))

	delete(pub.FailIDs, "n-2")
	n, err = relay.ProcessBacklog(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only the failed row is retried")

	store.listErr = errors.New("connection reset")
	_, err = relay.ProcessBacklog(t.Context())
	assert.Error(t, err)
}

func TestProcessBacklog_MarkFailureIsNotCounted(t *testing.T) {
	store := &fakeStore{rows: []domain.Notification{note("n-1")}, markErr: errors.New("tx aborted")}
	pub := mocks.NewMockPublisher()
	relay := NewRelay(store, "", pub, nil)

	n, err := relay.ProcessBacklog(t.Context())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, pub.Events(), 1, "published but will be sent again")
}

func TestRelayHealth(t *testing.T) {
	store := &fakeStore{}
	relay := NewRelay(store, "", mocks.NewMockPublisher(), nil)
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	relay.now = func() time.Time { return clock }
	relay.markProgress()

	assert.True(t, relay.IsHealthy())
	assert.True(t, relay.IsReady())

	clock = clock.Add(healthCheckStaleThreshold + time.Second)
	assert.True(t, relay.IsHealthy())
	assert.False(t, relay.IsReady(), "no progress for too long")

	_, err := relay.ProcessBacklog(t.Context())
	require.NoError(t, err)
	assert.True(t, relay.IsReady(), "an empty sweep still counts as progress")

	store.degraded = true
	assert.False(t, relay.IsReady())

	store.degraded = false
	relay.setHealthy(false)
	assert.False(t, relay.IsHealthy())
	assert.False(t, relay.IsReady())
}
