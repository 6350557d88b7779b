package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AchilleasB/cuidotecas/community-service/internal/config"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	sent   []published
	err    error
	closed bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func newTestBroker(ch *fakeChannel) *RabbitMQBroker {
	return &RabbitMQBroker{
		ch:        ch,
		queueName: "notifications",
		cb:        config.NewCircuitBreaker("RabbitMQ-Publisher", nil, nil),
		logger:    zap.NewNop(),
	}
}

func TestPublishNotification(t *testing.T) {
	ch := &fakeChannel{}
	b := newTestBroker(ch)
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	evt := ports.NotificationEvent{
		NotificationID: "n-1",
		UserID:         "ana",
		Type:           "enrollment",
		Message:        "Inscrição aprovada",
		CreatedAt:      created,
	}
	require.NoError(t, b.PublishNotification(t.Context(), evt))
	require.Len(t, ch.sent, 1)

	got := ch.sent[0]
	assert.Empty(t, got.exchange)
	assert.Equal(t, "notifications", got.key)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, "n-1", got.msg.MessageId)
	assert.Equal(t, "enrollment", got.msg.Type)
	assert.Equal(t, created, got.msg.Timestamp)

	var body ports.NotificationEvent
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	assert.Equal(t, evt, body)
}

func TestPublishNotification_ExpiredContext(t *testing.T) {
	ch := &fakeChannel{}
	b := newTestBroker(ch)

	ctx, cancel := context.WithDeadline(t.Context(), time.Now().Add(-time.Second))
	defer cancel()

	err := b.PublishNotification(ctx, ports.NotificationEvent{NotificationID: "n-1"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, ch.sent)
}

func TestPublishNotification_BreakerOpensAfterFailures(t *testing.T) {
	ch := &fakeChannel{err: amqp.ErrClosed}
	b := newTestBroker(ch)

	for range 3 {
		assert.ErrorIs(t, b.PublishNotification(t.Context(), ports.NotificationEvent{NotificationID: "n"}), amqp.ErrClosed)
	}
	err := b.PublishNotification(t.Context(), ports.NotificationEvent{NotificationID: "n"})
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.False(t, b.Healthy())
}

func TestClose_WithoutConnection(t *testing.T) {
	ch := &fakeChannel{}
	require.NoError(t, newTestBroker(ch).Close())
	assert.True(t, ch.closed)
}
