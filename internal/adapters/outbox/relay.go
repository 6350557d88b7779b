package outbox

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

const (
	// PostgreSQL NOTIFY/LISTEN configuration
	listenerMinReconnectInterval = 10 * time.Second
	listenerMaxReconnectInterval = time.Minute
	ChannelName                  = "notification_channel"

	eventProcessTimeout     = 30 * time.Second
	batchProcessTimeout     = 60 * time.Second
	periodicProcessInterval = 90 * time.Second

	healthCheckStaleThreshold = 5 * time.Minute

	maxEventsPerBatch = 100
)

// Store is what the relay needs from the notification table.
type Store interface {
	GetNotification(ctx context.Context, id string) (*domain.Notification, error)
	ListUndelivered(ctx context.Context, limit int) ([]domain.Notification, error)
	MarkDelivered(ctx context.Context, id string, at time.Time) error
	Degraded() bool
}

// Relay forwards newly inserted notifications to the delivery queue. It wakes on the
// notification_channel NOTIFY issued by the insert trigger and sweeps the backlog
// periodically for anything it missed. Delivery is at-least-once.
type Relay struct {
	store     Store
	publisher ports.NotificationPublisher
	dbURL     string
	logger    *zap.Logger
	now       func() time.Time

	mu            sync.RWMutex
	lastProcessed time.Time
	healthy       bool
}

func NewRelay(store Store, dbURL string, publisher ports.NotificationPublisher, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Relay{
		store:         store,
		dbURL:         dbURL,
		publisher:     publisher,
		logger:        logger,
		now:           time.Now,
		lastProcessed: time.Now(),
		healthy:       true,
	}
}

// IsHealthy is the liveness signal: the listener loop is running and connected.
func (r *Relay) IsHealthy() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.healthy
}

// IsReady additionally requires a closed breaker and recent progress.
func (r *Relay) IsReady() bool {
	if r.store.Degraded() {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.healthy && r.now().Sub(r.lastProcessed) <= healthCheckStaleThreshold
}

func (r *Relay) markProgress() {
	r.mu.Lock()
	r.lastProcessed = r.now()
	r.healthy = true
	r.mu.Unlock()
}

func (r *Relay) setHealthy(v bool) {
	r.mu.Lock()
	r.healthy = v
	r.mu.Unlock()
}

// Start blocks until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			r.logger.Warn("listener error", zap.Int("event", int(ev)), zap.Error(err))
		}
	}

	listener := pq.NewListener(r.dbURL, listenerMinReconnectInterval, listenerMaxReconnectInterval, reportProblem)
	defer listener.Close()

	if err := listener.Listen(ChannelName); err != nil {
		return err
	}
	r.logger.Info("relay listening", zap.String("channel", ChannelName))

	// catch up on anything inserted while the relay was down
	if _, err := r.ProcessBacklog(ctx); err != nil {
		r.logger.Error("startup backlog failed", zap.Error(err))
	}

	ticker := time.NewTicker(periodicProcessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("relay shutting down")
			return ctx.Err()

		case n := <-listener.Notify:
			if n == nil {
				// connection was re-established; notifications may have been lost
				r.logger.Warn("listener reconnected, sweeping backlog")
				r.setHealthy(false)
				if _, err := r.ProcessBacklog(ctx); err != nil {
					r.logger.Error("backlog after reconnect failed", zap.Error(err))
				}
				continue
			}
			if err := r.ProcessByID(ctx, n.Extra); err != nil {
				r.logger.Error("publish failed", zap.String("notification_id", n.Extra), zap.Error(err))
			}

		case <-ticker.C:
			go listener.Ping() //nolint:errcheck
			if _, err := r.ProcessBacklog(ctx); err != nil {
				r.logger.Error("periodic sweep failed", zap.Error(err))
			}
		}
	}
}

// ProcessByID publishes one notification unless it was already delivered.
func (r *Relay) ProcessByID(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, eventProcessTimeout)
	defer cancel()

	n, err := r.store.GetNotification(ctx, id)
	if errors.Is(err, ports.ErrNotFound) {
		// deleted before the relay got to it
		return nil
	}
	if err != nil {
		return err
	}
	if n.DeliveredAt != nil {
		return nil
	}
	if err := r.deliver(ctx, *n); err != nil {
		return err
	}
	r.markProgress()
	return nil
}

// ProcessBacklog publishes up to one batch of undelivered notifications, oldest first,
// and returns how many were delivered. A failed publish is logged and retried on the
// next sweep.
func (r *Relay) ProcessBacklog(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, batchProcessTimeout)
	defer cancel()

	pending, err := r.store.ListUndelivered(ctx, maxEventsPerBatch)
	if err != nil {
		return 0, err
	}
	delivered := 0
	for _, n := range pending {
		if err := r.deliver(ctx, n); err != nil {
			r.logger.Warn("publish failed, will retry", zap.String("notification_id", n.ID), zap.Error(err))
			continue
		}
		delivered++
	}
	r.markProgress()
	if delivered > 0 {
		r.logger.Info("backlog delivered", zap.Int("count", delivered))
	}
	return delivered, nil
}

func (r *Relay) deliver(ctx context.Context, n domain.Notification) error {
	evt := ports.NotificationEvent{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Type:           string(n.Type),
		Message:        n.Message,
		CreatedAt:      n.CreatedAt,
	}
	if err := r.publisher.PublishNotification(ctx, evt); err != nil {
		return err
	}
	return r.store.MarkDelivered(ctx, n.ID, r.now().UTC())
}
