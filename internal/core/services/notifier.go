package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
	"github.com/AchilleasB/cuidotecas/community-service/internal/metrics"
)

// Notifier inserts notification rows on behalf of the workflow services.
// Notifications are advisory: an insert failure is logged and dropped, it never fails
// the operation that triggered it.
type Notifier struct {
	logger *zap.Logger
}

func NewNotifier(logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{logger: logger}
}

// Notify inserts a single notification and reports whether it was stored.
func (n *Notifier) Notify(ctx context.Context, repo ports.NotificationRepository, note domain.Notification) bool {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = nowUTC()
	}
	if note.Type == "" {
		note.Type = domain.NotificationGeneral
	}
	note.Read = false

	if err := repo.Create(ctx, note); err != nil {
		metrics.NotificationsFailed.WithLabelValues(string(note.Type)).Inc()
		n.logger.Warn("notification insert failed",
			zap.String("user_id", note.UserID),
			zap.String("type", string(note.Type)),
			zap.Error(err),
		)
		return false
	}
	metrics.NotificationsCreated.WithLabelValues(string(note.Type)).Inc()
	return true
}

// FanOut issues one insert per recipient, skipping skipID. It returns how many were stored.
func (n *Notifier) FanOut(ctx context.Context, repo ports.NotificationRepository, recipients []domain.User, skipID string, build func(u domain.User) domain.Notification) int {
	stored := 0
	for _, u := range recipients {
		if u.ID == skipID {
			continue
		}
		note := build(u)
		note.UserID = u.ID
		if n.Notify(ctx, repo, note) {
			stored++
		}
	}
	return stored
}
