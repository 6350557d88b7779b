package services

import (
	"context"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

type NotificationService struct {
	store ports.Store
}

func NewNotificationService(store ports.Store) *NotificationService {
	return &NotificationService{store: store}
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actor domain.Actor) ([]domain.Notification, error) {
	var out []domain.Notification
	err := s.store.View(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		out, err = r.Notifications().ListByUser(ctx, actor.ID)
		return err
	})
	return out, err
}

func (s *NotificationService) UnreadCount(ctx context.Context, actor domain.Actor) (int, error) {
	var n int
	err := s.store.View(ctx, func(ctx context.Context, r ports.Repositories) error {
		var err error
		n, err = r.Notifications().CountUnread(ctx, actor.ID)
		return err
	})
	return n, err
}

// MarkAsRead flips the read flag of any existing notification. The caller is not
// checked against the recipient.
func (s *NotificationService) MarkAsRead(ctx context.Context, _ domain.Actor, notificationID string) error {
	return s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		if _, err := r.Notifications().Get(ctx, notificationID); err != nil {
			return notFound(err, "Notificação")
		}
		return r.Notifications().MarkRead(ctx, notificationID)
	})
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, actor domain.Actor) error {
	return s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		return r.Notifications().MarkAllRead(ctx, actor.ID)
	})
}

func (s *NotificationService) Delete(ctx context.Context, actor domain.Actor, notificationID string) error {
	return s.store.Tx(ctx, func(ctx context.Context, r ports.Repositories) error {
		n, err := r.Notifications().Get(ctx, notificationID)
		if err != nil {
			return notFound(err, "Notificação")
		}
		if n.UserID != actor.ID {
			return domain.Forbidden("Esta notificação não pertence a você")
		}
		return r.Notifications().Delete(ctx, n.ID)
	})
}
