package ports

import (
	"context"
	"time"
)

// NotificationEvent is the payload handed to external delivery channels (push, email).
type NotificationEvent struct {
	NotificationID string    `json:"notification_id"`
	UserID         string    `json:"user_id"`
	Type           string    `json:"type"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
}

type NotificationPublisher interface {
	PublishNotification(ctx context.Context, evt NotificationEvent) error
}
