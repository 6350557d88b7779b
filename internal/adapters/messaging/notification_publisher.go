package messaging

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
	"github.com/AchilleasB/cuidotecas/community-service/internal/metrics"
)

var _ ports.NotificationPublisher = (*RabbitMQBroker)(nil)

func (b *RabbitMQBroker) PublishNotification(ctx context.Context, evt ports.NotificationEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	// Respect context deadline
	if deadline, ok := ctx.Deadline(); ok {
		if time.Until(deadline) <= 0 {
			return ctx.Err()
		}
	}

	_, err = b.cb.Execute(func() (interface{}, error) {
		return nil, b.ch.PublishWithContext(
			ctx,
			"",          // exchange (default)
			b.queueName, // routing key == queue name
			false,       // mandatory
			false,       // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    evt.NotificationID,
				Type:         evt.Type,
				Timestamp:    evt.CreatedAt,
				Body:         body,
			},
		)
	})
	if err != nil {
		return err
	}
	metrics.NotificationsPublished.Inc()
	return nil
}
