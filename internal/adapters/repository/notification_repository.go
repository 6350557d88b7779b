package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

type notificationRepo struct {
	q querier
	// savepoint guards inserts made inside a transaction so a failed insert leaves the
	// surrounding transaction usable.
	savepoint bool
}

var _ ports.NotificationRepository = (*notificationRepo)(nil)

const notificationColumns = `id, user_id, message, type, connection_request_id, cuidoteca_id, event_id, post_id, read, created_at, delivered_at`

func scanNotification(s scanner) (domain.Notification, error) {
	var (
		n                             domain.Notification
		connID, cuidID, eventID, post sql.NullString
		delivered                     sql.NullTime
	)
	err := s.Scan(&n.ID, &n.UserID, &n.Message, &n.Type, &connID, &cuidID, &eventID, &post,
		&n.Read, &n.CreatedAt, &delivered)
	if err != nil {
		return domain.Notification{}, mapErr(err)
	}
	n.ConnectionRequestID = refOf(connID)
	n.CuidotecaID = refOf(cuidID)
	n.EventID = refOf(eventID)
	n.PostID = refOf(post)
	n.CreatedAt = n.CreatedAt.UTC()
	n.DeliveredAt = timeRef(delivered)
	return n, nil
}

func (r *notificationRepo) Create(ctx context.Context, n domain.Notification) error {
	if !r.savepoint {
		return r.insert(ctx, n)
	}
	return withSavepoint(ctx, r.q, "notify", func() error { return r.insert(ctx, n) })
}

func (r *notificationRepo) insert(ctx context.Context, n domain.Notification) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO notifications (`+notificationColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULL)`,
		n.ID, n.UserID, n.Message, n.Type, nullRef(n.ConnectionRequestID), nullRef(n.CuidotecaID),
		nullRef(n.EventID), nullRef(n.PostID), n.Read, n.CreatedAt,
	)
	return mapErr(err)
}

func (r *notificationRepo) Get(ctx context.Context, id string) (*domain.Notification, error) {
	n, err := scanNotification(r.q.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE user_id = $1 ORDER BY created_at DESC, id DESC`,
		userID)
	return collect(rows, err, scanNotification)
}

func (r *notificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read`, userID).Scan(&n)
	if err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, id string) error {
	return expectRow(r.q.ExecContext(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id))
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.q.ExecContext(ctx, `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND NOT read`, userID)
	return mapErr(err)
}

func (r *notificationRepo) Delete(ctx context.Context, id string) error {
	return expectRow(r.q.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id))
}

func (r *notificationRepo) DeleteByConnectionRequest(ctx context.Context, connectionID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM notifications WHERE connection_request_id = $1`, connectionID)
	return mapErr(err)
}

// ListUndelivered returns notifications the relay has not yet published, oldest first.
func (s *Store) ListUndelivered(ctx context.Context, limit int) ([]domain.Notification, error) {
	var out []domain.Notification
	_, err := s.cb.Execute(func() (any, error) {
		rows, err := s.db.QueryContext(ctx,
			`SELECT `+notificationColumns+` FROM notifications
			 WHERE delivered_at IS NULL
			 ORDER BY created_at, id
			 LIMIT $1`,
			limit,
		)
		out, err = collect(rows, err, scanNotification)
		return nil, err
	})
	return out, breakerErr(err)
}

// GetNotification loads a single notification regardless of delivery state.
func (s *Store) GetNotification(ctx context.Context, id string) (*domain.Notification, error) {
	return (&notificationRepo{q: s.db}).Get(ctx, id)
}

// MarkDelivered stamps delivered_at; already delivered rows are left untouched.
func (s *Store) MarkDelivered(ctx context.Context, id string, at time.Time) error {
	_, err := s.cb.Execute(func() (any, error) {
		_, err := s.db.ExecContext(ctx,
			`UPDATE notifications SET delivered_at = $2 WHERE id = $1 AND delivered_at IS NULL`, id, at)
		return nil, mapErr(err)
	})
	return breakerErr(err)
}
