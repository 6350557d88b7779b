package repository

import (
	"context"
	"database/sql"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

type connectionRepo struct {
	q querier
}

var _ ports.ConnectionRepository = (*connectionRepo)(nil)

const connectionColumns = `id, requester_id, recipient_id, status, created_at, accepted_at`

func scanConnection(s scanner) (domain.Connection, error) {
	var (
		c        domain.Connection
		accepted sql.NullTime
	)
	if err := s.Scan(&c.ID, &c.RequesterID, &c.RecipientID, &c.Status, &c.CreatedAt, &accepted); err != nil {
		return domain.Connection{}, mapErr(err)
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.AcceptedAt = timeRef(accepted)
	return c, nil
}

func (r *connectionRepo) Create(ctx context.Context, c domain.Connection) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO connections (`+connectionColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.RequesterID, c.RecipientID, c.Status, c.CreatedAt, c.AcceptedAt,
	)
	return mapErr(err)
}

func (r *connectionRepo) Get(ctx context.Context, id string) (*domain.Connection, error) {
	c, err := scanConnection(r.q.QueryRowContext(ctx, `SELECT `+connectionColumns+` FROM connections WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *connectionRepo) FindBetween(ctx context.Context, a, b string) (*domain.Connection, error) {
	c, err := scanConnection(r.q.QueryRowContext(ctx,
		`SELECT `+connectionColumns+` FROM connections
		 WHERE (requester_id = $1 AND recipient_id = $2) OR (requester_id = $2 AND recipient_id = $1)`,
		a, b,
	))
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *connectionRepo) Update(ctx context.Context, c domain.Connection) error {
	return expectRow(r.q.ExecContext(ctx,
		`UPDATE connections SET status = $2, accepted_at = $3 WHERE id = $1`,
		c.ID, c.Status, c.AcceptedAt,
	))
}

func (r *connectionRepo) Delete(ctx context.Context, id string) error {
	return expectRow(r.q.ExecContext(ctx, `DELETE FROM connections WHERE id = $1`, id))
}

func (r *connectionRepo) ListAccepted(ctx context.Context, userID string) ([]domain.Connection, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+connectionColumns+` FROM connections
		 WHERE (requester_id = $1 OR recipient_id = $1) AND status = 'accepted'
		 ORDER BY accepted_at DESC NULLS LAST, id`,
		userID,
	)
	return collect(rows, err, scanConnection)
}

func (r *connectionRepo) ListIncomingPending(ctx context.Context, userID string) ([]domain.Connection, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+connectionColumns+` FROM connections
		 WHERE recipient_id = $1 AND status = 'pending'
		 ORDER BY created_at DESC, id`,
		userID,
	)
	return collect(rows, err, scanConnection)
}

type institutionLinkRepo struct {
	q querier
	// savepoint isolates the member lookup so fan-out stays best-effort inside a transaction.
	savepoint bool
}

var _ ports.InstitutionLinkRepository = (*institutionLinkRepo)(nil)

const linkColumns = `id, user_id, institution_id, created_at`

func scanLink(s scanner) (domain.InstitutionLink, error) {
	var l domain.InstitutionLink
	if err := s.Scan(&l.ID, &l.UserID, &l.InstitutionID, &l.CreatedAt); err != nil {
		return domain.InstitutionLink{}, mapErr(err)
	}
	l.CreatedAt = l.CreatedAt.UTC()
	return l, nil
}

func (r *institutionLinkRepo) Create(ctx context.Context, l domain.InstitutionLink) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO institution_links (`+linkColumns+`) VALUES ($1, $2, $3, $4)`,
		l.ID, l.UserID, l.InstitutionID, l.CreatedAt,
	)
	return mapErr(err)
}

func (r *institutionLinkRepo) Find(ctx context.Context, userID, institutionID string) (*domain.InstitutionLink, error) {
	l, err := scanLink(r.q.QueryRowContext(ctx,
		`SELECT `+linkColumns+` FROM institution_links WHERE user_id = $1 AND institution_id = $2`,
		userID, institutionID,
	))
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *institutionLinkRepo) Delete(ctx context.Context, userID, institutionID string) (bool, error) {
	if !validIDs(userID, institutionID) {
		return false, nil
	}
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM institution_links WHERE user_id = $1 AND institution_id = $2`, userID, institutionID)
	if err != nil {
		return false, mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *institutionLinkRepo) ListByUser(ctx context.Context, userID string) ([]domain.InstitutionLink, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+linkColumns+` FROM institution_links WHERE user_id = $1 ORDER BY created_at, id`, userID)
	return collect(rows, err, scanLink)
}

func (r *institutionLinkRepo) ListMembers(ctx context.Context, institutionID string) ([]domain.User, error) {
	if !r.savepoint {
		return r.listMembers(ctx, institutionID)
	}
	var members []domain.User
	err := withSavepoint(ctx, r.q, "members", func() error {
		var err error
		members, err = r.listMembers(ctx, institutionID)
		return err
	})
	return members, err
}

func (r *institutionLinkRepo) listMembers(ctx context.Context, institutionID string) ([]domain.User, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT u.id, u.email, u.name, u.role, u.institution_name, u.institution_id, u.bio, u.phone,
		        u.password_hash, u.created_at
		 FROM institution_links l
		 JOIN users u ON u.id = l.user_id
		 WHERE l.institution_id = $1
		 ORDER BY l.created_at, u.id`,
		institutionID,
	)
	return collect(rows, err, scanUser)
}
