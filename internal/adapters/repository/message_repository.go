package repository

import (
	"context"

	"github.com/lib/pq"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

type messageRepo struct {
	q querier
}

var _ ports.MessageRepository = (*messageRepo)(nil)

const messageColumns = `id, sender_id, receiver_id, content, read, created_at`

func scanMessage(s scanner) (domain.Message, error) {
	var m domain.Message
	if err := s.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.Read, &m.CreatedAt); err != nil {
		return domain.Message{}, mapErr(err)
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return m, nil
}

func (r *messageRepo) Create(ctx context.Context, m domain.Message) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO messages (`+messageColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.SenderID, m.ReceiverID, m.Content, m.Read, m.CreatedAt,
	)
	return mapErr(err)
}

func (r *messageRepo) ListBetween(ctx context.Context, a, b string) ([]domain.Message, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		 ORDER BY created_at, id`,
		a, b,
	)
	return collect(rows, err, scanMessage)
}

func (r *messageRepo) ListForUser(ctx context.Context, userID string) ([]domain.Message, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE sender_id = $1 OR receiver_id = $1
		 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	return collect(rows, err, scanMessage)
}

func (r *messageRepo) MarkReadFrom(ctx context.Context, receiverID, senderID string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE messages SET read = TRUE WHERE receiver_id = $1 AND sender_id = $2 AND NOT read`,
		receiverID, senderID,
	)
	return mapErr(err)
}

type documentRepo struct {
	q querier
}

var _ ports.DocumentRepository = (*documentRepo)(nil)

const documentColumns = `id, owner_id, institution_id, title, description, url, visibility, created_at`

func scanDocument(s scanner) (domain.Document, error) {
	var d domain.Document
	err := s.Scan(&d.ID, &d.OwnerID, &d.InstitutionID, &d.Title, &d.Description, &d.URL, &d.Visibility, &d.CreatedAt)
	if err != nil {
		return domain.Document{}, mapErr(err)
	}
	d.CreatedAt = d.CreatedAt.UTC()
	return d, nil
}

func (r *documentRepo) Create(ctx context.Context, d domain.Document) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO documents (`+documentColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.OwnerID, d.InstitutionID, d.Title, d.Description, d.URL, d.Visibility, d.CreatedAt,
	)
	return mapErr(err)
}

func (r *documentRepo) Get(ctx context.Context, id string) (*domain.Document, error) {
	d, err := scanDocument(r.q.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *documentRepo) Delete(ctx context.Context, id string) error {
	return expectRow(r.q.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id))
}

func (r *documentRepo) ListByInstitutions(ctx context.Context, institutionIDs []string) ([]domain.Document, error) {
	if len(institutionIDs) == 0 {
		return nil, nil
	}
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents
		 WHERE institution_id = ANY($1::uuid[])
		 ORDER BY created_at DESC, id`,
		pq.Array(institutionIDs),
	)
	return collect(rows, err, scanDocument)
}

func (r *documentRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Document, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE owner_id = $1 ORDER BY created_at DESC, id`, ownerID)
	return collect(rows, err, scanDocument)
}
