package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

type eventRepo struct {
	q querier
}

var _ ports.EventRepository = (*eventRepo)(nil)

const eventColumns = `id, institution_id, title, description, location, starts_at, ends_at, created_at`

func scanEvent(s scanner) (domain.Event, error) {
	var (
		e    domain.Event
		ends sql.NullTime
	)
	err := s.Scan(&e.ID, &e.InstitutionID, &e.Title, &e.Description, &e.Location, &e.StartsAt, &ends, &e.CreatedAt)
	if err != nil {
		return domain.Event{}, mapErr(err)
	}
	e.StartsAt, e.CreatedAt = e.StartsAt.UTC(), e.CreatedAt.UTC()
	e.EndsAt = timeRef(ends)
	return e, nil
}

func (r *eventRepo) Create(ctx context.Context, e domain.Event) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO events (`+eventColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.InstitutionID, e.Title, e.Description, e.Location, e.StartsAt, e.EndsAt, e.CreatedAt,
	)
	return mapErr(err)
}

func (r *eventRepo) Get(ctx context.Context, id string) (*domain.Event, error) {
	e, err := scanEvent(r.q.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *eventRepo) Update(ctx context.Context, e domain.Event) error {
	return expectRow(r.q.ExecContext(ctx,
		`UPDATE events SET title = $2, description = $3, location = $4, starts_at = $5, ends_at = $6 WHERE id = $1`,
		e.ID, e.Title, e.Description, e.Location, e.StartsAt, e.EndsAt,
	))
}

func (r *eventRepo) Delete(ctx context.Context, id string) error {
	return expectRow(r.q.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id))
}

func (r *eventRepo) ListByInstitutions(ctx context.Context, institutionIDs []string) ([]domain.Event, error) {
	if len(institutionIDs) == 0 {
		return nil, nil
	}
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE institution_id = ANY($1::uuid[])
		 ORDER BY starts_at, id`,
		pq.Array(institutionIDs),
	)
	return collect(rows, err, scanEvent)
}

const rsvpColumns = `id, event_id, user_id, status, updated_at`

func scanRsvp(s scanner) (domain.EventRsvp, error) {
	var v domain.EventRsvp
	if err := s.Scan(&v.ID, &v.EventID, &v.UserID, &v.Status, &v.UpdatedAt); err != nil {
		return domain.EventRsvp{}, mapErr(err)
	}
	v.UpdatedAt = v.UpdatedAt.UTC()
	return v, nil
}

// UpsertRsvp keeps one answer per (event, user); a repeated answer replaces the previous
// one and keeps its id.
func (r *eventRepo) UpsertRsvp(ctx context.Context, v domain.EventRsvp) (*domain.EventRsvp, error) {
	stored, err := scanRsvp(r.q.QueryRowContext(ctx,
		`INSERT INTO event_rsvps (`+rsvpColumns+`) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (event_id, user_id) DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
		 RETURNING `+rsvpColumns,
		v.ID, v.EventID, v.UserID, v.Status, v.UpdatedAt,
	))
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *eventRepo) ListRsvps(ctx context.Context, eventID string) ([]domain.EventRsvp, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+rsvpColumns+` FROM event_rsvps WHERE event_id = $1 ORDER BY updated_at, id`, eventID)
	return collect(rows, err, scanRsvp)
}

const participationColumns = `id, event_id, user_id, child_id, status, checked_in_at`

func scanParticipation(s scanner) (domain.EventParticipation, error) {
	var (
		p     domain.EventParticipation
		child sql.NullString
	)
	if err := s.Scan(&p.ID, &p.EventID, &p.UserID, &child, &p.Status, &p.CheckedInAt); err != nil {
		return domain.EventParticipation{}, mapErr(err)
	}
	p.ChildID = refOf(child)
	p.CheckedInAt = p.CheckedInAt.UTC()
	return p, nil
}

func (r *eventRepo) FindParticipation(ctx context.Context, eventID, userID string, childID *string) (*domain.EventParticipation, error) {
	p, err := scanParticipation(r.q.QueryRowContext(ctx,
		`SELECT `+participationColumns+` FROM event_participations
		 WHERE event_id = $1 AND user_id = $2 AND child_id IS NOT DISTINCT FROM $3::uuid`,
		eventID, userID, nullRef(childID),
	))
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *eventRepo) SaveParticipation(ctx context.Context, p domain.EventParticipation) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO event_participations (`+participationColumns+`) VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, checked_in_at = EXCLUDED.checked_in_at`,
		p.ID, p.EventID, p.UserID, nullRef(p.ChildID), p.Status, p.CheckedInAt,
	)
	return mapErr(err)
}

func (r *eventRepo) ListParticipations(ctx context.Context, eventID string) ([]domain.EventParticipation, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+participationColumns+` FROM event_participations WHERE event_id = $1 ORDER BY checked_in_at, id`,
		eventID)
	return collect(rows, err, scanParticipation)
}
