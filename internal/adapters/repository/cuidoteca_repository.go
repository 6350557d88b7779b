package repository

import (
	"context"

	"github.com/lib/pq"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

type childRepo struct {
	q querier
}

var _ ports.ChildRepository = (*childRepo)(nil)

const childColumns = `id, parent_id, name, age, special_needs, created_at`

func scanChild(s scanner) (domain.Child, error) {
	var c domain.Child
	if err := s.Scan(&c.ID, &c.ParentID, &c.Name, &c.Age, &c.SpecialNeeds, &c.CreatedAt); err != nil {
		return domain.Child{}, mapErr(err)
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

func (r *childRepo) Create(ctx context.Context, c domain.Child) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO children (`+childColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.ParentID, c.Name, c.Age, c.SpecialNeeds, c.CreatedAt,
	)
	return mapErr(err)
}

func (r *childRepo) Get(ctx context.Context, id string) (*domain.Child, error) {
	c, err := scanChild(r.q.QueryRowContext(ctx, `SELECT `+childColumns+` FROM children WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *childRepo) Update(ctx context.Context, c domain.Child) error {
	return expectRow(r.q.ExecContext(ctx,
		`UPDATE children SET name = $2, age = $3, special_needs = $4 WHERE id = $1`,
		c.ID, c.Name, c.Age, c.SpecialNeeds,
	))
}

func (r *childRepo) Delete(ctx context.Context, id string) error {
	return expectRow(r.q.ExecContext(ctx, `DELETE FROM children WHERE id = $1`, id))
}

func (r *childRepo) ListByParent(ctx context.Context, parentID string) ([]domain.Child, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+childColumns+` FROM children WHERE parent_id = $1 ORDER BY created_at, id`, parentID)
	return collect(rows, err, scanChild)
}

type cuidotecaRepo struct {
	q querier
}

var _ ports.CuidotecaRepository = (*cuidotecaRepo)(nil)

const cuidotecaColumns = `id, institution_id, name, description, hours, days, max_capacity, min_age, max_age, caretakers, created_at`

func scanCuidoteca(s scanner) (domain.Cuidoteca, error) {
	var (
		c    domain.Cuidoteca
		days []string
	)
	err := s.Scan(&c.ID, &c.InstitutionID, &c.Name, &c.Description, &c.Hours, pq.Array(&days),
		&c.MaxCapacity, &c.MinAge, &c.MaxAge, pq.Array(&c.Caretakers), &c.CreatedAt)
	if err != nil {
		return domain.Cuidoteca{}, mapErr(err)
	}
	c.Days = toWeekdays(days)
	if c.Caretakers == nil {
		c.Caretakers = []string{}
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

func (r *cuidotecaRepo) Create(ctx context.Context, c domain.Cuidoteca) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO cuidotecas (`+cuidotecaColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID, c.InstitutionID, c.Name, c.Description, c.Hours, pq.Array(domain.WeekdayStrings(c.Days)),
		c.MaxCapacity, c.MinAge, c.MaxAge, pq.Array(nonNil(c.Caretakers)), c.CreatedAt,
	)
	return mapErr(err)
}

func (r *cuidotecaRepo) Get(ctx context.Context, id string) (*domain.Cuidoteca, error) {
	c, err := scanCuidoteca(r.q.QueryRowContext(ctx, `SELECT `+cuidotecaColumns+` FROM cuidotecas WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cuidotecaRepo) Update(ctx context.Context, c domain.Cuidoteca) error {
	return expectRow(r.q.ExecContext(ctx,
		`UPDATE cuidotecas
		 SET name = $2, description = $3, hours = $4, days = $5, max_capacity = $6,
		     min_age = $7, max_age = $8, caretakers = $9
		 WHERE id = $1`,
		c.ID, c.Name, c.Description, c.Hours, pq.Array(domain.WeekdayStrings(c.Days)),
		c.MaxCapacity, c.MinAge, c.MaxAge, pq.Array(nonNil(c.Caretakers)),
	))
}

func (r *cuidotecaRepo) Delete(ctx context.Context, id string) error {
	return expectRow(r.q.ExecContext(ctx, `DELETE FROM cuidotecas WHERE id = $1`, id))
}

func (r *cuidotecaRepo) ListByInstitutions(ctx context.Context, institutionIDs []string) ([]domain.Cuidoteca, error) {
	if len(institutionIDs) == 0 {
		return nil, nil
	}
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+cuidotecaColumns+` FROM cuidotecas
		 WHERE institution_id = ANY($1::uuid[])
		 ORDER BY created_at DESC, id`,
		pq.Array(institutionIDs),
	)
	return collect(rows, err, scanCuidoteca)
}

func toWeekdays(days []string) []domain.Weekday {
	out := make([]domain.Weekday, 0, len(days))
	for _, d := range days {
		out = append(out, domain.Weekday(d))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
