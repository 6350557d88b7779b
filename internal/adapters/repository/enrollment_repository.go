package repository

import (
	"context"
	"time"

	"github.com/lib/pq"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

type enrollmentRepo struct {
	q querier
}

var _ ports.EnrollmentRepository = (*enrollmentRepo)(nil)

const enrollmentColumns = `id, cuidoteca_id, child_id, parent_id, status, requested_days, requested_hours, created_at, updated_at`

func scanEnrollment(s scanner) (domain.Enrollment, error) {
	var (
		e    domain.Enrollment
		days []string
	)
	err := s.Scan(&e.ID, &e.CuidotecaID, &e.ChildID, &e.ParentID, &e.Status, pq.Array(&days),
		&e.RequestedHours, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return domain.Enrollment{}, mapErr(err)
	}
	e.RequestedDays = toWeekdays(days)
	e.CreatedAt, e.UpdatedAt = e.CreatedAt.UTC(), e.UpdatedAt.UTC()
	return e, nil
}

func (r *enrollmentRepo) Create(ctx context.Context, e domain.Enrollment) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO enrollments (`+enrollmentColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		e.ID, e.CuidotecaID, e.ChildID, e.ParentID, e.Status,
		pq.Array(domain.WeekdayStrings(e.RequestedDays)), e.RequestedHours, e.CreatedAt, e.UpdatedAt,
	)
	return mapErr(err)
}

func (r *enrollmentRepo) Get(ctx context.Context, id string) (*domain.Enrollment, error) {
	e, err := scanEnrollment(r.q.QueryRowContext(ctx, `SELECT `+enrollmentColumns+` FROM enrollments WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) UpdateStatus(ctx context.Context, id string, status domain.EnrollmentStatus, at time.Time) error {
	return expectRow(r.q.ExecContext(ctx,
		`UPDATE enrollments SET status = $2, updated_at = $3 WHERE id = $1`, id, status, at))
}

func (r *enrollmentRepo) Delete(ctx context.Context, id string) error {
	return expectRow(r.q.ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id))
}

func (r *enrollmentRepo) FindActive(ctx context.Context, childID, cuidotecaID string) (*domain.Enrollment, error) {
	e, err := scanEnrollment(r.q.QueryRowContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments
		 WHERE child_id = $1 AND cuidoteca_id = $2 AND status IN ('pending', 'confirmed')`,
		childID, cuidotecaID,
	))
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) ListByParent(ctx context.Context, parentID string) ([]domain.Enrollment, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE parent_id = $1 ORDER BY created_at DESC, id`, parentID)
	return collect(rows, err, scanEnrollment)
}

func (r *enrollmentRepo) ListByCuidoteca(ctx context.Context, cuidotecaID string) ([]domain.Enrollment, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE cuidoteca_id = $1 ORDER BY created_at DESC, id`, cuidotecaID)
	return collect(rows, err, scanEnrollment)
}

func (r *enrollmentRepo) ConfirmedParentIDs(ctx context.Context, institutionID string) ([]string, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT DISTINCT e.parent_id FROM enrollments e
		 JOIN cuidotecas c ON c.id = e.cuidoteca_id
		 WHERE c.institution_id = $1 AND e.status = 'confirmed'
		 ORDER BY e.parent_id`,
		institutionID,
	)
	return collect(rows, err, scanID)
}

type cuidadorEnrollmentRepo struct {
	q querier
}

var _ ports.CuidadorEnrollmentRepository = (*cuidadorEnrollmentRepo)(nil)

const cuidadorEnrollmentColumns = `id, cuidoteca_id, cuidador_id, status, requested_days, requested_hours, created_at, updated_at`

func scanCuidadorEnrollment(s scanner) (domain.CuidadorEnrollment, error) {
	var (
		e    domain.CuidadorEnrollment
		days []string
	)
	err := s.Scan(&e.ID, &e.CuidotecaID, &e.CuidadorID, &e.Status, pq.Array(&days),
		&e.RequestedHours, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return domain.CuidadorEnrollment{}, mapErr(err)
	}
	e.RequestedDays = toWeekdays(days)
	e.CreatedAt, e.UpdatedAt = e.CreatedAt.UTC(), e.UpdatedAt.UTC()
	return e, nil
}

func (r *cuidadorEnrollmentRepo) Create(ctx context.Context, e domain.CuidadorEnrollment) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO cuidador_enrollments (`+cuidadorEnrollmentColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.CuidotecaID, e.CuidadorID, e.Status,
		pq.Array(domain.WeekdayStrings(e.RequestedDays)), e.RequestedHours, e.CreatedAt, e.UpdatedAt,
	)
	return mapErr(err)
}

func (r *cuidadorEnrollmentRepo) Get(ctx context.Context, id string) (*domain.CuidadorEnrollment, error) {
	e, err := scanCuidadorEnrollment(r.q.QueryRowContext(ctx,
		`SELECT `+cuidadorEnrollmentColumns+` FROM cuidador_enrollments WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *cuidadorEnrollmentRepo) UpdateStatus(ctx context.Context, id string, status domain.EnrollmentStatus, at time.Time) error {
	return expectRow(r.q.ExecContext(ctx,
		`UPDATE cuidador_enrollments SET status = $2, updated_at = $3 WHERE id = $1`, id, status, at))
}

func (r *cuidadorEnrollmentRepo) Delete(ctx context.Context, id string) error {
	return expectRow(r.q.ExecContext(ctx, `DELETE FROM cuidador_enrollments WHERE id = $1`, id))
}

func (r *cuidadorEnrollmentRepo) FindActive(ctx context.Context, cuidadorID, cuidotecaID string) (*domain.CuidadorEnrollment, error) {
	e, err := scanCuidadorEnrollment(r.q.QueryRowContext(ctx,
		`SELECT `+cuidadorEnrollmentColumns+` FROM cuidador_enrollments
		 WHERE cuidador_id = $1 AND cuidoteca_id = $2 AND status IN ('pending', 'confirmed')`,
		cuidadorID, cuidotecaID,
	))
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *cuidadorEnrollmentRepo) ListByCuidador(ctx context.Context, cuidadorID string) ([]domain.CuidadorEnrollment, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+cuidadorEnrollmentColumns+` FROM cuidador_enrollments WHERE cuidador_id = $1 ORDER BY created_at DESC, id`,
		cuidadorID)
	return collect(rows, err, scanCuidadorEnrollment)
}

func (r *cuidadorEnrollmentRepo) ListByCuidoteca(ctx context.Context, cuidotecaID string) ([]domain.CuidadorEnrollment, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+cuidadorEnrollmentColumns+` FROM cuidador_enrollments WHERE cuidoteca_id = $1 ORDER BY created_at DESC, id`,
		cuidotecaID)
	return collect(rows, err, scanCuidadorEnrollment)
}

func (r *cuidadorEnrollmentRepo) ConfirmedCuidadorIDs(ctx context.Context, institutionID string) ([]string, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT DISTINCT e.cuidador_id FROM cuidador_enrollments e
		 JOIN cuidotecas c ON c.id = e.cuidoteca_id
		 WHERE c.institution_id = $1 AND e.status = 'confirmed'
		 ORDER BY e.cuidador_id`,
		institutionID,
	)
	return collect(rows, err, scanID)
}

func scanID(s scanner) (string, error) {
	var id string
	if err := s.Scan(&id); err != nil {
		return "", mapErr(err)
	}
	return id, nil
}
