package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

type userRepo struct {
	q querier
}

var _ ports.UserRepository = (*userRepo)(nil)

const userColumns = `id, email, name, role, institution_name, institution_id, bio, phone, password_hash, created_at`

func scanUser(s scanner) (domain.User, error) {
	var (
		u    domain.User
		inst sql.NullString
	)
	err := s.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.InstitutionName, &inst,
		&u.Bio, &u.Phone, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return domain.User{}, mapErr(err)
	}
	u.InstitutionID = inst.String
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

func (r *userRepo) Create(ctx context.Context, u domain.User) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.ID, u.Email, u.Name, u.Role, u.InstitutionName, nullString(u.InstitutionID),
		u.Bio, u.Phone, u.PasswordHash, u.CreatedAt,
	)
	return mapErr(err)
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) UpdateProfile(ctx context.Context, u domain.User) error {
	return expectRow(r.q.ExecContext(ctx,
		`UPDATE users SET name = $2, bio = $3, phone = $4 WHERE id = $1`,
		u.ID, u.Name, u.Bio, u.Phone,
	))
}

func (r *userRepo) ListByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ANY($1::uuid[]) ORDER BY name, id`,
		pq.Array(ids),
	)
	return collect(rows, err, scanUser)
}

// Search matches the query against name, institution name and email. An empty role
// searches every role.
func (r *userRepo) Search(ctx context.Context, role domain.Role, query string, limit int) ([]domain.User, error) {
	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE ($1 = '' OR role = $1)
		   AND (name ILIKE $2 OR institution_name ILIKE $2 OR email ILIKE $2)
		 ORDER BY lower(name), id
		 LIMIT $3`,
		string(role), pattern, limit,
	)
	return collect(rows, err, scanUser)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
