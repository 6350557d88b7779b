package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AchilleasB/cuidotecas/community-service/internal/config"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
	"github.com/AchilleasB/cuidotecas/community-service/internal/core/ports"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the PostgreSQL implementation of ports.Store. Every call goes through a
// circuit breaker; business rejections returned by the callback do not count as failures.
type Store struct {
	db     *sql.DB
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

var _ ports.Store = (*Store)(nil)

func NewStore(db *sql.DB, logger *zap.Logger) *Store {
	return NewNamedStore(db, "PostgreSQL", logger)
}

// NewNamedStore is NewStore with its own breaker name, so each process reports its
// breaker separately.
func NewNamedStore(db *sql.DB, breaker string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:     db,
		cb:     config.NewCircuitBreaker(breaker, breakerSuccess, logger),
		logger: logger,
	}
}

// Degraded reports whether the breaker is open.
func (s *Store) Degraded() bool {
	return s.cb.State() == gobreaker.StateOpen
}

func breakerSuccess(err error) bool {
	return err == nil || domain.IsBusiness(err) || errors.Is(err, ports.ErrNotFound) ||
		errors.Is(err, ports.ErrDuplicate) || errors.Is(err, context.Canceled)
}

func (s *Store) Tx(ctx context.Context, fn func(ctx context.Context, r ports.Repositories) error) error {
	_, err := s.cb.Execute(func() (any, error) {
		return nil, s.runTx(ctx, fn)
	})
	return breakerErr(err)
}

func (s *Store) runTx(ctx context.Context, fn func(ctx context.Context, r ports.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := fn(ctx, &repos{q: tx, inTx: true, logger: s.logger}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) View(ctx context.Context, fn func(ctx context.Context, r ports.Repositories) error) error {
	_, err := s.cb.Execute(func() (any, error) {
		return nil, fn(ctx, &repos{q: s.db, logger: s.logger})
	})
	return breakerErr(err)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func breakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("database unavailable: %w", err)
	}
	return err
}

type repos struct {
	q      querier
	inTx   bool
	logger *zap.Logger
}

func (r *repos) Users() ports.UserRepository { return &userRepo{q: r.q} }
func (r *repos) Children() ports.ChildRepository { return &childRepo{q: r.q} }
func (r *repos) Cuidotecas() ports.CuidotecaRepository { return &cuidotecaRepo{q: r.q} }
func (r *repos) Enrollments() ports.EnrollmentRepository {
	return &enrollmentRepo{q: r.q}
}
func (r *repos) CuidadorEnrollments() ports.CuidadorEnrollmentRepository {
	return &cuidadorEnrollmentRepo{q: r.q}
}
func (r *repos) InstitutionLinks() ports.InstitutionLinkRepository {
	return &institutionLinkRepo{q: r.q, savepoint: r.inTx}
}
func (r *repos) Connections() ports.ConnectionRepository { return &connectionRepo{q: r.q} }
func (r *repos) Notifications() ports.NotificationRepository {
	return &notificationRepo{q: r.q, savepoint: r.inTx}
}
func (r *repos) Posts() ports.PostRepository { return &postRepo{q: r.q, lock: r.inTx} }
func (r *repos) Events() ports.EventRepository { return &eventRepo{q: r.q} }
func (r *repos) Messages() ports.MessageRepository { return &messageRepo{q: r.q} }
func (r *repos) Documents() ports.DocumentRepository { return &documentRepo{q: r.q} }

// mapErr translates driver errors into the repository sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ports.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", ports.ErrDuplicate, pqErr.Constraint)
		case "22P02":
			// malformed uuid: no row can match it
			return ports.ErrNotFound
		}
	}
	return err
}

// withSavepoint runs fn between SAVEPOINT and RELEASE, rolling back to the savepoint
// when fn fails. A statement that fails inside it leaves the surrounding transaction usable.
func withSavepoint(ctx context.Context, q querier, name string, fn func() error) error {
	if _, err := q.ExecContext(ctx, `SAVEPOINT `+name); err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	if err := fn(); err != nil {
		if _, rbErr := q.ExecContext(ctx, `ROLLBACK TO SAVEPOINT `+name); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback to savepoint: %w", rbErr))
		}
		return err
	}
	_, err := q.ExecContext(ctx, `RELEASE SAVEPOINT `+name)
	return err
}

// validIDs reports whether every id is a canonical uuid. Postgres aborts the
// transaction on a malformed uuid literal, so callers that tolerate absence check first.
func validIDs(ids ...string) bool {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil || len(id) != 36 {
			return false
		}
	}
	return true
}

// expectRow turns an update or delete that touched nothing into ErrNotFound.
func expectRow(res sql.Result, err error) error {
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullRef(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return nullString(*s)
}

func refOf(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func timeRef(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// collect drains rows through scan, closing them afterwards.
func collect[T any](rows *sql.Rows, err error, scan func(scanner) (T, error)) ([]T, error) {
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, mapErr(rows.Err())
}
