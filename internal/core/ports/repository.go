package ports

import (
	"context"
	"errors"
	"time"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
)

// ErrNotFound is returned by repositories when a lookup matches no row.
var ErrNotFound = errors.New("repository: not found")

// ErrDuplicate is returned by repositories when a unique constraint rejects a write.
var ErrDuplicate = errors.New("repository: duplicate")

type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, user domain.User) error
	ListByIDs(ctx context.Context, ids []string) ([]domain.User, error)
	Search(ctx context.Context, role domain.Role, query string, limit int) ([]domain.User, error)
}

type ChildRepository interface {
	Create(ctx context.Context, child domain.Child) error
	Get(ctx context.Context, id string) (*domain.Child, error)
	Update(ctx context.Context, child domain.Child) error
	Delete(ctx context.Context, id string) error
	ListByParent(ctx context.Context, parentID string) ([]domain.Child, error)
}

type CuidotecaRepository interface {
	Create(ctx context.Context, c domain.Cuidoteca) error
	Get(ctx context.Context, id string) (*domain.Cuidoteca, error)
	Update(ctx context.Context, c domain.Cuidoteca) error
	Delete(ctx context.Context, id string) error
	ListByInstitutions(ctx context.Context, institutionIDs []string) ([]domain.Cuidoteca, error)
}

type EnrollmentRepository interface {
	Create(ctx context.Context, e domain.Enrollment) error
	Get(ctx context.Context, id string) (*domain.Enrollment, error)
	UpdateStatus(ctx context.Context, id string, status domain.EnrollmentStatus, at time.Time) error
	Delete(ctx context.Context, id string) error
	FindActive(ctx context.Context, childID, cuidotecaID string) (*domain.Enrollment, error)
	ListByParent(ctx context.Context, parentID string) ([]domain.Enrollment, error)
	ListByCuidoteca(ctx context.Context, cuidotecaID string) ([]domain.Enrollment, error)
	// ConfirmedParentIDs lists parents with at least one confirmed enrollment in any
	// cuidoteca owned by the institution.
	ConfirmedParentIDs(ctx context.Context, institutionID string) ([]string, error)
}

type CuidadorEnrollmentRepository interface {
	Create(ctx context.Context, e domain.CuidadorEnrollment) error
	Get(ctx context.Context, id string) (*domain.CuidadorEnrollment, error)
	UpdateStatus(ctx context.Context, id string, status domain.EnrollmentStatus, at time.Time) error
	Delete(ctx context.Context, id string) error
	FindActive(ctx context.Context, cuidadorID, cuidotecaID string) (*domain.CuidadorEnrollment, error)
	ListByCuidador(ctx context.Context, cuidadorID string) ([]domain.CuidadorEnrollment, error)
	ListByCuidoteca(ctx context.Context, cuidotecaID string) ([]domain.CuidadorEnrollment, error)
	ConfirmedCuidadorIDs(ctx context.Context, institutionID string) ([]string, error)
}

type InstitutionLinkRepository interface {
	Create(ctx context.Context, link domain.InstitutionLink) error
	Find(ctx context.Context, userID, institutionID string) (*domain.InstitutionLink, error)
	// Delete removes the link if present and reports whether a row was removed.
	Delete(ctx context.Context, userID, institutionID string) (bool, error)
	// ListByUser returns the user's links ordered by creation time, then id.
	ListByUser(ctx context.Context, userID string) ([]domain.InstitutionLink, error)
	ListMembers(ctx context.Context, institutionID string) ([]domain.User, error)
}

type ConnectionRepository interface {
	Create(ctx context.Context, c domain.Connection) error
	Get(ctx context.Context, id string) (*domain.Connection, error)
	// FindBetween returns the edge between a and b in either direction.
	FindBetween(ctx context.Context, a, b string) (*domain.Connection, error)
	Update(ctx context.Context, c domain.Connection) error
	Delete(ctx context.Context, id string) error
	ListAccepted(ctx context.Context, userID string) ([]domain.Connection, error)
	ListIncomingPending(ctx context.Context, userID string) ([]domain.Connection, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n domain.Notification) error
	Get(ctx context.Context, id string) (*domain.Notification, error)
	// ListByUser returns the user's notifications newest first.
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id string) error
	DeleteByConnectionRequest(ctx context.Context, connectionID string) error
}

type PostRepository interface {
	Create(ctx context.Context, p domain.Post) error
	Get(ctx context.Context, id string) (*domain.Post, error)
	Update(ctx context.Context, p domain.Post) error
	Delete(ctx context.Context, id string) error
	// ListByInstitutions returns pinned posts first, then newest first.
	ListByInstitutions(ctx context.Context, institutionIDs []string) ([]domain.Post, error)
	GetVote(ctx context.Context, postID, userID string) (*domain.PostVote, error)
	UpsertVote(ctx context.Context, v domain.PostVote) error
	DeleteVote(ctx context.Context, postID, userID string) error
}

type EventRepository interface {
	Create(ctx context.Context, e domain.Event) error
	Get(ctx context.Context, id string) (*domain.Event, error)
	Update(ctx context.Context, e domain.Event) error
	Delete(ctx context.Context, id string) error
	ListByInstitutions(ctx context.Context, institutionIDs []string) ([]domain.Event, error)
	UpsertRsvp(ctx context.Context, r domain.EventRsvp) (*domain.EventRsvp, error)
	ListRsvps(ctx context.Context, eventID string) ([]domain.EventRsvp, error)
	FindParticipation(ctx context.Context, eventID, userID string, childID *string) (*domain.EventParticipation, error)
	SaveParticipation(ctx context.Context, p domain.EventParticipation) error
	ListParticipations(ctx context.Context, eventID string) ([]domain.EventParticipation, error)
}

type MessageRepository interface {
	Create(ctx context.Context, m domain.Message) error
	// ListBetween returns the messages exchanged by a and b, oldest first.
	ListBetween(ctx context.Context, a, b string) ([]domain.Message, error)
	// ListForUser returns every message sent or received by the user, newest first.
	ListForUser(ctx context.Context, userID string) ([]domain.Message, error)
	MarkReadFrom(ctx context.Context, receiverID, senderID string) error
}

type DocumentRepository interface {
	Create(ctx context.Context, d domain.Document) error
	Get(ctx context.Context, id string) (*domain.Document, error)
	Delete(ctx context.Context, id string) error
	ListByInstitutions(ctx context.Context, institutionIDs []string) ([]domain.Document, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Document, error)
}

// Repositories groups every repository bound to the same connection or transaction.
type Repositories interface {
	Users() UserRepository
	Children() ChildRepository
	Cuidotecas() CuidotecaRepository
	Enrollments() EnrollmentRepository
	CuidadorEnrollments() CuidadorEnrollmentRepository
	InstitutionLinks() InstitutionLinkRepository
	Connections() ConnectionRepository
	Notifications() NotificationRepository
	Posts() PostRepository
	Events() EventRepository
	Messages() MessageRepository
	Documents() DocumentRepository
}

// Store is the storage dependency handed to every service.
//
// Tx runs fn inside a single transaction that commits when fn returns nil. Notification
// inserts inside Tx are isolated so a failing insert does not abort the transaction.
// View runs fn against non-transactional repositories for read paths.
type Store interface {
	Tx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
	View(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
	Ping(ctx context.Context) error
}

// TokenStore tracks revoked access tokens by their jti.
type TokenStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
