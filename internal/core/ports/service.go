package ports

import (
	"context"
	"time"

	"github.com/AchilleasB/cuidotecas/community-service/internal/core/domain"
)

type RegisterInput struct {
	Email           string
	Password        string
	Name            string
	Role            string
	InstitutionName string
	InstitutionID   string
}

type ProfileInput struct {
	Name  string
	Bio   string
	Phone string
}

type ChildInput struct {
	Name         string
	Age          int
	SpecialNeeds string
}

type CuidotecaInput struct {
	Name        string
	Description string
	Hours       string
	Days        []string
	MaxCapacity int
	MinAge      int
	MaxAge      int
	Caretakers  []string
}

type EnrollInput struct {
	CuidotecaID    string
	ChildID        string
	RequestedDays  []string
	RequestedHours string
}

type PostInput struct {
	Content  string
	ImageURL string
}

type EventInput struct {
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      *time.Time
}

type DocumentInput struct {
	Title         string
	Description   string
	URL           string
	InstitutionID string
}

// ConnectionView pairs an edge with the counterpart user as seen by the caller.
type ConnectionView struct {
	Connection domain.Connection `json:"connection"`
	User       domain.User       `json:"user"`
}

// Profile is the public view of a user together with how the caller relates to them.
type Profile struct {
	User         domain.User            `json:"user"`
	Connection   domain.ConnectionState `json:"connection_status"`
	ConnectionID string                 `json:"connection_id,omitempty"`
}

// VoteResult reports the post counters after a vote toggle.
type VoteResult struct {
	Post    domain.Post        `json:"post"`
	Outcome domain.VoteOutcome `json:"outcome"`
	Vote    *domain.VoteType   `json:"vote,omitempty"`
}

type BulkResult struct {
	Group      domain.TargetGroup `json:"group"`
	Recipients int                `json:"recipients"`
}

type ParticipantView struct {
	Rsvps          []domain.EventRsvp          `json:"rsvps"`
	Participations []domain.EventParticipation `json:"participations"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
}

type RegistrationService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
}

type UserService interface {
	GetProfile(ctx context.Context, actor domain.Actor, userID string) (*Profile, error)
	UpdateProfile(ctx context.Context, actor domain.Actor, in ProfileInput) (*domain.User, error)
	SearchUsers(ctx context.Context, actor domain.Actor, role, query string) ([]domain.User, error)
}

type ChildService interface {
	CreateChild(ctx context.Context, actor domain.Actor, in ChildInput) (*domain.Child, error)
	UpdateChild(ctx context.Context, actor domain.Actor, childID string, in ChildInput) (*domain.Child, error)
	DeleteChild(ctx context.Context, actor domain.Actor, childID string) error
	ListChildren(ctx context.Context, actor domain.Actor) ([]domain.Child, error)
}

type CuidotecaService interface {
	CreateCuidoteca(ctx context.Context, actor domain.Actor, in CuidotecaInput) (*domain.Cuidoteca, error)
	UpdateCuidoteca(ctx context.Context, actor domain.Actor, id string, in CuidotecaInput) (*domain.Cuidoteca, error)
	DeleteCuidoteca(ctx context.Context, actor domain.Actor, id string) error
	GetCuidoteca(ctx context.Context, actor domain.Actor, id string) (*domain.Cuidoteca, error)
	ListCuidotecas(ctx context.Context, actor domain.Actor) ([]domain.Cuidoteca, error)
}

type EnrollmentService interface {
	Enroll(ctx context.Context, actor domain.Actor, in EnrollInput) (*domain.Enrollment, error)
	Approve(ctx context.Context, actor domain.Actor, enrollmentID string) (*domain.Enrollment, error)
	Reject(ctx context.Context, actor domain.Actor, enrollmentID string) (*domain.Enrollment, error)
	Cancel(ctx context.Context, actor domain.Actor, enrollmentID string) error
	ListForParent(ctx context.Context, actor domain.Actor) ([]domain.Enrollment, error)
	ListForCuidoteca(ctx context.Context, actor domain.Actor, cuidotecaID string) ([]domain.Enrollment, error)

	EnrollCuidador(ctx context.Context, actor domain.Actor, in EnrollInput) (*domain.CuidadorEnrollment, error)
	ApproveCuidador(ctx context.Context, actor domain.Actor, enrollmentID string) (*domain.CuidadorEnrollment, error)
	RejectCuidador(ctx context.Context, actor domain.Actor, enrollmentID string) (*domain.CuidadorEnrollment, error)
	CancelCuidador(ctx context.Context, actor domain.Actor, enrollmentID string) error
	ListForCuidador(ctx context.Context, actor domain.Actor) ([]domain.CuidadorEnrollment, error)
	ListCuidadoresForCuidoteca(ctx context.Context, actor domain.Actor, cuidotecaID string) ([]domain.CuidadorEnrollment, error)
}

type ConnectionService interface {
	RequestConnection(ctx context.Context, actor domain.Actor, recipientID string) (*domain.Connection, error)
	AcceptConnection(ctx context.Context, actor domain.Actor, connectionID string) (*domain.Connection, error)
	DeclineConnection(ctx context.Context, actor domain.Actor, connectionID string) (*domain.Connection, error)
	RemoveConnection(ctx context.Context, actor domain.Actor, connectionID string) error
	ConnectionStatus(ctx context.Context, actor domain.Actor, targetID string) (domain.ConnectionState, *domain.Connection, error)
	ListConnections(ctx context.Context, actor domain.Actor) ([]ConnectionView, error)
	ListPendingRequests(ctx context.Context, actor domain.Actor) ([]ConnectionView, error)

	ConnectInstitution(ctx context.Context, actor domain.Actor, institutionID string) (*domain.InstitutionLink, error)
	DisconnectInstitution(ctx context.Context, actor domain.Actor, institutionID string) error
	RemoveMember(ctx context.Context, actor domain.Actor, userID string) error
	ListInstitutions(ctx context.Context, actor domain.Actor) ([]domain.User, error)
	ListMembers(ctx context.Context, actor domain.Actor) ([]domain.User, error)
}

type NotificationService interface {
	List(ctx context.Context, actor domain.Actor) ([]domain.Notification, error)
	UnreadCount(ctx context.Context, actor domain.Actor) (int, error)
	MarkAsRead(ctx context.Context, actor domain.Actor, notificationID string) error
	MarkAllAsRead(ctx context.Context, actor domain.Actor) error
	Delete(ctx context.Context, actor domain.Actor, notificationID string) error
}

type FeedService interface {
	ListFeed(ctx context.Context, actor domain.Actor) ([]domain.Post, error)
	CreatePost(ctx context.Context, actor domain.Actor, in PostInput) (*domain.Post, error)
	Vote(ctx context.Context, actor domain.Actor, postID, voteType string) (*VoteResult, error)
	TogglePin(ctx context.Context, actor domain.Actor, postID string) (*domain.Post, error)
	ToggleFlag(ctx context.Context, actor domain.Actor, postID string) (*domain.Post, error)
	DeletePost(ctx context.Context, actor domain.Actor, postID string) error
}

type EventService interface {
	CreateEvent(ctx context.Context, actor domain.Actor, in EventInput) (*domain.Event, error)
	UpdateEvent(ctx context.Context, actor domain.Actor, eventID string, in EventInput) (*domain.Event, error)
	DeleteEvent(ctx context.Context, actor domain.Actor, eventID string) error
	ListEvents(ctx context.Context, actor domain.Actor) ([]domain.Event, error)
	RSVP(ctx context.Context, actor domain.Actor, eventID, status string) (*domain.EventRsvp, error)
	CheckIn(ctx context.Context, actor domain.Actor, eventID string, childID *string) (*domain.EventParticipation, error)
	CancelParticipation(ctx context.Context, actor domain.Actor, eventID string, childID *string) (*domain.EventParticipation, error)
	ListParticipants(ctx context.Context, actor domain.Actor, eventID string) (*ParticipantView, error)
}

type DocumentService interface {
	ShareDocument(ctx context.Context, actor domain.Actor, in DocumentInput) (*domain.Document, error)
	ListDocuments(ctx context.Context, actor domain.Actor) ([]domain.Document, error)
	DeleteDocument(ctx context.Context, actor domain.Actor, documentID string) error
}

type MessagingService interface {
	Send(ctx context.Context, actor domain.Actor, receiverID, content string) (*domain.Message, error)
	GetConversation(ctx context.Context, actor domain.Actor, counterpartID string) ([]domain.Message, error)
	ListConversations(ctx context.Context, actor domain.Actor) ([]domain.Conversation, error)
	BulkSend(ctx context.Context, actor domain.Actor, group, content string) (*BulkResult, error)
}
