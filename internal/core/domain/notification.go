package domain

import "time"

type NotificationType string

const (
	NotificationGeneral           NotificationType = "general"
	NotificationConnectionRequest NotificationType = "connection_request"
	NotificationCuidotecaCreated  NotificationType = "cuidoteca_created"
	NotificationEventCreated      NotificationType = "event_created"
	NotificationVote              NotificationType = "vote"
	NotificationPostFlagged       NotificationType = "post_flagged"
	NotificationEnrollmentRequest NotificationType = "enrollment_request"
	NotificationEnrollmentUpdate  NotificationType = "enrollment_update"
)

// Notification is addressed to exactly one user. Reference ids point at the entity that
// triggered it and are nil when not applicable.
type Notification struct {
	ID                  string           `json:"id"`
	UserID              string           `json:"user_id"`
	Message             string           `json:"message"`
	Type                NotificationType `json:"type"`
	ConnectionRequestID *string          `json:"connection_request_id,omitempty"`
	CuidotecaID         *string          `json:"cuidoteca_id,omitempty"`
	EventID             *string          `json:"event_id,omitempty"`
	PostID              *string          `json:"post_id,omitempty"`
	Read                bool             `json:"read"`
	CreatedAt           time.Time        `json:"created_at"`
	DeliveredAt         *time.Time       `json:"-"`
}

// Ref is a small helper for building optional reference ids.
func Ref(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}
