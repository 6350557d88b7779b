package domain

import "time"

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionDeclined ConnectionStatus = "declined"
)

// Connection is a peer edge between two users.
type Connection struct {
	ID          string           `json:"id"`
	RequesterID string           `json:"requester_id"`
	RecipientID string           `json:"recipient_id"`
	Status      ConnectionStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	AcceptedAt  *time.Time       `json:"accepted_at,omitempty"`
}

// Involves reports whether userID is one of the two participants.
func (c Connection) Involves(userID string) bool {
	return c.RequesterID == userID || c.RecipientID == userID
}

// Counterpart returns the other participant of the edge.
func (c Connection) Counterpart(userID string) string {
	if c.RequesterID == userID {
		return c.RecipientID
	}
	return c.RequesterID
}

// InstitutionLink is an existence-only edge between a user and an institution.
type InstitutionLink struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	InstitutionID string    `json:"institution_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type ConnectionState string

const (
	StateNotConnected    ConnectionState = "not_connected"
	StateConnected       ConnectionState = "connected"
	StatePendingOutgoing ConnectionState = "pending_outgoing"
	StatePendingIncoming ConnectionState = "pending_incoming"
)

// StateFor derives the connection state of edge as seen from currentUserID.
// A nil edge or a declined one means the pair is not connected.
func StateFor(edge *Connection, currentUserID string) ConnectionState {
	if edge == nil {
		return StateNotConnected
	}
	switch edge.Status {
	case ConnectionAccepted:
		return StateConnected
	case ConnectionPending:
		if edge.RequesterID == currentUserID {
			return StatePendingOutgoing
		}
		return StatePendingIncoming
	case ConnectionDeclined:
		return StateNotConnected
	default:
		return StateNotConnected
	}
}
