package domain

import (
	"strings"
	"time"
)

type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Content    string    `json:"content"`
	Read       bool      `json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

// Conversation is derived from the messages exchanged with one counterpart.
type Conversation struct {
	CounterpartID   string    `json:"counterpart_id"`
	CounterpartName string    `json:"counterpart_name"`
	LastMessage     string    `json:"last_message"`
	LastMessageAt   time.Time `json:"last_message_at"`
	Unread          int       `json:"unread"`
}

// TargetGroup selects the recipients of an institution bulk message.
type TargetGroup string

const (
	GroupParents            TargetGroup = "parents"
	GroupCuidadores         TargetGroup = "cuidadores"
	GroupAll                TargetGroup = "all"
	GroupApprovedParents    TargetGroup = "approved-parents"
	GroupApprovedCuidadores TargetGroup = "approved-cuidadores"
	GroupApprovedAll        TargetGroup = "approved-all"
)

func ParseTargetGroup(s string) (TargetGroup, error) {
	g := TargetGroup(strings.ToLower(strings.TrimSpace(s)))
	switch g {
	case GroupParents, GroupCuidadores, GroupAll,
		GroupApprovedParents, GroupApprovedCuidadores, GroupApprovedAll:
		return g, nil
	default:
		return "", Errorf(KindValidation, "Grupo de destinatários inválido: %q", s)
	}
}

// Document is an opaque reference to a shared file; the URL is never interpreted.
type Document struct {
	ID            string             `json:"id"`
	OwnerID       string             `json:"owner_id"`
	InstitutionID string             `json:"institution_id"`
	Title         string             `json:"title"`
	Description   string             `json:"description,omitempty"`
	URL           string             `json:"url"`
	Visibility    DocumentVisibility `json:"visibility"`
	CreatedAt     time.Time          `json:"created_at"`
}

type DocumentVisibility string

const (
	// DocumentCommunity documents are visible to every member linked to the institution.
	DocumentCommunity DocumentVisibility = "community"
	// DocumentPrivate documents are visible to their owner and the institution staff only.
	DocumentPrivate DocumentVisibility = "private"
)
