package domain

import (
	"strings"
	"time"
)

type Event struct {
	ID            string     `json:"id"`
	InstitutionID string     `json:"institution_id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Location      string     `json:"location,omitempty"`
	StartsAt      time.Time  `json:"starts_at"`
	EndsAt        *time.Time `json:"ends_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type RsvpStatus string

const (
	RsvpGoing    RsvpStatus = "going"
	RsvpNotGoing RsvpStatus = "not_going"
)

func ParseRsvpStatus(s string) (RsvpStatus, error) {
	v := RsvpStatus(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case RsvpGoing, RsvpNotGoing:
		return v, nil
	default:
		return "", Errorf(KindValidation, "Resposta inválida: %q", s)
	}
}

type EventRsvp struct {
	ID        string     `json:"id"`
	EventID   string     `json:"event_id"`
	UserID    string     `json:"user_id"`
	Status    RsvpStatus `json:"status"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type ParticipationStatus string

const (
	ParticipationConfirmed ParticipationStatus = "confirmed"
	ParticipationCancelled ParticipationStatus = "cancelled"
)

// EventParticipation is a check-in record, optionally for a specific child.
type EventParticipation struct {
	ID          string              `json:"id"`
	EventID     string              `json:"event_id"`
	UserID      string              `json:"user_id"`
	ChildID     *string             `json:"child_id,omitempty"`
	Status      ParticipationStatus `json:"status"`
	CheckedInAt time.Time           `json:"checked_in_at"`
}
