package domain

import "time"

type EnrollmentStatus string

const (
	EnrollmentPending   EnrollmentStatus = "pending"
	EnrollmentConfirmed EnrollmentStatus = "confirmed"
	EnrollmentCancelled EnrollmentStatus = "cancelled"
)

// Active reports whether the enrollment still occupies its (child, cuidoteca) slot.
func (s EnrollmentStatus) Active() bool {
	return s == EnrollmentPending || s == EnrollmentConfirmed
}

// Enrollment links a child to a cuidoteca.
type Enrollment struct {
	ID             string           `json:"id"`
	CuidotecaID    string           `json:"cuidoteca_id"`
	ChildID        string           `json:"child_id"`
	ParentID       string           `json:"parent_id"`
	Status         EnrollmentStatus `json:"status"`
	RequestedDays  []Weekday        `json:"requested_days"`
	RequestedHours string           `json:"requested_hours"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// CuidadorEnrollment links a cuidador user directly to a cuidoteca.
type CuidadorEnrollment struct {
	ID             string           `json:"id"`
	CuidotecaID    string           `json:"cuidoteca_id"`
	CuidadorID     string           `json:"cuidador_id"`
	Status         EnrollmentStatus `json:"status"`
	RequestedDays  []Weekday        `json:"requested_days"`
	RequestedHours string           `json:"requested_hours"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
