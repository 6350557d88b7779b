package domain

import (
	"strings"
	"time"
)

type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

func (d Weekday) Valid() bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	default:
		return false
	}
}

// ParseWeekdays normalises and de-duplicates a weekday list, rejecting unknown names.
func ParseWeekdays(raw []string) ([]Weekday, error) {
	seen := make(map[Weekday]bool, len(raw))
	out := make([]Weekday, 0, len(raw))
	for _, s := range raw {
		d := Weekday(strings.ToLower(strings.TrimSpace(s)))
		if !d.Valid() {
			return nil, Errorf(KindValidation, "Dia da semana inválido: %q", s)
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out, nil
}

func WeekdayStrings(days []Weekday) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = string(d)
	}
	return out
}

type Child struct {
	ID           string    `json:"id"`
	ParentID     string    `json:"parent_id"`
	Name         string    `json:"name"`
	Age          int       `json:"age"`
	SpecialNeeds string    `json:"special_needs,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Cuidoteca struct {
	ID            string    `json:"id"`
	InstitutionID string    `json:"institution_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Hours         string    `json:"hours"`
	Days          []Weekday `json:"days"`
	MaxCapacity   int       `json:"max_capacity"`
	MinAge        int       `json:"min_age"`
	MaxAge        int       `json:"max_age"`
	Caretakers    []string  `json:"caretakers"`
	CreatedAt     time.Time `json:"created_at"`
}

// AcceptsAge reports whether age falls inside the inclusive [MinAge, MaxAge] band.
func (c Cuidoteca) AcceptsAge(age int) bool {
	return age >= c.MinAge && age <= c.MaxAge
}
