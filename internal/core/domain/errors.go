package domain

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindForbidden        Kind = "forbidden"
	KindNotFound         Kind = "not_found"
	KindAlreadyExists    Kind = "already_exists"
	KindAlreadyConnected Kind = "already_connected"
	KindInvalidPair      Kind = "invalid_pair"
	KindInvalidState     Kind = "invalid_state"
	KindAgeOutOfRange    Kind = "age_out_of_range"
	KindEmptyGroup       Kind = "empty_group"
	KindNotOwned         Kind = "not_owned"
	KindNotConnected     Kind = "not_connected"
	KindNoInstitution    Kind = "no_institution"
	KindValidation       Kind = "validation"
	KindUnauthenticated  Kind = "unauthenticated"
)

// Error is a business rule rejection. It is always detected before any mutation.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is matches any *Error of the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrForbidden        = &Error{Kind: KindForbidden}
	ErrNotFound         = &Error{Kind: KindNotFound}
	ErrAlreadyExists    = &Error{Kind: KindAlreadyExists}
	ErrAlreadyConnected = &Error{Kind: KindAlreadyConnected}
	ErrInvalidPair      = &Error{Kind: KindInvalidPair}
	ErrInvalidState     = &Error{Kind: KindInvalidState}
	ErrAgeOutOfRange    = &Error{Kind: KindAgeOutOfRange}
	ErrEmptyGroup       = &Error{Kind: KindEmptyGroup}
	ErrNotOwned         = &Error{Kind: KindNotOwned}
	ErrNotConnected     = &Error{Kind: KindNotConnected}
	ErrNoInstitution    = &Error{Kind: KindNoInstitution}
	ErrValidation       = &Error{Kind: KindValidation}
	ErrUnauthenticated  = &Error{Kind: KindUnauthenticated}
)

func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewValidationError builds a validation error carrying per-field messages.
func NewValidationError(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "Dados inválidos", Fields: fields}
}

// KindOf returns the kind of a business error, or "" for infrastructure errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsBusiness reports whether err is a business rule rejection rather than an infrastructure failure.
func IsBusiness(err error) bool {
	return KindOf(err) != ""
}

func NotFound(entity string) *Error {
	return Errorf(KindNotFound, "%s não encontrado(a)", entity)
}

func Forbidden(format string, args ...any) *Error {
	return Errorf(KindForbidden, format, args...)
}
