package service

import (
	"errors"
	"fmt"
	"strings"
)

// Field names as the client sends them.
const (
	FieldClassName = "className"
	FieldDateISO   = "dateISO"
	FieldTime      = "time"
	FieldEmail     = "email"
	FieldName      = "name"
)

var ErrUnknownOffering = errors.New("unknown class")

// MissingFieldError lists every absent required field in collection order.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ",")
}

// Field is the first missing field.
func (e *MissingFieldError) Field() string {
	if len(e.Fields) == 0 {
		return ""
	}
	return e.Fields[0]
}

type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type SessionErrorKind int

const (
	SessionErrorInvalidRequest SessionErrorKind = iota + 1
	SessionErrorProvider
	SessionErrorConflict
)

func (k SessionErrorKind) String() string {
	switch k {
	case SessionErrorInvalidRequest:
		return "invalid_request"
	case SessionErrorProvider:
		return "provider_error"
	case SessionErrorConflict:
		return "idempotency_conflict"
	default:
		return "unknown"
	}
}

type SessionError struct {
	Kind          SessionErrorKind
	MissingFields []string
	Err           error
}

func (e *SessionError) Error() string {
	switch e.Kind {
	case SessionErrorInvalidRequest:
		return "invalid checkout request: missing " + strings.Join(e.MissingFields, ",")
	case SessionErrorConflict:
		return "idempotency key was already used for a different booking"
	}
	return fmt.Sprintf("payment provider error: %v", e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}
