package errors

import (
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoAccount          = errors.New("no account found with this email")
	ErrEmailExists        = errors.New("email already exist")
	ErrWeakPassword       = errors.New("password is too weak")
	ErrEmptyOrder         = errors.New("order has no items")
	ErrNotFound           = errors.New("document not found")
)

// AuthError is the failure variant of every SessionManager operation.
type AuthError struct {
	Err error
}

func (e AuthError) Error() string { return "auth: " + e.Err.Error() }
func (e AuthError) Unwrap() error { return e.Err }

// OrderError is the failure variant of every OrderWorkflow operation. It is a
// distinct type from AuthError so callers can track the latest error per
// domain independently.
type OrderError struct {
	Err error
}

func (e OrderError) Error() string { return "order: " + e.Err.Error() }
func (e OrderError) Unwrap() error { return e.Err }

// ValidationError reports locally rejected input. It is raised before any
// request is issued to an external service.
type ValidationError struct {
	Err error
}

func (e ValidationError) Error() string { return "validation: " + e.Err.Error() }
func (e ValidationError) Unwrap() error { return e.Err }

// StoreError wraps failures passed through from the identity store, document
// store, or catalog service.
type StoreError struct {
	Err error
}

func (e StoreError) Error() string { return "store: " + e.Err.Error() }
func (e StoreError) Unwrap() error { return e.Err }

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
