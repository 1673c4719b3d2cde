// Package apperr holds the error taxonomy shared by every feature service.
package apperr

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

type Kind string

const (
	KindValidation   Kind = "VALIDATION_ERROR"
	KindPermission   Kind = "PERMISSION_DENIED"
	KindDeadline     Kind = "DEADLINE_EXPIRED"
	KindLimit        Kind = "SUBMISSION_LIMIT_EXCEEDED"
	KindStorage      Kind = "STORAGE_ERROR"
	KindBackend      Kind = "BACKEND_ERROR"
	KindNotFound     Kind = "NOT_FOUND"
	KindUnauthorized Kind = "UNAUTHORIZED"
)

// Error is the single concrete error type returned by services.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string][]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the error kind to an HTTP status code.
func (e *Error) Status() int { return StatusOf(e.Kind) }

func StatusOf(k Kind) int {
	switch k {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindPermission:
		return http.StatusForbidden
	case KindDeadline, KindLimit:
		return http.StatusConflict
	case KindStorage:
		return http.StatusBadGateway
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// ValidationFields builds a validation error carrying per-field messages.
func ValidationFields(fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

func PermissionDenied(msg string) *Error {
	if msg == "" {
		msg = "permission denied"
	}
	return &Error{Kind: KindPermission, Message: msg}
}

func DeadlineExpired(deadline time.Time) *Error {
	return &Error{
		Kind:    KindDeadline,
		Message: fmt.Sprintf("deadline passed at %s, submission closed", deadline.UTC().Format(time.RFC3339)),
	}
}

func LimitExceeded(max int) *Error {
	return &Error{
		Kind:    KindLimit,
		Message: fmt.Sprintf("submission limit reached (max %d)", max),
	}
}

func Storage(err error, msg string) *Error {
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

// Backend wraps a table operation failure, passing the backend message through.
func Backend(err error) *Error {
	return &Error{Kind: KindBackend, Err: err}
}

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func Unauthorized(msg string) *Error {
	if msg == "" {
		msg = "unauthorized"
	}
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// As extracts an *Error from the chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindBackend for foreign errors.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return KindBackend
}

func Is(err error, k Kind) bool { return err != nil && KindOf(err) == k }
