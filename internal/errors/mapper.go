// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

// Kind classifies a failure by who caused it and how far it may travel.
type Kind int

const (
	KindUnknown Kind = iota
	// KindAuth: connection credential rejected. Terminal for that attempt.
	KindAuth
	// KindValidation: malformed action payload.
	KindValidation
	// KindAuthorization: pair is not matched, or is blocked.
	KindAuthorization
	// KindPersistence: a store write failed and the action was abandoned.
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// genericFailure is all an acting user ever learns about a store failure.
const genericFailure = "something went wrong, please try again"

// Error is the single domain error type. Kind decides how it is surfaced.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Auth wraps a credential verification failure.
func Auth(err error) error {
	return &Error{Kind: KindAuth, Msg: "invalid credentials", Err: err}
}

// Validation reports a malformed payload.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// Forbidden reports an interaction the relationship state does not allow.
func Forbidden(msg string) error {
	return &Error{Kind: KindAuthorization, Msg: msg}
}

// Persistence wraps a failed store write for the named operation.
func Persistence(op string, err error) error {
	return &Error{Kind: KindPersistence, Msg: op, Err: err}
}

// KindOf returns the Kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// Public returns the text that may be shown to the acting user.
// Store details never leak.
func Public(err error) string {
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case KindValidation, KindAuthorization, KindAuth:
			return e.Msg
		}
	}
	return genericFailure
}

// Map converts domain/repo/infra errors into gRPC-friendly status errors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	switch KindOf(err) {
	case KindAuth:
		return status.Error(codes.Unauthenticated, Public(err))
	case KindValidation:
		return status.Error(codes.InvalidArgument, Public(err))
	case KindAuthorization:
		return status.Error(codes.PermissionDenied, Public(err))
	case KindPersistence:
		return status.Error(codes.Internal, genericFailure)
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return status.Error(codes.NotFound, "record not found")

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled")

	default:
		return status.Error(codes.Internal, genericFailure)
	}
}

// InvalidArgument creates a gRPC InvalidArgument error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) error {
	return status.Error(codes.InvalidArgument, msg)
}
