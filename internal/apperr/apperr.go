// Package apperr classifies every failure the client can surface so callers
// branch on a Kind instead of parsing messages.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the failure class of an Error.
type Kind int

const (
	Unknown Kind = iota

	// Transport failures, raised by the gateway.
	Timeout
	Network
	ServerFault

	// Authentication failures.
	InvalidCredentials
	TokenExpired
	InvalidRefreshToken

	// Domain failures, carried as a code+message pair from the server.
	NotFound
	AlreadyExists
	Conflict
	Validation
	Precondition

	// Local preconditions, detected before any network round trip.
	NoUser
	NoPlan
)

var kindNames = map[Kind]string{
	Unknown:             "unknown",
	Timeout:             "timeout",
	Network:             "network",
	ServerFault:         "server_fault",
	InvalidCredentials:  "invalid_credentials",
	TokenExpired:        "token_expired",
	InvalidRefreshToken: "invalid_refresh_token",
	NotFound:            "not_found",
	AlreadyExists:       "already_exists",
	Conflict:            "conflict",
	Validation:          "validation",
	Precondition:        "precondition",
	NoUser:              "no_user",
	NoPlan:              "no_plan",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Error is a classified failure. Code carries the server's machine-readable
// error code when one was returned.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a classified error without a cause.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the classification of err, or Unknown for unclassified
// errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
