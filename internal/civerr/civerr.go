// Package civerr defines the system's error taxonomy (spec.md §7).
package civerr

import "fmt"

// Kind is one of the named failure categories spec.md §7 enumerates.
type Kind string

const (
	MalformedFrame       Kind = "MalformedFrame"
	UnknownModel         Kind = "UnknownModel"
	UnsupportedOperation Kind = "UnsupportedOperation"
	NegativeAck          Kind = "NegativeAck"
	LinkDead             Kind = "LinkDead"
	AuthRejected         Kind = "AuthRejected"
	Busy                 Kind = "Busy"
	TransportError       Kind = "TransportError"
)

// Error wraps a Kind with a human-readable message and optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given kind with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind around an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err is a *Error of the given Kind, unwrapping as
// needed. It exists so callers can branch on taxonomy without importing
// the standard errors package at every call site.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Kind == kind {
				return true
			}
			err = e.Cause
			continue
		}
		type unwrapper interface{ Unwrap() error }
		u, ok := err.(unwrapper)
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
