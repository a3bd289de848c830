// Package lgerr defines the error taxonomy shared across lgrep's
// components: a small set of kinds, not types, so callers
// can branch on what went wrong without importing every package that
// can produce an error.
package lgerr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error by what kind of failure occurred, independent
// of which component raised it.
type Kind string

const (
	NotFound      Kind = "not_found"
	AlreadyExists Kind = "already_exists"
	InvalidInput  Kind = "invalid_input"
	ParseFailure  Kind = "parse_failure"
	StoreError    Kind = "store_error"
	ProviderError Kind = "provider_error"
	Timeout       Kind = "timeout"
	Cancelled     Kind = "cancelled"
)

// Error is a kind-tagged error. Component is the package or subsystem
// that raised it (e.g. "indexer", "store", "embed"), used for log
// context; Kind drives caller behavior (retry, exit code, RPC error
// code).
type Error struct {
	Kind      Kind
	Component string
	Message   string
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Component, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Component, e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error with no wrapped cause.
func New(kind Kind, component, message string) *Error {
	return &Error{Kind: kind, Component: component, Message: message}
}

// Wrap builds an Error that wraps an underlying cause.
func Wrap(kind Kind, component, message string, err error) *Error {
	return &Error{Kind: kind, Component: component, Message: message, Err: err}
}

// KindOf returns the Kind of err if it is (or wraps) an *Error, and ok
// reports whether one was found.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is reports whether err is (or wraps) an *Error of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
