// Package apperr defines the failure kinds shared by the note store, the chat
// gateway and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can map it to a response.
type Kind string

const (
	KindInvalidSlug         Kind = "invalid_slug"
	KindAlreadyExists       Kind = "already_exists"
	KindNotFound            Kind = "not_found"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindMalformedInput      Kind = "malformed_input"
	KindInternal            Kind = "internal"
)

// Error is a failure tagged with a Kind. Message is safe to show to users;
// Cause is not.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// New returns an *Error without a cause.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns an *Error carrying cause.
func Wrap(kind Kind, message string, cause error) error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func InvalidSlug(raw string) error {
	return New(KindInvalidSlug, fmt.Sprintf("invalid slug %q", raw))
}

func AlreadyExists(slug string) error {
	return New(KindAlreadyExists, fmt.Sprintf("note %q already exists", slug))
}

func NotFound(slug string) error {
	return New(KindNotFound, fmt.Sprintf("note %q not found", slug))
}

func Malformed(message string) error {
	return New(KindMalformedInput, message)
}

// KindOf returns the Kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the user-facing message of err, or fallback when err is
// not an *Error.
func Message(err error, fallback string) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return fallback
}
