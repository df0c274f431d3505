// Package apperror defines the error taxonomy surfaced by the AI
// orchestration core. Every failure crossing a handler boundary is one of
// these kinds; handlers convert them to the response envelope and nothing
// propagates as an unhandled fault past the request layer.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation        Kind = "VALIDATION_ERROR"
	KindAuth              Kind = "AUTH_ERROR"
	KindRateLimited       Kind = "RATE_LIMITED"
	KindMissingCredential Kind = "MISSING_CREDENTIAL"
	KindProvider          Kind = "PROVIDER_ERROR"
	KindMalformedOutput   Kind = "MALFORMED_OUTPUT"
	KindStorage           Kind = "STORAGE_ERROR"
	KindNotFound          Kind = "NOT_FOUND"
	KindConflict          Kind = "CONFLICT"
	KindInternal          Kind = "INTERNAL_ERROR"
)

// Error carries a taxonomy kind plus a message safe to show the end user.
// Technical detail stays in the wrapped cause and goes to the server log.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Auth(msg string) *Error {
	return &Error{Kind: KindAuth, Message: msg}
}

func RateLimited(msg string) *Error {
	return &Error{Kind: KindRateLimited, Message: msg}
}

// MissingCredential names the provider so the user knows which key to
// configure, rather than getting a generic failure.
func MissingCredential(provider string) *Error {
	return &Error{
		Kind:    KindMissingCredential,
		Message: fmt.Sprintf("no API key configured for %s - add one in workspace settings", provider),
	}
}

func Provider(err error) *Error {
	return &Error{Kind: KindProvider, Message: "the AI provider is unavailable, please retry later", Err: err}
}

func MalformedOutput(err error) *Error {
	return &Error{Kind: KindMalformedOutput, Message: "the AI returned an unusable response, please try again", Err: err}
}

func Storage(err error) *Error {
	return &Error{Kind: KindStorage, Message: "a storage operation failed, please retry", Err: err}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "something went wrong", Err: err}
}

// KindOf extracts the taxonomy kind from any error chain. Unclassified
// errors are internal by definition.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// UserMessage returns the user-safe message for an error chain.
func UserMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return "something went wrong"
}
