package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a service error for the transport layer.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindAuth       ErrorKind = "auth"
	KindQuota      ErrorKind = "quota"
	KindUpstream   ErrorKind = "upstream"
	KindNotFound   ErrorKind = "not_found"
	KindInternal   ErrorKind = "internal"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrUserExists = errors.New("user already exists")
)

// Error is a classified service error. Message is safe to show to clients;
// Err carries the detail that is only logged.
type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError reports missing or malformed input on field.
func NewValidationError(field, message string) error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// NewAuthError reports a missing, invalid or expired session.
func NewAuthError(message string) error {
	return &Error{Kind: KindAuth, Message: message}
}

// NewQuotaError reports an exhausted generation entitlement.
func NewQuotaError(message string) error {
	return &Error{Kind: KindQuota, Message: message}
}

// NewUpstreamError wraps a failure of the text generation capability.
func NewUpstreamError(err error) error {
	return &Error{
		Kind:    KindUpstream,
		Message: "Failed to generate proposal. If you use your own API key, check that it is valid.",
		Err:     err,
	}
}

// NewNotFoundError reports a failed lookup of entity by id.
func NewNotFoundError(entity string) error {
	return &Error{Kind: KindNotFound, Message: entity + " not found", Err: ErrNotFound}
}

// NewInternalError wraps a storage or unexpected failure.
func NewInternalError(err error) error {
	return &Error{Kind: KindInternal, Message: "Internal server error", Err: err}
}

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a service error of kind.
func IsKind(err error, kind ErrorKind) bool {
	var svcErr *Error
	return errors.As(err, &svcErr) && svcErr.Kind == kind
}
