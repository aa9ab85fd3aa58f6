// Package dErrors provides coded domain errors.
//
// Services return these so transport layers can translate failures into
// consistent HTTP responses without string matching. Stores return sentinel
// errors (pkg/platform/sentinel); services translate them here.
package dErrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport translation and tests.
type Code string

const (
	// CodeBadRequest marks malformed or semantically invalid request bodies.
	CodeBadRequest Code = "bad_request"

	// CodeInvalidInput marks values that fail parsing at a trust boundary
	// (malformed IDs, bad enum values).
	CodeInvalidInput Code = "invalid_input"

	// CodeUnauthorized marks missing or invalid credentials.
	CodeUnauthorized Code = "unauthorized"

	// CodeForbidden marks authenticated callers lacking permission where the
	// resource's existence is not secret (admin-only surfaces).
	CodeForbidden Code = "forbidden"

	// CodeNotFound marks a resource that does not exist or is outside the
	// caller's scope. The two cases are deliberately indistinguishable so
	// callers cannot probe for data belonging to other companies.
	CodeNotFound Code = "not_found"

	// CodeConflict marks uniqueness or state conflicts.
	CodeConflict Code = "conflict"

	// CodeInvariantViolation marks an illegal aggregate state transition.
	CodeInvariantViolation Code = "invariant_violation"

	// CodeNoCompany marks a principal with no associated company attempting
	// an operation that requires an owning tenant.
	CodeNoCompany Code = "no_company"

	// CodeInternal marks infrastructure failures (storage, downstream
	// services). Details are logged, never returned to callers.
	CodeInternal Code = "internal_error"

	// CodeTimeout marks an operation that exceeded its deadline.
	CodeTimeout Code = "timeout"
)

// Error is a domain error carrying a classification code. The wrapped cause,
// if any, is preserved for errors.Is/As chains and log output.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, keeping the cause
// reachable via errors.Unwrap.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in err's chain carries the given code.
func HasCode(err error, code Code) bool {
	var domainErr *Error
	for e := err; e != nil; e = errors.Unwrap(e) {
		if errors.As(e, &domainErr) && domainErr.Code == code {
			return true
		}
	}
	return false
}

// Is is a readability alias for HasCode, mirroring errors.Is call sites.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the outermost code in err's chain, or CodeInternal when the
// error is uncoded.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}
