// Package apperr defines the five error kinds observable by API callers and
// the boundary rule that folds every other failure into InternalFailure.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers.
type Kind int

// Error kinds, ordered by who acts on them.
const (
	// InvalidParameters covers malformed identifiers and query arguments.
	InvalidParameters Kind = iota + 1
	// InvalidBody covers missing or malformed mutation payload fields,
	// including unique-key collisions.
	InvalidBody
	// ResourceNotFound means a referenced entity does not exist.
	ResourceNotFound
	// OperationNotSupported means the requested operation is unknown.
	OperationNotSupported
	// InternalFailure is everything else.
	InternalFailure
)

var kindMeta = map[Kind]struct {
	name   string
	code   string
	status int
}{
	InvalidParameters:     {"InvalidParameters", "PARAMS_NOT_VALID", http.StatusBadRequest},
	InvalidBody:           {"InvalidBody", "BODY_NOT_VALID", http.StatusBadRequest},
	ResourceNotFound:      {"ResourceNotFound", "RESOURCE_NOT_FOUND", http.StatusNotFound},
	OperationNotSupported: {"OperationNotSupported", "PATH_NOT_FOUND", http.StatusNotFound},
	InternalFailure:       {"InternalFailure", "SERVER_ERROR", http.StatusInternalServerError},
}

// String returns the kind name.
func (k Kind) String() string {
	if m, ok := kindMeta[k]; ok {
		return m.name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Code returns the stable wire code emitted in extensions.code.
func (k Kind) Code() string {
	if m, ok := kindMeta[k]; ok {
		return m.code
	}
	return kindMeta[InternalFailure].code
}

// HTTPStatus returns the status used when the error ends a request.
func (k Kind) HTTPStatus() int {
	if m, ok := kindMeta[k]; ok {
		return m.status
	}
	return http.StatusInternalServerError
}

// Details is the optional structured payload emitted next to the code.
type Details map[string]any

// Error is a typed, caller-visible failure. Message is already localized.
// The cause is kept for logging and never serialized.
type Error struct {
	Kind    Kind
	Message string
	Details Details
	cause   error
}

// New returns a typed error of the given kind.
func New(kind Kind, message string, details Details) *Error {
	return &Error{Kind: kind, Message: message, Details: details}
}

// Wrap returns a typed error that remembers cause.
func Wrap(kind Kind, message string, cause error, details Details) *Error {
	return &Error{Kind: kind, Message: message, Details: details, cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind.Code(), e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Code(), e.Message)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// Cause returns the underlying failure, if any.
func (e *Error) Cause() error {
	return e.cause
}

// Extensions returns the wire extensions: the code plus any details.
// A detail named "code" cannot override the kind's code.
func (e *Error) Extensions() map[string]any {
	ext := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		ext[k] = v
	}
	ext["code"] = e.Kind.Code()
	return ext
}

// As returns the typed error in err's chain, if any.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, InternalFailure for untyped errors and 0 for nil.
func KindOf(err error) Kind {
	if err == nil {
		return 0
	}
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return InternalFailure
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Boundary applies the propagation rule at a resolver boundary: a typed error
// passes through unchanged, anything else becomes InternalFailure with the
// supplied message and the original error as its cause.
func Boundary(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := As(err); ok {
		return appErr
	}
	return Wrap(InternalFailure, message, err, nil)
}
