package errors

import "fmt"

// Error is the structured error type returned by every exported core
// operation. Its Kind is what callers (including the C ABI layer) branch
// on; Code and Message exist for logs and diagnostics.
type Error struct {
	// Code is the stable string form of Kind.
	Code string

	// Kind classifies the failure.
	Kind Kind

	// Message is the human-readable description.
	Message string

	// Field names the document/query field implicated, when applicable
	// (e.g. which field was missing on a corrupt document).
	Field string

	// Cause is the underlying error, if any.
	Cause error

	// Retryable indicates the operation may succeed if retried unchanged.
	Retryable bool
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field=%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is enables errors.Is to match by Kind rather than identity.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New creates an Error of the given kind. Code and Retryable are derived
// from kind.
func New(kind Kind, message string, cause error) *Error {
	return &Error{
		Code:      codeForKind(kind),
		Kind:      kind,
		Message:   message,
		Cause:     cause,
		Retryable: retryableKinds[kind],
	}
}

// WithField attaches the implicated field name and returns e for chaining.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// Wrap creates an Error of the given kind from an existing error, or
// returns nil if err is nil.
func Wrap(kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	return New(kind, err.Error(), err)
}

// NotInitialized reports an operation attempted before Init or after Close.
func NotInitialized(message string) *Error {
	return New(KindNotInitialized, message, nil)
}

// IO wraps a filesystem or mmap failure.
func IO(message string, cause error) *Error {
	return New(KindIO, message, cause)
}

// SchemaMismatch reports an on-disk index that doesn't match the expected
// document schema.
func SchemaMismatch(message string) *Error {
	return New(KindSchemaMismatch, message, nil)
}

// Parse reports a query string that failed to parse.
func Parse(message string, cause error) *Error {
	return New(KindParse, message, cause)
}

// Glob reports a path_glob pattern that failed to compile.
func Glob(message string, cause error) *Error {
	return New(KindGlob, message, cause)
}

// DocumentCorrupt reports a stored document missing a required field.
func DocumentCorrupt(message string) *Error {
	return New(KindDocumentCorrupt, message, nil)
}

// InteriorNul reports a string crossing the FFI boundary that contains an
// embedded NUL byte.
func InteriorNul(field string) *Error {
	return New(KindInteriorNul, "string contains an interior NUL byte", nil).WithField(field)
}

// IsRetryable reports whether err is an *Error with Retryable set.
func IsRetryable(err error) bool {
	var e *Error
	if As(err, &e) {
		return e.Retryable
	}
	return false
}

// KindOf extracts the Kind from err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if As(err, &e) {
		return e.Kind
	}
	return ""
}

// As is a small local shim so this file doesn't need to import the
// standard errors package under a conflicting name.
func As(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
