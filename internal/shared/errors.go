package shared

import "errors"

// Base error kinds. Domain errors unwrap to exactly one of these so the HTTP
// layer can pick a status code without knowing the domain package.
var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrBadRequest indicates the request was understood but rejected.
	ErrBadRequest = errors.New("bad request")
	// ErrValidation indicates input failed field validation.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden indicates the caller may not perform the operation.
	ErrForbidden = errors.New("forbidden")
)

// Error is a domain error carrying a base kind and a localizable message.
type Error struct {
	kind error
	text string
	key  string
	args []any
}

// NewError builds a domain error of the given kind. key names an entry of the
// message catalog; args are substituted into the localized message.
func NewError(kind error, text, key string, args ...any) *Error {
	return &Error{kind: kind, text: text, key: key, args: args}
}

func (e *Error) Error() string { return e.text }

// Unwrap exposes the base kind to errors.Is.
func (e *Error) Unwrap() error { return e.kind }

// MessageKey returns the catalog key and its arguments.
func (e *Error) MessageKey() (string, []any) { return e.key, e.args }
