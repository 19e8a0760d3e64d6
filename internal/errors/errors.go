// Package errors provides the categorized error type shared by the sync
// engine. Every failure that reaches a state slot carries one of the
// categories below so the presentation layer can branch on it.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Category classifies an error for callers and for the presentation layer.
type Category string

const (
	// CategoryTransport covers network and decoding failures from the remote service.
	CategoryTransport Category = "transport"
	// CategoryStorage covers local cache read and write failures.
	CategoryStorage Category = "storage"
	// CategoryNotFound marks a query for an entity that does not exist.
	CategoryNotFound Category = "not_found"
	// CategorySuperseded marks a completion that lost its slot to a newer request.
	CategorySuperseded Category = "superseded"
	// CategoryValidation covers bad caller input.
	CategoryValidation Category = "validation"
	// CategoryInternal is the fallback for unclassified errors.
	CategoryInternal Category = "internal"
)

// ContextFields carries structured context for an Error.
type ContextFields map[string]any

// Error is a structured error with a category, an optional cause and context.
type Error struct {
	Category Category      `json:"category"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// Sentinels for errors.Is checks. They match any Error of the same category.
var (
	ErrTransport  = &Error{Category: CategoryTransport}
	ErrStorage    = &Error{Category: CategoryStorage}
	ErrNotFound   = &Error{Category: CategoryNotFound}
	ErrSuperseded = &Error{Category: CategorySuperseded}
	ErrValidation = &Error{Category: CategoryValidation}
)

func (e *Error) Error() string {
	if e.Message == "" && e.Cause == nil {
		return string(e.Category)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a category sentinel matching e.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message != "" || t.Cause != nil {
		return e == t
	}
	return e.Category == t.Category
}

// WithContext adds a context field and returns the same error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates an Error without a cause.
func New(category Category, message string) *Error {
	return &Error{Category: category, Message: message}
}

// Wrap creates an Error wrapping cause.
func Wrap(cause error, category Category, message string) *Error {
	return &Error{Category: category, Message: message, Cause: cause}
}

// CategoryOf extracts the category of err, or CategoryInternal.
func CategoryOf(err error) Category {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Category
	}
	return CategoryInternal
}

// Is reports whether err belongs to category.
func Is(err error, category Category) bool {
	return err != nil && CategoryOf(err) == category
}
