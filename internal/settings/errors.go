package settings

import (
	"errors"
	"fmt"
)

// Errors returned by settings operations.
var (
	// ErrInvalidDescriptor is wrapped by every *ValidationError.
	ErrInvalidDescriptor = errors.New("invalid settings descriptor")

	// ErrNotBindable indicates a write to a title or button row.
	ErrNotBindable = errors.New("descriptor has no config item")

	// ErrNotClickable indicates a click on a row that is not a button.
	ErrNotClickable = errors.New("descriptor is not a button")
)

// ErrorCode categorizes validation errors.
type ErrorCode uint8

const (
	// CodeRequiredMissing indicates a variant-required field is absent.
	CodeRequiredMissing ErrorCode = iota
	// CodeInvalidRange indicates a range whose min is not below its max.
	CodeInvalidRange
	// CodeUnknownKind indicates an unrecognized type tag.
	CodeUnknownKind
)

// String returns a human-readable name for the error code.
func (c ErrorCode) String() string {
	switch c {
	case CodeRequiredMissing:
		return "required_missing"
	case CodeInvalidRange:
		return "invalid_range"
	case CodeUnknownKind:
		return "unknown_kind"
	default:
		return "unknown"
	}
}

// ValidationError describes why a descriptor was rejected.
type ValidationError struct {
	// Index is the entry's position in the rejected batch, or -1.
	Index int
	// Type is the entry's type tag as given.
	Type string
	// Field names the offending field, if any.
	Field string
	// Code categorizes the failure.
	Code ErrorCode
	// Message describes the failure.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	prefix := "settings entry"
	if e.Index >= 0 {
		prefix = fmt.Sprintf("settings entry %d", e.Index)
	}
	if e.Type != "" {
		prefix += " (" + e.Type + ")"
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", prefix, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns ErrInvalidDescriptor.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidDescriptor
}
