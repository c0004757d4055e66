package depgraph

import (
	"errors"
	"fmt"
)

// Error represents a contract violation detected while registering or
// resolving property dependencies.
//
// Errors are never transient: they mean the caller passed an absent
// collaborator or named a property that does not exist.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Type names the object type being queried, when known.
	Type string

	// Property names the offending property, when known.
	Property string
}

// ErrorCode categorizes dependency errors.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates a required argument was nil or a
	// reference could not be resolved to a property.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// ErrCodeNotFound indicates a property name is not part of the type.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Type != "" && e.Property != "" {
		return fmt.Sprintf("%s: %s (type=%s, property=%s)", e.Code, e.Message, e.Type, e.Property)
	}
	if e.Property != "" {
		return fmt.Sprintf("%s: %s (property=%s)", e.Code, e.Message, e.Property)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvalidArgument returns true if the error is an invalid-argument error.
// Uses errors.As to handle wrapped errors.
func IsInvalidArgument(err error) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == ErrCodeInvalidArgument
	}
	return false
}

// IsNotFound returns true if the error is a not-found error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == ErrCodeNotFound
	}
	return false
}

// NewInvalidArgument creates an Error for a nil or unresolvable argument.
func NewInvalidArgument(argument, message string) *Error {
	return &Error{
		Code:    ErrCodeInvalidArgument,
		Message: fmt.Sprintf("%s: %s", argument, message),
	}
}

// NewNotFound creates an Error for a property missing from a type.
func NewNotFound(typeName, property string) *Error {
	return &Error{
		Code:     ErrCodeNotFound,
		Message:  "no such property",
		Type:     typeName,
		Property: property,
	}
}
