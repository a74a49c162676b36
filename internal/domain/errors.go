package domain

import (
	"errors"
	"fmt"
)

// Error kinds shared by every layer; handlers map them onto HTTP statuses
var (
	ErrValidation        = errors.New("validation error")
	ErrConflict          = errors.New("slot conflict")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrTransient         = errors.New("transient error")
)

// ValidationError malformed or out-of-policy request
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ConflictError requested slot overlaps an active booking of the same attorney
type ConflictError struct {
	BookingID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: overlaps booking %s", ErrConflict, e.BookingID)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// InvalidTransitionError event is not allowed from the current state or its guard failed
type InvalidTransitionError struct {
	From   BookingStatus
	Event  Event
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s from %s", ErrInvalidTransition, e.Event, e.From)
	}
	return fmt.Sprintf("%s: %s from %s: %s", ErrInvalidTransition, e.Event, e.From, e.Reason)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
