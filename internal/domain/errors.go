package domain

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError reports malformed caller input. It is always local
// and immediate: a validation failure never causes a provider call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for a field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports an unknown provider id, an unknown catalog id
// within a provider's response, or a capability mismatch.
type NotFoundError struct {
	Kind string // "provider", "catalog", "capability"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// ProviderError reports that an underlying provider call failed. It
// wraps the original cause and carries the call parameters for
// diagnostics.
type ProviderError struct {
	ProviderID  string
	Op          string
	CatalogType string
	Page        int
	Err         error
}

func (e *ProviderError) Error() string {
	if e.CatalogType != "" {
		return fmt.Sprintf("provider %s: %s (catalog=%s page=%d): %v",
			e.ProviderID, e.Op, e.CatalogType, e.Page, e.Err)
	}
	return fmt.Sprintf("provider %s: %s: %v", e.ProviderID, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// TimeoutError reports that a bounded operation exceeded its deadline.
// Distinct from ProviderError so callers can choose to retry.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.Timeout)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// IsProviderError reports whether err is a ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

// IsTimeout reports whether err is a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
