// Package core provides the cinedeck client: the profile state shared by
// discovery sessions, the sessions themselves and their configuration.
package core

import (
	"errors"
	"fmt"
)

// Predefined errors for common failure scenarios.
var (
	// ErrNotFound indicates that a requested title or list entry was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates that the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidInput indicates that the provided input is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorageOperation indicates that a storage operation failed after retries.
	ErrStorageOperation = errors.New("storage operation failed")

	// ErrCatalogUnavailable indicates that the catalog could not serve a direct request.
	ErrCatalogUnavailable = errors.New("catalog unavailable")

	// ErrLLMOperation indicates that an LLM operation failed.
	ErrLLMOperation = errors.New("llm operation failed")

	// ErrEmptyDeck indicates that there is no card under the cursor.
	ErrEmptyDeck = errors.New("deck is empty")
)

// DiscoveryError wraps errors with operation context.
//
// Example:
//
//	err := &DiscoveryError{
//	    Op:  "Swipe",
//	    Err: ErrEmptyDeck,
//	}
//	// Error() returns: "cinedeck: Swipe: deck is empty"
type DiscoveryError struct {
	// Op is the name of the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error returns "cinedeck: <Op>: <Err>".
func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("cinedeck: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error so errors.Is and errors.As see through it.
func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// NewDiscoveryError wraps err with the operation name. It returns nil when err is nil:
//
//	if err != nil {
//	    return NewDiscoveryError("Hide", err)
//	}
func NewDiscoveryError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &DiscoveryError{
		Op:  op,
		Err: err,
	}
}

// storageError marks err as a storage failure while keeping the cause inspectable.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return NewDiscoveryError(op, fmt.Errorf("%w: %w", ErrStorageOperation, err))
}
