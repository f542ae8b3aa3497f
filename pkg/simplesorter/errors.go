package simplesorter

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrInvalidItem indicates a nil or unknown item ID
	ErrInvalidItem = errors.New("invalid item")

	// ErrInvalidOrderData indicates a malformed item ID sequence
	ErrInvalidOrderData = errors.New("invalid order data")

	// ErrInvalidPosition indicates an unknown position or a negative target index
	ErrInvalidPosition = errors.New("invalid position")

	// ErrItemNotFound indicates an item was not found by a collaborator
	ErrItemNotFound = errors.New("item not found")

	// ErrStorageFailure indicates a collaborator read or write failed
	ErrStorageFailure = errors.New("storage failure")
)

// OrderError represents a storage failure during an ordering operation
type OrderError struct {
	ItemID uuid.UUID
	Op     string
	Err    error
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("order operation %s failed for item %s: %v", e.Op, e.ItemID, e.Err)
}

func (e *OrderError) Unwrap() []error {
	return []error{ErrStorageFailure, e.Err}
}

// storageError wraps err as an OrderError. An OrderError is returned as is
// so the failing collaborator call keeps its operation name.
func storageError(op string, itemID uuid.UUID, err error) error {
	var orderErr *OrderError
	if errors.As(err, &orderErr) {
		return err
	}
	return &OrderError{ItemID: itemID, Op: op, Err: err}
}
