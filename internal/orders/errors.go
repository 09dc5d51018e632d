package orders

import (
	"errors"
	"fmt"
)

// Typed failures of the placement and cancel operations. Handlers map these
// to HTTP statuses; everything else is an internal error.
var (
	ErrNotFound = errors.New("order not found")
	ErrNoItems  = errors.New("order must contain at least one item")
)

type ValidationError struct{ Reason string }

func (e *ValidationError) Error() string { return e.Reason }

type ProductNotFoundError struct{ ProductID string }

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

type ProductUnavailableError struct {
	ProductID string
	Name      string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %s is not available", e.Name)
}

// InsufficientStockError carries the available count so the caller can show
// how many units are actually left.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.Name, e.Requested, e.Available)
}

type StateError struct{ Status Status }

func (e *StateError) Error() string {
	return fmt.Sprintf("order cannot be cancelled in status %q", e.Status)
}

type TransitionError struct{ From, To Status }

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %q -> %q", e.From, e.To)
}
