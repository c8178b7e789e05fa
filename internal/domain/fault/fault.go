// Package fault defines the error kinds the financial core reports.
// Callers branch on kinds with errors.Is; the wrapped detail carries
// enough context (field, reason, states) to fix the input.
package fault

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when a lifecycle state machine
	// rejects a requested transition.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrPermissionDenied is returned when the actor's role is below
	// the level an operation requires.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrSelfApprovalForbidden is returned when an actor attempts to
	// approve their own submission. Distinct from ErrPermissionDenied:
	// no role grants self-approval.
	ErrSelfApprovalForbidden = errors.New("self approval forbidden")

	// ErrNotFound is returned when an entity does not exist in the
	// acting organization. Cross-tenant rows are indistinguishable
	// from missing rows.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned for malformed input before any mutation.
	ErrValidation = errors.New("validation failed")

	// ErrBatchSizeExceeded is returned when a bulk operation exceeds
	// its item cap, before any item is touched.
	ErrBatchSizeExceeded = errors.New("batch size exceeded")

	// ErrConcurrencyConflict is returned when an optimistic version
	// check fails on a concurrent write.
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)

// InvalidTransition builds an ErrInvalidTransition naming the entity
// kind and both states.
func InvalidTransition(entity, from, to string) error {
	return fmt.Errorf("%w: %s cannot move from %s to %s", ErrInvalidTransition, entity, from, to)
}

// PermissionDenied builds an ErrPermissionDenied naming the operation
// and the role that attempted it.
func PermissionDenied(operation, role string) error {
	return fmt.Errorf("%w: role %s cannot %s", ErrPermissionDenied, role, operation)
}

// SelfApproval builds an ErrSelfApprovalForbidden for the given expense.
func SelfApproval(expenseID int64) error {
	return fmt.Errorf("%w: cannot approve own expense %d", ErrSelfApprovalForbidden, expenseID)
}

// Validation builds an ErrValidation naming the offending field.
func Validation(field, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrValidation, field, reason)
}

// NotFound builds an ErrNotFound naming the entity kind.
func NotFound(entity string, id int64) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, entity, id)
}

// BatchSizeExceeded builds an ErrBatchSizeExceeded with the cap.
func BatchSizeExceeded(size, limit int) error {
	return fmt.Errorf("%w: %d items, limit %d", ErrBatchSizeExceeded, size, limit)
}

// ConcurrencyConflict builds an ErrConcurrencyConflict naming the entity.
func ConcurrencyConflict(entity string, id int64) error {
	return fmt.Errorf("%w: %s %d was modified concurrently", ErrConcurrencyConflict, entity, id)
}
