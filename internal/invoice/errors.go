package invoice

import (
	"errors"
	"fmt"
)

var (
	ErrInvoiceNotFound       = errors.New("invoice not found")
	ErrInvoiceNumberConflict = errors.New("invoice number already in use")
	ErrSaveInProgress        = errors.New("a save for this invoice is already in progress")
)

// ValidationError rejects input before any storage call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ReconciliationError means a referenced product could not be guaranteed to
// exist. The invoice is not written.
type ReconciliationError struct {
	Title string
	Err   error
}

func (e *ReconciliationError) Error() string {
	if e.Title == "" {
		return fmt.Sprintf("reconcile products: %v", e.Err)
	}
	return fmt.Sprintf("reconcile product %q: %v", e.Title, e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed invoice read or write.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s invoice: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
