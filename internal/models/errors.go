package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the tracking engine. Callers match them with errors.Is;
// none of them trigger automatic retries anywhere in the core.
var (
	// ErrAlreadyRunning is returned by Timer.Start while a timer is active.
	ErrAlreadyRunning = errors.New("session timer already running")

	// ErrNotRunning is returned by Timer.Stop when no timer is active.
	ErrNotRunning = errors.New("session timer not running")

	// ErrNoMatchingProject is returned when a session stop finds no active
	// record to update.
	ErrNoMatchingProject = errors.New("no matching project found to update")

	// ErrDuplicateName is returned by explicit project creation when the user
	// already has a record with that project name, independent of description.
	ErrDuplicateName = errors.New("project name already exists")

	// ErrComponentNotFound is returned by catalog lookups for unknown models.
	// It is fatal to an emission calculation; no default wattage is assumed.
	ErrComponentNotFound = errors.New("component not found in power catalog")

	// ErrNotFound is returned when a referenced record or user does not exist.
	ErrNotFound = errors.New("record not found")
)

// DatabaseError wraps a storage failure with the operation that hit it.
type DatabaseError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error: %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying driver error.
func (e *DatabaseError) Unwrap() error { return e.Err }

// NewDatabaseError wraps err as a DatabaseError for operation op.
func NewDatabaseError(op string, err error) *DatabaseError {
	return &DatabaseError{Op: op, Err: err}
}

// IsDatabaseError reports whether err is (or wraps) a DatabaseError.
func IsDatabaseError(err error) bool {
	var de *DatabaseError
	return errors.As(err, &de)
}
