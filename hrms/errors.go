/*
errors.go - Centralized error types for the HRMS domain

PURPOSE:
  All domain error types in one place for consistency and discoverability.
  Store implementations translate driver-level integrity violations into
  these errors; the API layer maps them onto HTTP status codes and never
  surfaces a raw store error to the caller.

ERROR CATEGORIES:
  1. Not-found errors  - referenced entity absent           -> 404
  2. Conflict errors   - uniqueness violations, lost races  -> 409
  Anything else is treated as a server-side failure         -> 500

USAGE:
  Callers check with errors.Is / errors.As:

    if hrms.IsNotFound(err) { ... }
    var dup *hrms.DuplicateAttendanceError
    if errors.As(err, &dup) { ... }

SEE ALSO:
  - store.go: contracts that name these errors
  - store/sqlite/sqlite.go: where driver errors are translated
*/
package hrms

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrAttendanceNotFound is returned when a referenced attendance row doesn't exist.
	ErrAttendanceNotFound = errors.New("attendance record not found")

	// ErrDuplicateAttendance is returned when a write would produce a second
	// attendance row for the same (employee, date) pair. For the daily upsert
	// this is an expected, recoverable condition: it means a concurrent writer
	// won the race and the caller should fall back to an update.
	ErrDuplicateAttendance = errors.New("attendance already recorded for this date")

	// ErrDuplicateEmployeeID is returned when the business identifier is taken.
	ErrDuplicateEmployeeID = errors.New("employee id already exists")

	// ErrDuplicateEmail is returned when the email belongs to another employee.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrAttendanceConflict is returned when the upsert recovery path cannot
	// resolve a uniqueness violation. With a correctly enforced constraint this
	// should not happen; it is kept distinct so it is visible when it does.
	ErrAttendanceConflict = errors.New("unable to save attendance")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DuplicateAttendanceError identifies the (employee, date) key that collided.
type DuplicateAttendanceError struct {
	EmployeeID int64
	Date       time.Time
}

func (e *DuplicateAttendanceError) Error() string {
	return fmt.Sprintf("attendance already recorded for employee %d on %s",
		e.EmployeeID, e.Date.Format(DayFormat))
}

func (e *DuplicateAttendanceError) Unwrap() error {
	return ErrDuplicateAttendance
}

// EmailInUseError identifies the colliding email address.
type EmailInUseError struct {
	Email string
}

func (e *EmailInUseError) Error() string {
	return fmt.Sprintf("email %s already in use", e.Email)
}

func (e *EmailInUseError) Unwrap() error {
	return ErrDuplicateEmail
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrAttendanceNotFound)
}

// IsConflict returns true if the error is a uniqueness violation or an
// unresolvable lost race.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateAttendance) ||
		errors.Is(err, ErrDuplicateEmployeeID) ||
		errors.Is(err, ErrDuplicateEmail) ||
		errors.Is(err, ErrAttendanceConflict)
}
