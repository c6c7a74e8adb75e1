/*
store.go - Persistence interfaces for employees and attendance

PURPOSE:
  Defines the interface between the domain logic and the database.
  Different implementations can use SQLite or in-memory storage; the
  domain logic (and in particular the attendance Recorder) only ever
  sees these interfaces.

KEY INTERFACES:
  EmployeeStore:   Employee directory persistence
  AttendanceStore: Attendance row persistence, keyed by (employee, date)
  DashboardStore:  Read-only aggregates for the dashboard
  Store:           All of the above

UNIQUENESS CONTRACT:
  CreateAttendance MUST be backed by a store-level uniqueness constraint
  on (employee_id, date) and MUST return an error wrapping
  ErrDuplicateAttendance when that constraint rejects the insert, with
  the failed write fully rolled back. Application-level checks alone are
  not sufficient: the Recorder's lookup-then-insert sequence is racy by
  design and relies on the store to lose exactly one of two racing
  inserts.

SESSION SCOPE:
  Every method is request-scoped: one call, one store interaction, no
  resources held afterwards. Multi-statement writes (UpdateAttendance,
  UpdateEmployee) run inside a single store transaction with rollback
  on violation.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: production SQLite
  - hrms/store/memory.go:   in-memory for tests and dev
*/
package hrms

import (
	"context"
	"time"
)

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

// EmployeeStore handles persistence of the employee directory.
type EmployeeStore interface {
	// CreateEmployee inserts e, assigning ID and CreatedAt. Returns
	// ErrDuplicateEmployeeID or an EmailInUseError on constraint violation.
	CreateEmployee(ctx context.Context, e *Employee) error

	// GetEmployee returns the employee or (nil, nil) when absent.
	GetEmployee(ctx context.Context, id int64) (*Employee, error)

	// GetEmployeeByBusinessID looks up by the caller-assigned identifier.
	// Returns (nil, nil) when absent.
	GetEmployeeByBusinessID(ctx context.Context, employeeID string) (*Employee, error)

	// GetEmployeeByEmail looks up by lowercased email. Returns (nil, nil) when absent.
	GetEmployeeByEmail(ctx context.Context, email string) (*Employee, error)

	// ListEmployees returns all employees, newest first.
	ListEmployees(ctx context.Context) ([]Employee, error)

	// UpdateEmployee replaces the mutable fields of e (full name, email,
	// department, date of joining). Returns ErrEmployeeNotFound when the row
	// is absent and an EmailInUseError when the email collides; either way
	// the stored row is left untouched.
	UpdateEmployee(ctx context.Context, e *Employee) error

	// DeleteEmployee removes the employee and cascades to its attendance rows.
	DeleteEmployee(ctx context.Context, id int64) error
}

// =============================================================================
// ATTENDANCE STORE
// =============================================================================

// AttendanceStore handles persistence of attendance rows.
type AttendanceStore interface {
	// CreateAttendance inserts a, assigning ID and CreatedAt. See the
	// uniqueness contract in the package documentation above.
	CreateAttendance(ctx context.Context, a *Attendance) error

	// GetAttendance returns the row or (nil, nil) when absent.
	GetAttendance(ctx context.Context, id int64) (*Attendance, error)

	// GetAttendanceByKey returns the row for (employeeID, day) or (nil, nil).
	GetAttendanceByKey(ctx context.Context, employeeID int64, day time.Time) (*Attendance, error)

	// UpdateAttendance replaces date and status of the row identified by a.ID
	// inside one store transaction. A uniqueness violation rolls back and
	// returns a DuplicateAttendanceError; a missing row returns
	// ErrAttendanceNotFound.
	UpdateAttendance(ctx context.Context, a *Attendance) error

	// UpdateAttendanceStatus overwrites only the status. The write occurs even
	// when the status is unchanged.
	UpdateAttendanceStatus(ctx context.Context, id int64, status Status) error

	// DeleteAttendance removes the row or returns ErrAttendanceNotFound.
	DeleteAttendance(ctx context.Context, id int64) error

	// ListAttendance returns rows matching the filter, ordered by date
	// descending, then ID descending.
	ListAttendance(ctx context.Context, filter AttendanceFilter) ([]Attendance, error)
}

// =============================================================================
// DASHBOARD STORE
// =============================================================================

// DashboardStore provides the read-only aggregates for the dashboard.
type DashboardStore interface {
	// CountEmployees returns the total number of employees.
	CountEmployees(ctx context.Context) (int, error)

	// CountAttendanceByStatus counts rows for a given day and status.
	CountAttendanceByStatus(ctx context.Context, day time.Time, status Status) (int, error)

	// RecentAttendance returns the most recent rows (date desc, ID desc)
	// joined with employee names, at most limit of them.
	RecentAttendance(ctx context.Context, limit int) ([]RecentAttendance, error)
}

// Store combines every persistence concern the backend needs.
type Store interface {
	EmployeeStore
	AttendanceStore
	DashboardStore
}
