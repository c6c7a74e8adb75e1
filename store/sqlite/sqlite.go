/*
Package sqlite provides the SQLite-backed implementation of hrms.Store.

PURPOSE:
  Implements all persistence interfaces (EmployeeStore, AttendanceStore,
  DashboardStore) using SQLite via database/sql. In production, the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  employees:  Directory entries, unique business identifier and email
  attendance: One row per (employee, date), FK cascade on employee delete

UNIQUENESS ENFORCEMENT:
  uq_attendance_employee_date is the authoritative guard for the "at most
  one attendance row per (employee, day)" invariant. Application-level
  lookups only decide between the insert and update paths; when two
  writers race, SQLite rejects exactly one insert and that rejection is
  translated into hrms.DuplicateAttendanceError for the Recorder's
  recovery path. The same pattern backs the employee_id and email
  uniqueness checks.

FOREIGN KEYS / WAL:
  The DSN enables foreign_keys (required for ON DELETE CASCADE) and WAL
  journaling for better read concurrency.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety around the single SQLite writer.
  Correctness never depends on the mutex: the unique indexes remain the
  source of truth, and every error path assumes another process could be
  writing concurrently.

USAGE:
  store, err := sqlite.New("./hrms.db")   // or ":memory:"
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - hrms/store.go: interface definitions and the uniqueness contract
  - hrms/recorder.go: the upsert path driven by these errors
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hrmslite/backend/hrms"
)

// Store implements hrms.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ hrms.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id TEXT NOT NULL,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL,
		department TEXT NOT NULL,
		date_of_joining TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS uq_employees_employee_id
		ON employees(employee_id);
	CREATE UNIQUE INDEX IF NOT EXISTS uq_employees_email
		ON employees(email);

	CREATE TABLE IF NOT EXISTS attendance (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id INTEGER NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		date TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- CRITICAL: at most one attendance row per (employee, day).
	-- Concurrent create requests rely on this index rejecting the racing
	-- insert; the application recovers by updating the surviving row.
	CREATE UNIQUE INDEX IF NOT EXISTS uq_attendance_employee_date
		ON attendance(employee_id, date);

	CREATE INDEX IF NOT EXISTS idx_attendance_employee
		ON attendance(employee_id);
	CREATE INDEX IF NOT EXISTS idx_attendance_date
		ON attendance(date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEE STORE (hrms.EmployeeStore interface)
// =============================================================================

// CreateEmployee inserts a new employee, assigning ID and CreatedAt.
func (s *Store) CreateEmployee(ctx context.Context, e *hrms.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (employee_id, full_name, email, department, date_of_joining, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.EmployeeID,
		e.FullName,
		e.Email,
		e.Department,
		e.DateOfJoining.Format(hrms.DayFormat),
		now.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err, "employees.employee_id") {
			return hrms.ErrDuplicateEmployeeID
		}
		if isUniqueViolation(err, "employees.email") {
			return &hrms.EmailInUseError{Email: e.Email}
		}
		return fmt.Errorf("failed to insert employee: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read employee id: %w", err)
	}
	e.ID = id
	e.CreatedAt = now
	return nil
}

// GetEmployee retrieves an employee by store ID.
func (s *Store) GetEmployee(ctx context.Context, id int64) (*hrms.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEmployee(ctx,
		"SELECT id, employee_id, full_name, email, department, date_of_joining, created_at FROM employees WHERE id = ?",
		id,
	)
}

// GetEmployeeByBusinessID retrieves an employee by the caller-assigned identifier.
func (s *Store) GetEmployeeByBusinessID(ctx context.Context, employeeID string) (*hrms.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEmployee(ctx,
		"SELECT id, employee_id, full_name, email, department, date_of_joining, created_at FROM employees WHERE employee_id = ?",
		employeeID,
	)
}

// GetEmployeeByEmail retrieves an employee by lowercased email.
func (s *Store) GetEmployeeByEmail(ctx context.Context, email string) (*hrms.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEmployee(ctx,
		"SELECT id, employee_id, full_name, email, department, date_of_joining, created_at FROM employees WHERE email = ?",
		email,
	)
}

func (s *Store) queryEmployee(ctx context.Context, query string, args ...any) (*hrms.Employee, error) {
	var (
		e             hrms.Employee
		dateOfJoining string
		createdAt     string
	)

	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&e.ID, &e.EmployeeID, &e.FullName, &e.Email, &e.Department, &dateOfJoining, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query employee: %w", err)
	}

	e.DateOfJoining, _ = time.Parse(hrms.DayFormat, dateOfJoining)
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &e, nil
}

// ListEmployees returns all employees, newest first.
func (s *Store) ListEmployees(ctx context.Context) ([]hrms.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, employee_id, full_name, email, department, date_of_joining, created_at FROM employees ORDER BY created_at DESC, id DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []hrms.Employee
	for rows.Next() {
		var (
			e             hrms.Employee
			dateOfJoining string
			createdAt     string
		)
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.FullName, &e.Email, &e.Department, &dateOfJoining, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		e.DateOfJoining, _ = time.Parse(hrms.DayFormat, dateOfJoining)
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// UpdateEmployee replaces the mutable fields of an employee in one transaction.
func (s *Store) UpdateEmployee(ctx context.Context, e *hrms.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE employees
		SET full_name = ?, email = ?, department = ?, date_of_joining = ?
		WHERE id = ?`,
		e.FullName,
		e.Email,
		e.Department,
		e.DateOfJoining.Format(hrms.DayFormat),
		e.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "employees.email") {
			return &hrms.EmailInUseError{Email: e.Email}
		}
		return fmt.Errorf("failed to update employee: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return hrms.ErrEmployeeNotFound
	}

	return tx.Commit()
}

// DeleteEmployee removes an employee; the FK cascades to attendance rows.
func (s *Store) DeleteEmployee(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return hrms.ErrEmployeeNotFound
	}
	return nil
}

// =============================================================================
// ATTENDANCE STORE (hrms.AttendanceStore interface)
// =============================================================================

// CreateAttendance inserts a new attendance row, assigning ID and CreatedAt.
// A uniqueness violation on (employee_id, date) is returned as a
// DuplicateAttendanceError with the insert rolled back, so the caller can
// recover with an update.
func (s *Store) CreateAttendance(ctx context.Context, a *hrms.Attendance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := hrms.Day(a.Date)
	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance (employee_id, date, status, created_at)
		VALUES (?, ?, ?, ?)`,
		a.EmployeeID,
		day.Format(hrms.DayFormat),
		a.Status,
		now.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err, "attendance.employee_id") {
			return &hrms.DuplicateAttendanceError{EmployeeID: a.EmployeeID, Date: day}
		}
		return fmt.Errorf("failed to insert attendance: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read attendance id: %w", err)
	}
	a.ID = id
	a.Date = day
	a.CreatedAt = now
	return nil
}

// GetAttendance retrieves an attendance row by ID.
func (s *Store) GetAttendance(ctx context.Context, id int64) (*hrms.Attendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryAttendanceRow(ctx,
		"SELECT id, employee_id, date, status, created_at FROM attendance WHERE id = ?",
		id,
	)
}

// GetAttendanceByKey retrieves the row for (employeeID, day), or nil.
func (s *Store) GetAttendanceByKey(ctx context.Context, employeeID int64, day time.Time) (*hrms.Attendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryAttendanceRow(ctx,
		"SELECT id, employee_id, date, status, created_at FROM attendance WHERE employee_id = ? AND date = ?",
		employeeID, hrms.Day(day).Format(hrms.DayFormat),
	)
}

func (s *Store) queryAttendanceRow(ctx context.Context, query string, args ...any) (*hrms.Attendance, error) {
	var (
		a         hrms.Attendance
		day       string
		createdAt string
	)

	err := s.db.QueryRowContext(ctx, query, args...).Scan(&a.ID, &a.EmployeeID, &day, &a.Status, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}

	a.Date, _ = time.Parse(hrms.DayFormat, day)
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &a, nil
}

// UpdateAttendance replaces date and status of an existing row inside one
// transaction. The uniqueness check runs in the same transaction as the
// write; a violation rolls back and leaves the original row untouched.
func (s *Store) UpdateAttendance(ctx context.Context, a *hrms.Attendance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := hrms.Day(a.Date)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE attendance SET date = ?, status = ? WHERE id = ?",
		day.Format(hrms.DayFormat), a.Status, a.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "attendance.employee_id") {
			return &hrms.DuplicateAttendanceError{EmployeeID: a.EmployeeID, Date: day}
		}
		return fmt.Errorf("failed to update attendance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return hrms.ErrAttendanceNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit attendance update: %w", err)
	}
	a.Date = day
	return nil
}

// UpdateAttendanceStatus overwrites the status of an existing row. The write
// is issued even when the new status equals the stored one.
func (s *Store) UpdateAttendanceStatus(ctx context.Context, id int64, status hrms.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE attendance SET status = ? WHERE id = ?",
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return hrms.ErrAttendanceNotFound
	}
	return nil
}

// DeleteAttendance removes an attendance row.
func (s *Store) DeleteAttendance(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM attendance WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return hrms.ErrAttendanceNotFound
	}
	return nil
}

// ListAttendance returns rows matching the filter, date desc then ID desc.
func (s *Store) ListAttendance(ctx context.Context, filter hrms.AttendanceFilter) ([]hrms.Attendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, employee_id, date, status, created_at FROM attendance"
	var (
		conditions []string
		args       []any
	)
	if filter.EmployeeID != nil {
		conditions = append(conditions, "employee_id = ?")
		args = append(args, *filter.EmployeeID)
	}
	if filter.Date != nil {
		conditions = append(conditions, "date = ?")
		args = append(args, hrms.Day(*filter.Date).Format(hrms.DayFormat))
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	var list []hrms.Attendance
	for rows.Next() {
		var (
			a         hrms.Attendance
			day       string
			createdAt string
		)
		if err := rows.Scan(&a.ID, &a.EmployeeID, &day, &a.Status, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		a.Date, _ = time.Parse(hrms.DayFormat, day)
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		list = append(list, a)
	}
	return list, rows.Err()
}

// =============================================================================
// DASHBOARD STORE (hrms.DashboardStore interface)
// =============================================================================

// CountEmployees returns the total number of employees.
func (s *Store) CountEmployees(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM employees").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return count, nil
}

// CountAttendanceByStatus counts rows for a given day and status.
func (s *Store) CountAttendanceByStatus(ctx context.Context, day time.Time, status hrms.Status) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM attendance WHERE date = ? AND status = ?",
		hrms.Day(day).Format(hrms.DayFormat), status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count attendance: %w", err)
	}
	return count, nil
}

// RecentAttendance returns the most recent rows joined with employee names.
func (s *Store) RecentAttendance(ctx context.Context, limit int) ([]hrms.RecentAttendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT a.employee_id, e.full_name, a.date, a.status
		FROM attendance a
		JOIN employees e ON e.id = a.employee_id
		ORDER BY a.date DESC, a.id DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent attendance: %w", err)
	}
	defer rows.Close()

	var recent []hrms.RecentAttendance
	for rows.Next() {
		var (
			r   hrms.RecentAttendance
			day string
		)
		if err := rows.Scan(&r.EmployeeID, &r.EmployeeName, &day, &r.Status); err != nil {
			return nil, fmt.Errorf("failed to scan recent attendance: %w", err)
		}
		r.Date, _ = time.Parse(hrms.DayFormat, day)
		recent = append(recent, r)
	}
	return recent, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

// isUniqueViolation reports whether err is a SQLite unique-constraint
// rejection involving the given column hint. SQLite names the violated
// columns in the message, e.g.
// "UNIQUE constraint failed: attendance.employee_id, attendance.date".
func isUniqueViolation(err error, hint string) bool {
	return err != nil &&
		strings.Contains(err.Error(), "UNIQUE constraint failed") &&
		strings.Contains(err.Error(), hint)
}
