// Package hrms contains the core domain model for the HRMS Lite backend:
// employees, their daily attendance records, and the rules that keep the
// two consistent under concurrent writers.
package hrms

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ATTENDANCE STATUS
// =============================================================================

// Status is the closed set of attendance states.
type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
)

// Valid reports whether s is one of the permitted status literals.
func (s Status) Valid() bool {
	return s == StatusPresent || s == StatusAbsent
}

// =============================================================================
// ENTITIES
// =============================================================================

// Employee is a directory entry. EmployeeID is the caller-assigned business
// identifier and is distinct from the store-assigned ID.
type Employee struct {
	ID            int64
	EmployeeID    string
	FullName      string
	Email         string // stored lowercase
	Department    string
	DateOfJoining time.Time // calendar date, UTC midnight
	CreatedAt     time.Time
}

// Attendance is one employee's record for one calendar day.
// At most one row exists per (EmployeeID, Date) pair.
type Attendance struct {
	ID         int64
	EmployeeID int64
	Date       time.Time // calendar date, UTC midnight
	Status     Status
	CreatedAt  time.Time
}

// =============================================================================
// QUERY TYPES
// =============================================================================

// AttendanceFilter narrows attendance listings. Nil fields match everything.
type AttendanceFilter struct {
	EmployeeID *int64
	Date       *time.Time
}

// RecentAttendance is an attendance row joined with the employee name,
// used by the dashboard projection.
type RecentAttendance struct {
	EmployeeID   int64
	EmployeeName string
	Date         time.Time
	Status       Status
}

// DashboardSummary is the fixed-size aggregate served by the dashboard.
type DashboardSummary struct {
	TotalEmployees int
	PresentToday   int
	AbsentToday    int
	AttendanceRate float64
	Recent         []RecentAttendance
}

// =============================================================================
// DATE HELPERS
// =============================================================================

// DayFormat is the wire format for calendar dates.
const DayFormat = "2006-01-02"

// Day truncates t to a calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date at UTC midnight.
func Today() time.Time {
	return Day(time.Now().UTC())
}

// ParseDay parses an ISO-8601 calendar date.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(DayFormat, s)
}

// AttendanceRate returns present as a percentage of total, rounded to two
// decimal places. Zero total yields zero rather than a division error.
func AttendanceRate(present, total int) float64 {
	if total <= 0 {
		return 0
	}
	rate := decimal.NewFromInt(int64(present) * 100).
		Div(decimal.NewFromInt(int64(total))).
		Round(2)
	return rate.InexactFloat64()
}
