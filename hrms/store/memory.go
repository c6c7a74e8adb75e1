// Package store provides hrms.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hrmslite/backend/hrms"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements hrms.Store entirely in process memory. It enforces the
// same uniqueness invariants as the SQLite store and returns the same domain
// errors, so the Recorder behaves identically against either.
type Memory struct {
	mu sync.RWMutex

	employees  map[int64]hrms.Employee
	attendance map[int64]hrms.Attendance
	byKey      map[attendanceKey]int64

	nextEmployeeID   int64
	nextAttendanceID int64
}

type attendanceKey struct {
	EmployeeID int64
	Date       time.Time
}

func NewMemory() *Memory {
	return &Memory{
		employees:  make(map[int64]hrms.Employee),
		attendance: make(map[int64]hrms.Attendance),
		byKey:      make(map[attendanceKey]int64),
	}
}

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

func (m *Memory) CreateEmployee(_ context.Context, e *hrms.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.employees {
		if existing.EmployeeID == e.EmployeeID {
			return hrms.ErrDuplicateEmployeeID
		}
		if existing.Email == e.Email {
			return &hrms.EmailInUseError{Email: e.Email}
		}
	}

	m.nextEmployeeID++
	e.ID = m.nextEmployeeID
	e.CreatedAt = time.Now().UTC()
	m.employees[e.ID] = *e
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id int64) (*hrms.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.employees[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *Memory) GetEmployeeByBusinessID(_ context.Context, employeeID string) (*hrms.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.employees {
		if e.EmployeeID == employeeID {
			e := e
			return &e, nil
		}
	}
	return nil, nil
}

func (m *Memory) GetEmployeeByEmail(_ context.Context, email string) (*hrms.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.employees {
		if e.Email == email {
			e := e
			return &e, nil
		}
	}
	return nil, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]hrms.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]hrms.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		result = append(result, e)
	}
	// Newest first.
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (m *Memory) UpdateEmployee(_ context.Context, e *hrms.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.employees[e.ID]
	if !ok {
		return hrms.ErrEmployeeNotFound
	}
	for _, other := range m.employees {
		if other.ID != e.ID && other.Email == e.Email {
			return &hrms.EmailInUseError{Email: e.Email}
		}
	}

	current.FullName = e.FullName
	current.Email = e.Email
	current.Department = e.Department
	current.DateOfJoining = e.DateOfJoining
	m.employees[e.ID] = current
	*e = current
	return nil
}

func (m *Memory) DeleteEmployee(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.employees[id]; !ok {
		return hrms.ErrEmployeeNotFound
	}
	delete(m.employees, id)

	// Cascade.
	for attID, a := range m.attendance {
		if a.EmployeeID == id {
			delete(m.attendance, attID)
			delete(m.byKey, attendanceKey{EmployeeID: id, Date: a.Date})
		}
	}
	return nil
}

// =============================================================================
// ATTENDANCE STORE
// =============================================================================

func (m *Memory) CreateAttendance(_ context.Context, a *hrms.Attendance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := attendanceKey{EmployeeID: a.EmployeeID, Date: hrms.Day(a.Date)}
	if _, exists := m.byKey[key]; exists {
		return &hrms.DuplicateAttendanceError{EmployeeID: a.EmployeeID, Date: key.Date}
	}

	m.nextAttendanceID++
	a.ID = m.nextAttendanceID
	a.Date = key.Date
	a.CreatedAt = time.Now().UTC()
	m.attendance[a.ID] = *a
	m.byKey[key] = a.ID
	return nil
}

func (m *Memory) GetAttendance(_ context.Context, id int64) (*hrms.Attendance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.attendance[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *Memory) GetAttendanceByKey(_ context.Context, employeeID int64, day time.Time) (*hrms.Attendance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byKey[attendanceKey{EmployeeID: employeeID, Date: hrms.Day(day)}]
	if !ok {
		return nil, nil
	}
	a := m.attendance[id]
	return &a, nil
}

func (m *Memory) UpdateAttendance(_ context.Context, a *hrms.Attendance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.attendance[a.ID]
	if !ok {
		return hrms.ErrAttendanceNotFound
	}

	newDate := hrms.Day(a.Date)
	newKey := attendanceKey{EmployeeID: current.EmployeeID, Date: newDate}
	if otherID, exists := m.byKey[newKey]; exists && otherID != a.ID {
		return &hrms.DuplicateAttendanceError{EmployeeID: current.EmployeeID, Date: newDate}
	}

	delete(m.byKey, attendanceKey{EmployeeID: current.EmployeeID, Date: current.Date})
	current.Date = newDate
	current.Status = a.Status
	m.attendance[a.ID] = current
	m.byKey[newKey] = a.ID
	*a = current
	return nil
}

func (m *Memory) UpdateAttendanceStatus(_ context.Context, id int64, status hrms.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.attendance[id]
	if !ok {
		return hrms.ErrAttendanceNotFound
	}
	current.Status = status
	m.attendance[id] = current
	return nil
}

func (m *Memory) DeleteAttendance(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.attendance[id]
	if !ok {
		return hrms.ErrAttendanceNotFound
	}
	delete(m.attendance, id)
	delete(m.byKey, attendanceKey{EmployeeID: a.EmployeeID, Date: a.Date})
	return nil
}

func (m *Memory) ListAttendance(_ context.Context, filter hrms.AttendanceFilter) ([]hrms.Attendance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]hrms.Attendance, 0)
	for _, a := range m.attendance {
		if filter.EmployeeID != nil && a.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Date != nil && !a.Date.Equal(hrms.Day(*filter.Date)) {
			continue
		}
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

// =============================================================================
// DASHBOARD STORE
// =============================================================================

func (m *Memory) CountEmployees(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.employees), nil
}

func (m *Memory) CountAttendanceByStatus(_ context.Context, day time.Time, status hrms.Status) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	day = hrms.Day(day)
	count := 0
	for _, a := range m.attendance {
		if a.Date.Equal(day) && a.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *Memory) RecentAttendance(_ context.Context, limit int) ([]hrms.RecentAttendance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := make([]hrms.Attendance, 0, len(m.attendance))
	for _, a := range m.attendance {
		rows = append(rows, a)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.After(rows[j].Date)
		}
		return rows[i].ID > rows[j].ID
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}

	result := make([]hrms.RecentAttendance, 0, len(rows))
	for _, a := range rows {
		result = append(result, hrms.RecentAttendance{
			EmployeeID:   a.EmployeeID,
			EmployeeName: m.employees[a.EmployeeID].FullName,
			Date:         a.Date,
			Status:       a.Status,
		})
	}
	return result, nil
}
