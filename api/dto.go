/*
DTO layer for the HTTP API.

PURPOSE:
  Keeps wire formats separate from domain types. Request structs carry
  validation tags consumed by api/validate.go; response structs pin the
  JSON field names and date formatting (YYYY-MM-DD for business dates,
  RFC3339 for timestamps).

CONVENTIONS:
  - employee_id on employee payloads is the caller-assigned business
    identifier (string); on attendance payloads it is the employee's
    numeric store ID.
  - The update payload for employees deliberately has no employee_id
    field: the business identifier is immutable after creation.
*/
package api

import (
	"time"

	"github.com/hrmslite/backend/hrms"
)

// ===== EMPLOYEE REQUESTS =====

type CreateEmployeeRequest struct {
	EmployeeID    string `json:"employee_id" validate:"required,max=50"`
	FullName      string `json:"full_name" validate:"required,max=200"`
	Email         string `json:"email" validate:"required,email,max=254"`
	Department    string `json:"department" validate:"required,max=100"`
	DateOfJoining string `json:"date_of_joining" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateEmployeeRequest struct {
	FullName      string `json:"full_name" validate:"required,max=200"`
	Email         string `json:"email" validate:"required,email,max=254"`
	Department    string `json:"department" validate:"required,max=100"`
	DateOfJoining string `json:"date_of_joining" validate:"required,datetime=2006-01-02"`
}

// ===== ATTENDANCE REQUESTS =====

type CreateAttendanceRequest struct {
	EmployeeID int64  `json:"employee_id" validate:"required,gt=0"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Status     string `json:"status" validate:"required,oneof=Present Absent"`
}

type UpdateAttendanceRequest struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Status string `json:"status" validate:"required,oneof=Present Absent"`
}

// ===== RESPONSES =====

type EmployeeDTO struct {
	ID            int64  `json:"id"`
	EmployeeID    string `json:"employee_id"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Department    string `json:"department"`
	DateOfJoining string `json:"date_of_joining"`
	CreatedAt     string `json:"created_at"`
}

type AttendanceDTO struct {
	ID         int64  `json:"id"`
	EmployeeID int64  `json:"employee_id"`
	Date       string `json:"date"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

type RecentAttendanceDTO struct {
	EmployeeID   int64  `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Date         string `json:"date"`
	Status       string `json:"status"`
}

type DashboardSummaryDTO struct {
	TotalEmployees int                   `json:"total_employees"`
	PresentToday   int                   `json:"present_today"`
	AbsentToday    int                   `json:"absent_today"`
	AttendanceRate float64               `json:"attendance_rate"`
	Recent         []RecentAttendanceDTO `json:"recent_attendance"`
}

// ErrorResponse is the uniform error payload. Details is populated only
// for validation failures.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ===== CONVERTERS =====

func toEmployeeDTO(e *hrms.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:            e.ID,
		EmployeeID:    e.EmployeeID,
		FullName:      e.FullName,
		Email:         e.Email,
		Department:    e.Department,
		DateOfJoining: e.DateOfJoining.Format(hrms.DayFormat),
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
}

func toEmployeeDTOs(employees []hrms.Employee) []EmployeeDTO {
	dtos := make([]EmployeeDTO, 0, len(employees))
	for i := range employees {
		dtos = append(dtos, toEmployeeDTO(&employees[i]))
	}
	return dtos
}

func toAttendanceDTO(a *hrms.Attendance) AttendanceDTO {
	return AttendanceDTO{
		ID:         a.ID,
		EmployeeID: a.EmployeeID,
		Date:       a.Date.Format(hrms.DayFormat),
		Status:     string(a.Status),
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
	}
}

func toAttendanceDTOs(list []hrms.Attendance) []AttendanceDTO {
	dtos := make([]AttendanceDTO, 0, len(list))
	for i := range list {
		dtos = append(dtos, toAttendanceDTO(&list[i]))
	}
	return dtos
}

func toDashboardDTO(s *hrms.DashboardSummary) DashboardSummaryDTO {
	recent := make([]RecentAttendanceDTO, 0, len(s.Recent))
	for _, r := range s.Recent {
		recent = append(recent, RecentAttendanceDTO{
			EmployeeID:   r.EmployeeID,
			EmployeeName: r.EmployeeName,
			Date:         r.Date.Format(hrms.DayFormat),
			Status:       string(r.Status),
		})
	}
	return DashboardSummaryDTO{
		TotalEmployees: s.TotalEmployees,
		PresentToday:   s.PresentToday,
		AbsentToday:    s.AbsentToday,
		AttendanceRate: s.AttendanceRate,
		Recent:         recent,
	}
}
