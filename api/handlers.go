/*
HTTP handlers for the HRMS API.

PURPOSE:
  Translates HTTP requests into store and Recorder calls and domain
  errors into status codes. Handlers stay thin: uniqueness and the
  one-row-per-day invariant live in the store and Recorder, not here.

STATUS MAPPING:
  400 - malformed JSON or failed validation (with field details)
  404 - unknown employee or attendance row
  409 - duplicate employee_id/email, or an attendance (employee, date)
        collision that could not be recovered
  201 - attendance marked for the first time that day
  200 - attendance overwritten for a day already marked

NORMALIZATION:
  Emails are lowercased and all text fields trimmed before they reach
  the store, so uniqueness checks compare canonical values.
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hrmslite/backend/hrms"
)

const recentAttendanceLimit = 5

// Handler holds dependencies for all HTTP handlers.
type Handler struct {
	store    hrms.Store
	recorder *hrms.Recorder
}

// NewHandler creates a handler backed by the given store.
func NewHandler(store hrms.Store) *Handler {
	return &Handler{
		store:    store,
		recorder: hrms.NewRecorder(store),
	}
}

// ===== HEALTH =====

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ===== EMPLOYEES =====

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	normalizeCreateEmployee(&req)
	if err := validate.Struct(&req); err != nil {
		writeValidationError(w, err)
		return
	}

	dateOfJoining := hrms.Today()
	if req.DateOfJoining != "" {
		dateOfJoining, _ = hrms.ParseDay(req.DateOfJoining)
	}

	ctx := r.Context()

	// Pre-checks give precise conflict messages; the unique indexes in
	// the store remain the authoritative guard if two creates race.
	if existing, err := h.store.GetEmployeeByBusinessID(ctx, req.EmployeeID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check employee id")
		return
	} else if existing != nil {
		writeError(w, http.StatusConflict, "employee_id already exists")
		return
	}
	if existing, err := h.store.GetEmployeeByEmail(ctx, req.Email); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check email")
		return
	} else if existing != nil {
		writeError(w, http.StatusConflict, "email already in use")
		return
	}

	employee := &hrms.Employee{
		EmployeeID:    req.EmployeeID,
		FullName:      req.FullName,
		Email:         req.Email,
		Department:    req.Department,
		DateOfJoining: dateOfJoining,
	}
	if err := h.store.CreateEmployee(ctx, employee); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEmployeeDTO(employee))
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list employees")
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTOs(employees))
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	employee, err := h.store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get employee")
		return
	}
	if employee == nil {
		writeError(w, http.StatusNotFound, "employee not found")
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(employee))
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	normalizeUpdateEmployee(&req)
	if err := validate.Struct(&req); err != nil {
		writeValidationError(w, err)
		return
	}

	ctx := r.Context()

	employee, err := h.store.GetEmployee(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get employee")
		return
	}
	if employee == nil {
		writeError(w, http.StatusNotFound, "employee not found")
		return
	}

	if req.Email != employee.Email {
		other, err := h.store.GetEmployeeByEmail(ctx, req.Email)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to check email")
			return
		}
		if other != nil && other.ID != id {
			writeError(w, http.StatusConflict, "email already in use")
			return
		}
	}

	dateOfJoining, _ := hrms.ParseDay(req.DateOfJoining)
	employee.FullName = req.FullName
	employee.Email = req.Email
	employee.Department = req.Department
	employee.DateOfJoining = dateOfJoining

	if err := h.store.UpdateEmployee(ctx, employee); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toEmployeeDTO(employee))
}

func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteEmployee(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===== ATTENDANCE =====

func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	var filter hrms.AttendanceFilter

	if raw := r.URL.Query().Get("employee_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid employee_id parameter")
			return
		}
		filter.EmployeeID = &id
	}
	if raw := r.URL.Query().Get("date"); raw != "" {
		day, err := hrms.ParseDay(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date parameter, expected YYYY-MM-DD")
			return
		}
		filter.Date = &day
	}

	list, err := h.store.ListAttendance(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list attendance")
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceDTOs(list))
}

// ListEmployeeAttendance serves the scoped listing. Unlike the filtered
// list, an unknown employee here is a 404, not an empty 200.
func (h *Handler) ListEmployeeAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx := r.Context()

	employee, err := h.store.GetEmployee(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get employee")
		return
	}
	if employee == nil {
		writeError(w, http.StatusNotFound, "employee not found")
		return
	}

	filter := hrms.AttendanceFilter{EmployeeID: &id}
	if raw := r.URL.Query().Get("date"); raw != "" {
		day, err := hrms.ParseDay(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date parameter, expected YYYY-MM-DD")
			return
		}
		filter.Date = &day
	}

	list, err := h.store.ListAttendance(ctx, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list attendance")
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceDTOs(list))
}

// MarkAttendance records a status for (employee, date). The first mark
// of the day yields 201; marking again overwrites and yields 200.
func (h *Handler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	var req CreateAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeValidationError(w, err)
		return
	}

	day, _ := hrms.ParseDay(req.Date)

	record, outcome, err := h.recorder.RecordDaily(r.Context(), req.EmployeeID, day, hrms.Status(req.Status))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	status := http.StatusOK
	if outcome == hrms.OutcomeCreated {
		status = http.StatusCreated
	}
	writeJSON(w, status, toAttendanceDTO(record))
}

func (h *Handler) UpdateAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeValidationError(w, err)
		return
	}

	ctx := r.Context()

	record, err := h.store.GetAttendance(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get attendance")
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "attendance record not found")
		return
	}

	day, _ := hrms.ParseDay(req.Date)
	record.Date = day
	record.Status = hrms.Status(req.Status)

	if err := h.store.UpdateAttendance(ctx, record); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAttendanceDTO(record))
}

func (h *Handler) DeleteAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteAttendance(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===== DASHBOARD =====

func (h *Handler) DashboardSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	today := hrms.Today()

	total, err := h.store.CountEmployees(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count employees")
		return
	}
	present, err := h.store.CountAttendanceByStatus(ctx, today, hrms.StatusPresent)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count attendance")
		return
	}
	absent, err := h.store.CountAttendanceByStatus(ctx, today, hrms.StatusAbsent)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count attendance")
		return
	}
	recent, err := h.store.RecentAttendance(ctx, recentAttendanceLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load recent attendance")
		return
	}

	summary := &hrms.DashboardSummary{
		TotalEmployees: total,
		PresentToday:   present,
		AbsentToday:    absent,
		AttendanceRate: hrms.AttendanceRate(present, total),
		Recent:         recent,
	}
	writeJSON(w, http.StatusOK, toDashboardDTO(summary))
}

// ===== HELPERS =====

func normalizeCreateEmployee(req *CreateEmployeeRequest) {
	req.EmployeeID = strings.TrimSpace(req.EmployeeID)
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Department = strings.TrimSpace(req.Department)
	req.DateOfJoining = strings.TrimSpace(req.DateOfJoining)
}

func normalizeUpdateEmployee(req *UpdateEmployeeRequest) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Department = strings.TrimSpace(req.Department)
	req.DateOfJoining = strings.TrimSpace(req.DateOfJoining)
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case hrms.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case hrms.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeValidationError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "validation failed",
		Details: fieldErrors(err),
	})
}
