package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrmslite/backend/api"
	"github.com/hrmslite/backend/hrms"
	"github.com/hrmslite/backend/hrms/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	srv := httptest.NewServer(api.NewRouter(mem, []string{"*"}))
	t.Cleanup(srv.Close)
	return srv, mem
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		// Some responses are arrays; those tests decode separately.
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
	}
	return resp, decoded
}

func doJSONList(t *testing.T, url string) (*http.Response, []map[string]any) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func createEmployee(t *testing.T, srv *httptest.Server, businessID, email string) int64 {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/employees", map[string]any{
		"employee_id":     businessID,
		"full_name":       "Ada Lovelace",
		"email":           email,
		"department":      "Engineering",
		"date_of_joining": "2024-01-15",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return int64(body["id"].(float64))
}

// ===== HEALTH =====

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/health", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

// ===== EMPLOYEES =====

func TestCreateEmployee(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/employees", map[string]any{
		"employee_id":     "EMP001",
		"full_name":       "  Ada Lovelace  ",
		"email":           "Ada@Example.COM",
		"department":      "Engineering",
		"date_of_joining": "2024-01-15",
	})

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "EMP001", body["employee_id"])
	assert.Equal(t, "Ada Lovelace", body["full_name"])
	// Email is canonicalized to lowercase.
	assert.Equal(t, "ada@example.com", body["email"])
	assert.Equal(t, "2024-01-15", body["date_of_joining"])
	assert.NotZero(t, body["id"])
}

func TestCreateEmployeeValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/employees", map[string]any{
		"employee_id":     "",
		"full_name":       "Ada Lovelace",
		"email":           "not-an-email",
		"department":      "Engineering",
		"date_of_joining": "15/01/2024",
	})

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation failed", body["error"])

	details := body["details"].([]any)
	fields := make(map[string]bool)
	for _, d := range details {
		fields[d.(map[string]any)["field"].(string)] = true
	}
	assert.True(t, fields["employee_id"])
	assert.True(t, fields["email"])
	assert.True(t, fields["date_of_joining"])
}

func TestCreateEmployeeDuplicateBusinessID(t *testing.T) {
	srv, _ := newTestServer(t)
	createEmployee(t, srv, "EMP001", "ada@example.com")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/employees", map[string]any{
		"employee_id": "EMP001",
		"full_name":   "Other Person",
		"email":       "other@example.com",
		"department":  "Sales",
	})

	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body["error"], "employee_id")
}

func TestCreateEmployeeDuplicateEmail(t *testing.T) {
	srv, _ := newTestServer(t)
	createEmployee(t, srv, "EMP001", "ada@example.com")

	// Case differs but canonicalization makes it collide.
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/employees", map[string]any{
		"employee_id": "EMP002",
		"full_name":   "Other Person",
		"email":       "ADA@example.com",
		"department":  "Sales",
	})

	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body["error"], "email")
}

func TestGetEmployeeNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/employees/42", nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateEmployee(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createEmployee(t, srv, "EMP001", "ada@example.com")

	resp, body := doJSON(t, http.MethodPut, fmt.Sprintf("%s/employees/%d", srv.URL, id), map[string]any{
		"full_name":       "Ada King",
		"email":           "ada.king@example.com",
		"department":      "Research",
		"date_of_joining": "2024-01-15",
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ada King", body["full_name"])
	assert.Equal(t, "Research", body["department"])
	// The business identifier is immutable.
	assert.Equal(t, "EMP001", body["employee_id"])
}

func TestUpdateEmployeeEmailConflict(t *testing.T) {
	srv, _ := newTestServer(t)
	createEmployee(t, srv, "EMP001", "ada@example.com")
	id := createEmployee(t, srv, "EMP002", "bob@example.com")

	resp, _ := doJSON(t, http.MethodPut, fmt.Sprintf("%s/employees/%d", srv.URL, id), map[string]any{
		"full_name":       "Bob",
		"email":           "ada@example.com",
		"department":      "Sales",
		"date_of_joining": "2024-01-15",
	})

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestDeleteEmployee(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createEmployee(t, srv, "EMP001", "ada@example.com")

	resp, _ := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/employees/%d", srv.URL, id), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/employees/%d", srv.URL, id), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListEmployees(t *testing.T) {
	srv, _ := newTestServer(t)
	createEmployee(t, srv, "EMP001", "ada@example.com")
	createEmployee(t, srv, "EMP002", "bob@example.com")

	resp, list := doJSONList(t, srv.URL+"/employees")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, list, 2)
}

// ===== ATTENDANCE =====

func TestMarkAttendanceCreateThenOverwrite(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createEmployee(t, srv, "EMP001", "ada@example.com")

	// First mark of the day creates.
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/attendance", map[string]any{
		"employee_id": id,
		"date":        "2025-03-10",
		"status":      "Present",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Present", body["status"])
	firstID := body["id"]

	// Same day again overwrites the same row.
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/attendance", map[string]any{
		"employee_id": id,
		"date":        "2025-03-10",
		"status":      "Absent",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Absent", body["status"])
	assert.Equal(t, firstID, body["id"])

	resp, list := doJSONList(t, fmt.Sprintf("%s/attendance/%d", srv.URL, id))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, list, 1)
}

func TestMarkAttendanceUnknownEmployee(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/attendance", map[string]any{
		"employee_id": 9999,
		"date":        "2025-03-10",
		"status":      "Present",
	})

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMarkAttendanceValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/attendance", map[string]any{
		"employee_id": 1,
		"date":        "2025-03-10",
		"status":      "Late",
	})

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	details := body["details"].([]any)
	require.Len(t, details, 1)
	assert.Equal(t, "status", details[0].(map[string]any)["field"])
}

func TestListAttendanceFilters(t *testing.T) {
	srv, _ := newTestServer(t)
	a := createEmployee(t, srv, "EMP001", "ada@example.com")
	b := createEmployee(t, srv, "EMP002", "bob@example.com")

	for _, mark := range []map[string]any{
		{"employee_id": a, "date": "2025-03-10", "status": "Present"},
		{"employee_id": a, "date": "2025-03-11", "status": "Absent"},
		{"employee_id": b, "date": "2025-03-10", "status": "Present"},
	} {
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/attendance", mark)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, list := doJSONList(t, srv.URL+"/attendance")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 3)
	// Newest date first.
	assert.Equal(t, "2025-03-11", list[0]["date"])

	resp, list = doJSONList(t, fmt.Sprintf("%s/attendance?employee_id=%d", srv.URL, a))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, list, 2)

	resp, list = doJSONList(t, srv.URL+"/attendance?date=2025-03-10")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, list, 2)

	// Filtered list with an unknown employee is empty, not a 404.
	resp, list = doJSONList(t, srv.URL+"/attendance?employee_id=9999")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, list, 0)
}

func TestListEmployeeAttendanceScoped(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createEmployee(t, srv, "EMP001", "ada@example.com")

	for _, mark := range []map[string]any{
		{"employee_id": id, "date": "2025-03-10", "status": "Present"},
		{"employee_id": id, "date": "2025-03-11", "status": "Absent"},
	} {
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/attendance", mark)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, list := doJSONList(t, fmt.Sprintf("%s/attendance/%d", srv.URL, id))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, list, 2)

	resp, list = doJSONList(t, fmt.Sprintf("%s/attendance/%d?date=2025-03-11", srv.URL, id))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 1)
	assert.Equal(t, "Absent", list[0]["status"])

	// The scoped listing 404s for an unknown employee.
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/attendance/9999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateAttendance(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createEmployee(t, srv, "EMP001", "ada@example.com")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/attendance", map[string]any{
		"employee_id": id,
		"date":        "2025-03-10",
		"status":      "Present",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	recID := int64(body["id"].(float64))

	resp, body = doJSON(t, http.MethodPut, fmt.Sprintf("%s/attendance/%d", srv.URL, recID), map[string]any{
		"date":   "2025-03-12",
		"status": "Absent",
	})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2025-03-12", body["date"])
	assert.Equal(t, "Absent", body["status"])
}

func TestUpdateAttendanceCollision(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createEmployee(t, srv, "EMP001", "ada@example.com")

	var recID int64
	for _, mark := range []map[string]any{
		{"employee_id": id, "date": "2025-03-10", "status": "Present"},
		{"employee_id": id, "date": "2025-03-11", "status": "Present"},
	} {
		resp, body := doJSON(t, http.MethodPost, srv.URL+"/attendance", mark)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		recID = int64(body["id"].(float64))
	}

	// Moving the second row onto the first row's date collides.
	resp, _ := doJSON(t, http.MethodPut, fmt.Sprintf("%s/attendance/%d", srv.URL, recID), map[string]any{
		"date":   "2025-03-10",
		"status": "Absent",
	})

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestDeleteAttendance(t *testing.T) {
	srv, _ := newTestServer(t)
	id := createEmployee(t, srv, "EMP001", "ada@example.com")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/attendance", map[string]any{
		"employee_id": id,
		"date":        "2025-03-10",
		"status":      "Present",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	recID := int64(body["id"].(float64))

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/attendance/%d", srv.URL, recID), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/attendance/%d", srv.URL, recID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ===== DASHBOARD =====

func TestDashboardSummary(t *testing.T) {
	srv, _ := newTestServer(t)
	a := createEmployee(t, srv, "EMP001", "ada@example.com")
	b := createEmployee(t, srv, "EMP002", "bob@example.com")
	createEmployee(t, srv, "EMP003", "carol@example.com")

	today := hrms.Today().Format(hrms.DayFormat)
	for _, mark := range []map[string]any{
		{"employee_id": a, "date": today, "status": "Present"},
		{"employee_id": b, "date": today, "status": "Absent"},
	} {
		resp, _ := doJSON(t, http.MethodPost, srv.URL+"/attendance", mark)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/dashboard/summary", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), body["total_employees"])
	assert.Equal(t, float64(1), body["present_today"])
	assert.Equal(t, float64(1), body["absent_today"])
	// 1 of 3 present, rounded to two decimals.
	assert.InDelta(t, 33.33, body["attendance_rate"], 0.001)

	recent := body["recent_attendance"].([]any)
	require.Len(t, recent, 2)
	first := recent[0].(map[string]any)
	assert.Equal(t, today, first["date"])
	assert.NotEmpty(t, first["employee_name"])
}

func TestDashboardSummaryEmpty(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/dashboard/summary", nil)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["total_employees"])
	// Zero employees yields a zero rate, not a division error.
	assert.Equal(t, float64(0), body["attendance_rate"])
	assert.Len(t, body["recent_attendance"].([]any), 0)
}
