package hrms_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrmslite/backend/hrms"
	"github.com/hrmslite/backend/hrms/store"
)

func newTestStore(t *testing.T) (*store.Memory, *hrms.Employee) {
	t.Helper()
	s := store.NewMemory()
	emp := &hrms.Employee{
		EmployeeID:    "EMP001",
		FullName:      "Ada Lovelace",
		Email:         "ada@example.com",
		Department:    "Engineering",
		DateOfJoining: mustDay(t, "2024-01-15"),
	}
	require.NoError(t, s.CreateEmployee(context.Background(), emp))
	return s, emp
}

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	day, err := hrms.ParseDay(s)
	require.NoError(t, err)
	return day
}

func TestRecordDailyCreatesFirstMark(t *testing.T) {
	// GIVEN an employee with no attendance for the day
	s, emp := newTestStore(t)
	recorder := hrms.NewRecorder(s)
	day := mustDay(t, "2025-03-10")

	// WHEN recording a status for that day
	record, outcome, err := recorder.RecordDaily(context.Background(), emp.ID, day, hrms.StatusPresent)

	// THEN a new row is created
	require.NoError(t, err)
	assert.Equal(t, hrms.OutcomeCreated, outcome)
	assert.Equal(t, emp.ID, record.EmployeeID)
	assert.Equal(t, day, record.Date)
	assert.Equal(t, hrms.StatusPresent, record.Status)
	assert.NotZero(t, record.ID)
}

func TestRecordDailyOverwritesExistingMark(t *testing.T) {
	// GIVEN an employee already marked Present for the day
	s, emp := newTestStore(t)
	recorder := hrms.NewRecorder(s)
	day := mustDay(t, "2025-03-10")

	first, _, err := recorder.RecordDaily(context.Background(), emp.ID, day, hrms.StatusPresent)
	require.NoError(t, err)

	// WHEN recording Absent for the same day
	second, outcome, err := recorder.RecordDaily(context.Background(), emp.ID, day, hrms.StatusAbsent)

	// THEN the existing row is overwritten, not duplicated
	require.NoError(t, err)
	assert.Equal(t, hrms.OutcomeUpdated, outcome)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, hrms.StatusAbsent, second.Status)

	list, err := s.ListAttendance(context.Background(), hrms.AttendanceFilter{EmployeeID: &emp.ID})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRecordDailySameStatusStillReportsUpdated(t *testing.T) {
	// GIVEN an employee already marked Present
	s, emp := newTestStore(t)
	recorder := hrms.NewRecorder(s)
	day := mustDay(t, "2025-03-10")

	_, _, err := recorder.RecordDaily(context.Background(), emp.ID, day, hrms.StatusPresent)
	require.NoError(t, err)

	// WHEN recording the identical status again
	record, outcome, err := recorder.RecordDaily(context.Background(), emp.ID, day, hrms.StatusPresent)

	// THEN the write is applied and reported as an update
	require.NoError(t, err)
	assert.Equal(t, hrms.OutcomeUpdated, outcome)
	assert.Equal(t, hrms.StatusPresent, record.Status)
}

func TestRecordDailyUnknownEmployee(t *testing.T) {
	s, _ := newTestStore(t)
	recorder := hrms.NewRecorder(s)

	_, _, err := recorder.RecordDaily(context.Background(), 9999, mustDay(t, "2025-03-10"), hrms.StatusPresent)

	require.Error(t, err)
	assert.True(t, hrms.IsNotFound(err))
}

func TestRecordDailyTruncatesToCalendarDay(t *testing.T) {
	// GIVEN a timestamp with a time-of-day component
	s, emp := newTestStore(t)
	recorder := hrms.NewRecorder(s)
	stamp := time.Date(2025, 3, 10, 17, 45, 3, 0, time.UTC)

	record, _, err := recorder.RecordDaily(context.Background(), emp.ID, stamp, hrms.StatusPresent)
	require.NoError(t, err)

	// THEN the stored date is the bare calendar day
	assert.Equal(t, mustDay(t, "2025-03-10"), record.Date)

	// AND a second write at a different time of day hits the same row
	_, outcome, err := recorder.RecordDaily(context.Background(), emp.ID,
		time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), hrms.StatusAbsent)
	require.NoError(t, err)
	assert.Equal(t, hrms.OutcomeUpdated, outcome)
}

// racingStore simulates losing the lookup/insert race: the first
// CreateAttendance call inserts a competing row for the same key before
// delegating, so the delegated insert hits the uniqueness constraint.
type racingStore struct {
	hrms.Store
	raced bool
}

func (r *racingStore) CreateAttendance(ctx context.Context, a *hrms.Attendance) error {
	if !r.raced {
		r.raced = true
		rival := &hrms.Attendance{
			EmployeeID: a.EmployeeID,
			Date:       a.Date,
			Status:     hrms.StatusAbsent,
		}
		if err := r.Store.CreateAttendance(ctx, rival); err != nil {
			return err
		}
	}
	return r.Store.CreateAttendance(ctx, a)
}

func TestRecordDailyRecoversFromLostRace(t *testing.T) {
	// GIVEN a store where a rival writer wins between lookup and insert
	inner, emp := newTestStore(t)
	recorder := hrms.NewRecorder(&racingStore{Store: inner})
	day := mustDay(t, "2025-03-10")

	// WHEN recording through the racy path
	record, outcome, err := recorder.RecordDaily(context.Background(), emp.ID, day, hrms.StatusPresent)

	// THEN the rival's row is overwritten rather than duplicated
	require.NoError(t, err)
	assert.Equal(t, hrms.OutcomeUpdated, outcome)
	assert.Equal(t, hrms.StatusPresent, record.Status)

	list, err := inner.ListAttendance(context.Background(), hrms.AttendanceFilter{EmployeeID: &emp.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, hrms.StatusPresent, list[0].Status)
}

// conflictStore reports a duplicate on insert but never yields the
// surviving row, which a working uniqueness constraint makes impossible.
type conflictStore struct {
	hrms.Store
}

func (c *conflictStore) CreateAttendance(_ context.Context, a *hrms.Attendance) error {
	return &hrms.DuplicateAttendanceError{EmployeeID: a.EmployeeID, Date: a.Date}
}

func (c *conflictStore) GetAttendanceByKey(context.Context, int64, time.Time) (*hrms.Attendance, error) {
	return nil, nil
}

func TestRecordDailyUnresolvableConflict(t *testing.T) {
	inner, emp := newTestStore(t)
	recorder := hrms.NewRecorder(&conflictStore{Store: inner})

	_, _, err := recorder.RecordDaily(context.Background(), emp.ID, mustDay(t, "2025-03-10"), hrms.StatusPresent)

	require.ErrorIs(t, err, hrms.ErrAttendanceConflict)
	assert.True(t, hrms.IsConflict(err))
}

func TestRecordDailyConcurrentWritersSingleRow(t *testing.T) {
	// GIVEN many goroutines marking the same (employee, day)
	s, emp := newTestStore(t)
	recorder := hrms.NewRecorder(s)
	day := mustDay(t, "2025-03-10")

	const writers = 16
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		status := hrms.StatusPresent
		if i%2 == 1 {
			status = hrms.StatusAbsent
		}
		go func(st hrms.Status) {
			_, _, err := recorder.RecordDaily(context.Background(), emp.ID, day, st)
			errs <- err
		}(status)
	}
	for i := 0; i < writers; i++ {
		require.NoError(t, <-errs)
	}

	// THEN exactly one row survives
	list, err := s.ListAttendance(context.Background(), hrms.AttendanceFilter{EmployeeID: &emp.ID})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
