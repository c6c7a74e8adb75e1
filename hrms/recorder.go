/*
recorder.go - Attendance upsert coordination

PURPOSE:
  Applies a daily attendance write idempotently with respect to the
  (employee, date) key under concurrent writers. This is the only part
  of the system with non-trivial write behavior; everything else is
  plain CRUD delegated straight to the Store.

ALGORITHM (RecordDaily):
  1. Confirm the employee exists (ErrEmployeeNotFound otherwise).
  2. Look up the row for (employee, date).
  3. Found:     overwrite its status and report OutcomeUpdated. The write
                happens even when the status is unchanged - no short-circuit.
  4. Not found: insert. Success reports OutcomeCreated.
  5. Insert rejected by the uniqueness constraint: a concurrent writer won
     the race between steps 2 and 4. The failed insert is already rolled
     back by the store; re-fetch the row and overwrite its status,
     reporting OutcomeUpdated. If the row is still absent - which a
     correctly enforced constraint makes impossible - fail with
     ErrAttendanceConflict.

  The lookup-then-insert sequence is deliberately racy at this level.
  Correctness comes entirely from the store's uniqueness constraint; the
  constraint rejection is treated as an expected, recoverable condition
  and retried exactly once via the fallback update.

SEE ALSO:
  - store.go: the uniqueness contract CreateAttendance must honor
  - store/sqlite/sqlite.go: constraint enforcement and error translation
*/
package hrms

import (
	"context"
	"errors"
	"time"
)

// Outcome distinguishes a first write from an overwrite. The API layer maps
// OutcomeCreated to 201 and OutcomeUpdated to 200.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
)

// Recorder coordinates attendance writes over a Store.
type Recorder struct {
	store Store
}

// NewRecorder creates a Recorder backed by the given store.
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

// RecordDaily upserts the attendance record for (employeeID, day) and returns
// the persisted row together with the outcome tag.
func (r *Recorder) RecordDaily(ctx context.Context, employeeID int64, day time.Time, status Status) (*Attendance, Outcome, error) {
	day = Day(day)

	emp, err := r.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, "", err
	}
	if emp == nil {
		return nil, "", ErrEmployeeNotFound
	}

	existing, err := r.store.GetAttendanceByKey(ctx, employeeID, day)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return r.overwrite(ctx, existing, status)
	}

	record := &Attendance{
		EmployeeID: employeeID,
		Date:       day,
		Status:     status,
	}
	err = r.store.CreateAttendance(ctx, record)
	if err == nil {
		return record, OutcomeCreated, nil
	}
	if !errors.Is(err, ErrDuplicateAttendance) {
		return nil, "", err
	}

	// Lost the race: another writer inserted between the lookup and the
	// insert. The store has rolled the insert back; recover by updating the
	// winner's row.
	existing, err = r.store.GetAttendanceByKey(ctx, employeeID, day)
	if err != nil {
		return nil, "", err
	}
	if existing == nil {
		return nil, "", ErrAttendanceConflict
	}
	return r.overwrite(ctx, existing, status)
}

func (r *Recorder) overwrite(ctx context.Context, existing *Attendance, status Status) (*Attendance, Outcome, error) {
	if err := r.store.UpdateAttendanceStatus(ctx, existing.ID, status); err != nil {
		return nil, "", err
	}
	existing.Status = status
	return existing, OutcomeUpdated, nil
}
