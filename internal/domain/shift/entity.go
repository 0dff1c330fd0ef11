package shift

import (
	"encoding/json"
	"time"
)

type Shift struct {
	ID         string
	EmployeeID string
	LocationID string
	StartTime  time.Time // inclusive
	EndTime    time.Time // exclusive
	Notes      *string
	Status     Status
	CreatedBy  *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Status string

const (
	StatusScheduled Status = "Scheduled"
	StatusCompleted Status = "Completed"
	StatusMissed    Status = "Missed"
)

var StatusValues = []string{
	string(StatusScheduled),
	string(StatusCompleted),
	string(StatusMissed),
}

// ShiftDraft is a shift that has passed validation and conflict checks but is not persisted yet.
type ShiftDraft struct {
	EmployeeID string
	LocationID string
	StartTime  time.Time
	EndTime    time.Time
	Notes      *string
	CreatedBy  *string
}

// BatchConflict records one (employee, date) pair skipped because of an existing shift.
type BatchConflict struct {
	EmployeeID         string    `json:"employee_id"`
	Date               time.Time `json:"-"`
	ConflictingShiftID string    `json:"conflicting_shift_id"`
}

type BatchScheduleResult struct {
	CreatedCount         int             `json:"created_count"`
	SkippedConflictCount int             `json:"skipped_conflict_count"`
	SkippedFailedCount   int             `json:"skipped_failed_count"`
	CreatedShiftIDs      []string        `json:"created_shift_ids"`
	Conflicts            []BatchConflict `json:"conflicts"`
}

// Empty reports whether the batch neither wrote nor skipped anything.
func (r BatchScheduleResult) Empty() bool {
	return r.CreatedCount == 0 && r.SkippedConflictCount == 0 && r.SkippedFailedCount == 0
}

func (c BatchConflict) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		EmployeeID         string `json:"employee_id"`
		Date               string `json:"date"`
		ConflictingShiftID string `json:"conflicting_shift_id"`
	}{
		EmployeeID:         c.EmployeeID,
		Date:               c.Date.Format("2006-01-02"),
		ConflictingShiftID: c.ConflictingShiftID,
	})
}
