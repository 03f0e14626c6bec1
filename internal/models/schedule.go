package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vigilancia/guard-roster-backend/internal/roster"
)

// Schedule status values. Rejection is a hard delete, not a status.
const (
	ScheduleStatusPending  = "pending"
	ScheduleStatusApproved = "approved"
)

// ApprovedBySystem marks schedules created by the coverage path without
// going through the pending->approved transition.
const ApprovedBySystem = "system"

// ShiftMap maps a calendar date to the shift the guard holds on it. While a
// schedule is pending it is guard-declared availability; once approved it is
// the binding assignment consumed for capacity accounting. Stored as JSONB.
type ShiftMap map[roster.DateKey]roster.ShiftID

// Value implements the driver.Valuer interface
func (m ShiftMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface
func (m *ShiftMap) Scan(src interface{}) error {
	if src == nil {
		*m = ShiftMap{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ShiftMap", src)
	}
	return json.Unmarshal(data, m)
}

// Clone returns a copy that shares no storage with m.
func (m ShiftMap) Clone() ShiftMap {
	out := make(ShiftMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Schedule is one guard's availability/assignment for exactly one
// (guard, month, year) tuple. The deterministic ID acts as a natural key:
// re-submission overwrites rather than duplicates.
type Schedule struct {
	ID          string     `json:"id" db:"id"`
	GuardID     uuid.UUID  `json:"guard_id" db:"guard_id"`
	GuardName   string     `json:"guard_name" db:"guard_name"`
	Month       int        `json:"month" db:"month"` // 0-indexed
	Year        int        `json:"year" db:"year"`
	Shifts      ShiftMap   `json:"shifts" db:"shifts"`
	Status      string     `json:"status" db:"status"`
	SubmittedAt time.Time  `json:"submitted_at" db:"submitted_at"`
	ApprovedAt  NullTime   `json:"approved_at,omitempty" db:"approved_at"`
	ApprovedBy  NullString `json:"approved_by,omitempty" db:"approved_by"`
}

// ScheduleID builds the deterministic schedule key for a guard and month.
func ScheduleID(guardID uuid.UUID, year, month int) string {
	return fmt.Sprintf("schedule_%s_%d_%d", guardID, year, month)
}

// IsApproved reports whether the schedule counts toward slot capacity.
func (s *Schedule) IsApproved() bool {
	return s.Status == ScheduleStatusApproved
}

// SubmitScheduleRequest is a guard's availability submission for a month.
type SubmitScheduleRequest struct {
	Month  int               `json:"month"`
	Year   int               `json:"year" binding:"required"`
	Shifts map[string]string `json:"shifts" binding:"required"`
}

// ApproveMonthRequest asks for bulk approval of a month's pending schedules.
type ApproveMonthRequest struct {
	Month int `json:"month"`
	Year  int `json:"year" binding:"required"`
}

// ApproveMonthResult reports the outcome of a bulk approval.
type ApproveMonthResult struct {
	Approved int      `json:"approved"`
	Skipped  []string `json:"skipped,omitempty"` // schedule ids refused for slot conflicts
}
