package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vigilancia/guard-roster-backend/internal/roster"
)

// Absence coverage status values. The transition open -> covered happens
// exactly once and never reverses.
const (
	CoverageStatusOpen    = "open"
	CoverageStatusCovered = "covered"
)

// Absence is a report that a guard will not work a specific already-approved
// (date, shift) slot. The original schedule keeps the slot; consumers
// cross-reference absences against schedule shifts to detect "assigned but
// absent".
type Absence struct {
	ID             string         `json:"id" db:"id"`
	ScheduleID     string         `json:"schedule_id" db:"schedule_id"` // non-owning reference
	GuardID        uuid.UUID      `json:"guard_id" db:"guard_id"`
	GuardName      string         `json:"guard_name" db:"guard_name"`
	Month          int            `json:"month" db:"month"` // 0-indexed
	Year           int            `json:"year" db:"year"`
	DateKey        roster.DateKey `json:"date_key" db:"date_key"`
	Shift          roster.ShiftID `json:"shift" db:"shift"`
	Reason         string         `json:"reason" db:"reason"`
	ReportedAt     time.Time      `json:"reported_at" db:"reported_at"`
	ReportedBy     string         `json:"reported_by" db:"reported_by"`
	CoverageStatus string         `json:"coverage_status" db:"coverage_status"`
	CoveredBy      NullString     `json:"covered_by,omitempty" db:"covered_by"`
	CoveredByName  NullString     `json:"covered_by_name,omitempty" db:"covered_by_name"`
	CoveredAt      NullTime       `json:"covered_at,omitempty" db:"covered_at"`
}

// NewAbsenceID generates an absence key in the absence_<timestamp>_<random>
// form.
func NewAbsenceID(now time.Time) string {
	return fmt.Sprintf("absence_%d_%s", now.UnixMilli(), uuid.NewString()[:8])
}

// IsOpen reports whether the absence still awaits coverage.
func (a *Absence) IsOpen() bool {
	return a.CoverageStatus == CoverageStatusOpen
}

// ReportAbsenceRequest reports an absence against an approved slot.
type ReportAbsenceRequest struct {
	ScheduleID string `json:"schedule_id" binding:"required"`
	DateKey    string `json:"date_key" binding:"required"`
	Shift      string `json:"shift" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
}
