package services

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/vigilancia/guard-roster-backend/internal/database"
	"github.com/vigilancia/guard-roster-backend/internal/models"
	"github.com/vigilancia/guard-roster-backend/internal/roster"
)

// AvailabilityService is the slot availability engine: it computes per-slot
// fill state from approved schedules and drives the selection rules the
// availability grid enforces.
type AvailabilityService struct {
	schedules ScheduleStore
	logger    *logrus.Logger
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(schedules ScheduleStore, logger *logrus.Logger) *AvailabilityService {
	return &AvailabilityService{
		schedules: schedules,
		logger:    logger,
	}
}

// SlotFillCounts maps every calendar date of a month to per-shift fill
// counts.
type SlotFillCounts map[roster.DateKey]map[roster.ShiftID]int

// IsFull reports whether the slot has reached capacity.
func (c SlotFillCounts) IsFull(dateKey roster.DateKey, shift roster.ShiftID) bool {
	day, ok := c[dateKey]
	if !ok {
		return false
	}
	return day[shift] >= roster.SlotCapacity
}

// ComputeSlotFillCounts scans all approved schedules for the given 0-indexed
// month and returns fill counts with an entry for every calendar day and
// every shift, zero-initialized before scanning.
func (s *AvailabilityService) ComputeSlotFillCounts(month, year int) (SlotFillCounts, error) {
	if !roster.ValidMonth(month) {
		return nil, NewValidationError("month must be between 0 and 11, got %d", month)
	}

	schedules, err := s.schedules.GetAll()
	if err != nil {
		return nil, &StoreError{Op: "compute slot fill counts", Err: err}
	}

	counts := make(SlotFillCounts)
	for day := 1; day <= roster.DaysInMonth(month, year); day++ {
		dateKey := roster.MakeDateKey(year, month, day)
		counts[dateKey] = map[roster.ShiftID]int{}
		for _, shift := range roster.AllShifts {
			counts[dateKey][shift] = 0
		}
	}

	for _, schedule := range schedules {
		if schedule.Month != month || schedule.Year != year || !schedule.IsApproved() {
			continue
		}
		for dateKey, shift := range schedule.Shifts {
			if day, ok := counts[dateKey]; ok && shift.Valid() {
				day[shift]++
			}
		}
	}

	return counts, nil
}

// IsSelectable reports whether a guard may pick the slot: either it is not
// full, or the guard's own selection already occupies it (so re-select and
// deselect stay possible).
func IsSelectable(counts SlotFillCounts, own models.ShiftMap, dateKey roster.DateKey, shift roster.ShiftID) bool {
	if own[dateKey] == shift {
		return true
	}
	return !counts.IsFull(dateKey, shift)
}

// ToggleShiftSelection applies one grid click to an in-progress selection
// set and returns the updated copy. Picking a slot propagates the same shift
// to every other date in the month sharing the day of week, so a guard can
// declare "every Tuesday" in one click; clearing removes the whole series.
// This operates purely on the selection set, never on committed data.
func ToggleShiftSelection(selection models.ShiftMap, dateKey roster.DateKey, shift roster.ShiftID, month, year int) (models.ShiftMap, error) {
	if !roster.ValidMonth(month) {
		return nil, NewValidationError("month must be between 0 and 11, got %d", month)
	}
	if !shift.Valid() {
		return nil, NewValidationError("unknown shift identifier: %q", shift)
	}
	if _, err := roster.ParseDateKey(string(dateKey)); err != nil {
		return nil, NewValidationError("invalid date key: %v", err)
	}
	if !dateKey.InMonth(month, year) {
		return nil, NewValidationError("date %s is outside month %d/%d", dateKey, month, year)
	}

	weekday, err := dateKey.Weekday()
	if err != nil {
		return nil, NewValidationError("invalid date key: %v", err)
	}

	selecting := selection[dateKey] != shift

	out := selection.Clone()
	if out == nil {
		out = models.ShiftMap{}
	}
	for day := 1; day <= roster.DaysInMonth(month, year); day++ {
		key := roster.MakeDateKey(year, month, day)
		wd, err := key.Weekday()
		if err != nil || wd != weekday {
			continue
		}
		if selecting {
			out[key] = shift
		} else {
			delete(out, key)
		}
	}

	return out, nil
}

// MonthAvailability bundles the fill counts with the asking guard's current
// schedule for the month, which the grid needs to render selected slots.
type MonthAvailability struct {
	Month      int              `json:"month"`
	Year       int              `json:"year"`
	FillCounts SlotFillCounts   `json:"fill_counts"`
	Own        *models.Schedule `json:"own_schedule,omitempty"`
}

// MonthAvailabilityFor computes the grid state for one guard and month.
func (s *AvailabilityService) MonthAvailabilityFor(guardID string, month, year int) (*MonthAvailability, error) {
	counts, err := s.ComputeSlotFillCounts(month, year)
	if err != nil {
		return nil, err
	}

	out := &MonthAvailability{
		Month:      month,
		Year:       year,
		FillCounts: counts,
	}

	schedules, err := s.schedules.GetAll()
	if err != nil {
		return nil, &StoreError{Op: "fetch schedules", Err: err}
	}
	for i := range schedules {
		sch := &schedules[i]
		if sch.GuardID.String() == guardID && sch.Month == month && sch.Year == year {
			out.Own = sch
			break
		}
	}

	return out, nil
}

// translateStoreErr maps a repository error to the service taxonomy.
func translateStoreErr(op, entity, key string, err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return &NotFoundError{Entity: entity, Key: key}
	}
	return &StoreError{Op: op, Err: err}
}
