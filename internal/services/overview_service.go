package services

import (
	"github.com/sirupsen/logrus"
	"github.com/vigilancia/guard-roster-backend/internal/roster"
)

// SlotAssignment describes who holds one (date, shift) slot in the monthly
// overview, including pending submissions and the assigned-but-absent state
// found by cross-referencing absences against schedule slots.
type SlotAssignment struct {
	ScheduleID string `json:"schedule_id"`
	GuardID    string `json:"guard_id"`
	GuardName  string `json:"guard_name"`
	Status     string `json:"status"`
	Absent     bool   `json:"absent"`
	AbsenceID  string `json:"absence_id,omitempty"`
}

// MonthlyOverview is the admin's per-slot view of a month. Every calendar
// day has an entry per shift; unassigned slots are nil.
type MonthlyOverview struct {
	Month int                                                `json:"month"`
	Year  int                                                `json:"year"`
	Slots map[roster.DateKey]map[roster.ShiftID]*SlotAssignment `json:"slots"`
}

// OverviewService builds the admin monthly schedule view.
type OverviewService struct {
	schedules ScheduleStore
	absences  AbsenceStore
	logger    *logrus.Logger
}

// NewOverviewService creates a new overview service
func NewOverviewService(schedules ScheduleStore, absences AbsenceStore, logger *logrus.Logger) *OverviewService {
	return &OverviewService{
		schedules: schedules,
		absences:  absences,
		logger:    logger,
	}
}

// MonthlySchedule assembles the slot assignment view for a month. Unlike
// the fill-count engine it includes pending schedules, so the admin sees
// what approval would commit.
func (s *OverviewService) MonthlySchedule(month, year int) (*MonthlyOverview, error) {
	if !roster.ValidMonth(month) {
		return nil, NewValidationError("month must be between 0 and 11, got %d", month)
	}

	schedules, err := s.schedules.GetAll()
	if err != nil {
		return nil, &StoreError{Op: "build monthly overview", Err: err}
	}
	absences, err := s.absences.GetAll()
	if err != nil {
		return nil, &StoreError{Op: "build monthly overview", Err: err}
	}

	overview := &MonthlyOverview{
		Month: month,
		Year:  year,
		Slots: make(map[roster.DateKey]map[roster.ShiftID]*SlotAssignment),
	}
	for day := 1; day <= roster.DaysInMonth(month, year); day++ {
		dateKey := roster.MakeDateKey(year, month, day)
		overview.Slots[dateKey] = map[roster.ShiftID]*SlotAssignment{}
		for _, shift := range roster.AllShifts {
			overview.Slots[dateKey][shift] = nil
		}
	}

	for i := range schedules {
		schedule := &schedules[i]
		if schedule.Month != month || schedule.Year != year {
			continue
		}
		for dateKey, shift := range schedule.Shifts {
			day, ok := overview.Slots[dateKey]
			if !ok || !shift.Valid() {
				continue
			}
			assignment := &SlotAssignment{
				ScheduleID: schedule.ID,
				GuardID:    schedule.GuardID.String(),
				GuardName:  schedule.GuardName,
				Status:     schedule.Status,
			}
			for _, absence := range absences {
				if absence.ScheduleID == schedule.ID && absence.DateKey == dateKey && absence.Shift == shift {
					assignment.Absent = true
					assignment.AbsenceID = absence.ID
					break
				}
			}
			day[shift] = assignment
		}
	}

	return overview, nil
}
