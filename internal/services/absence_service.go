package services

import (
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vigilancia/guard-roster-backend/internal/models"
	"github.com/vigilancia/guard-roster-backend/internal/roster"
)

// AbsenceService reifies absences against approved slots and reconciles a
// claiming guard's schedule when coverage is accepted.
type AbsenceService struct {
	absences  AbsenceStore
	schedules ScheduleStore
	logger    *logrus.Logger
	now       func() time.Time
}

// NewAbsenceService creates a new absence service
func NewAbsenceService(absences AbsenceStore, schedules ScheduleStore, logger *logrus.Logger) *AbsenceService {
	return &AbsenceService{
		absences:  absences,
		schedules: schedules,
		logger:    logger,
		now:       time.Now,
	}
}

// ReportAbsence records that the schedule's guard will not work the given
// slot and opens a coverage request. The slot stays in the schedule's
// shifts; the assignment and the absence coexist until consumers
// cross-reference them.
func (s *AbsenceService) ReportAbsence(scheduleID string, rawDateKey, rawShift, reason, reporterID string) (*models.Absence, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, NewValidationError("a reason is required")
	}

	dateKey, err := roster.ParseDateKey(rawDateKey)
	if err != nil {
		return nil, NewValidationError("invalid date key: %v", err)
	}
	shift, err := roster.ParseShiftID(rawShift)
	if err != nil {
		return nil, NewValidationError("%v", err)
	}

	schedule, err := s.schedules.Get(scheduleID)
	if err != nil {
		return nil, translateStoreErr("report absence", "schedule", scheduleID, err)
	}
	if !schedule.IsApproved() {
		return nil, NewValidationError("schedule %s is not approved; absences apply to assigned slots only", scheduleID)
	}
	if reporterID != models.AdminConfigKey && reporterID != schedule.GuardID.String() {
		return nil, NewValidationError("absences can only be reported against the guard's own schedule")
	}
	if schedule.Shifts[dateKey] != shift {
		return nil, NewValidationError("schedule %s does not hold slot %s/%s", scheduleID, dateKey, shift)
	}

	now := s.now()
	absence := &models.Absence{
		ID:             models.NewAbsenceID(now),
		ScheduleID:     schedule.ID,
		GuardID:        schedule.GuardID,
		GuardName:      schedule.GuardName,
		Month:          schedule.Month,
		Year:           schedule.Year,
		DateKey:        dateKey,
		Shift:          shift,
		Reason:         strings.TrimSpace(reason),
		ReportedAt:     now,
		ReportedBy:     reporterID,
		CoverageStatus: models.CoverageStatusOpen,
	}

	if err := s.absences.Add(absence); err != nil {
		return nil, &StoreError{Op: "report absence", Err: err}
	}

	s.logger.WithFields(logrus.Fields{
		"absence_id":  absence.ID,
		"schedule_id": schedule.ID,
		"date_key":    dateKey,
		"shift":       shift,
	}).Info("Absence reported, coverage request opened")

	return absence, nil
}

// AcceptCoverage lets a different guard take over an absent guard's slot.
// The absence flips open -> covered exactly once; the claimer's schedule for
// the month is upserted with the slot, created already approved (approvedBy
// "system") when none exists. The claimer substitutes into an already vetted
// slot rather than requesting new capacity.
func (s *AbsenceService) AcceptCoverage(absenceID string, claimer *models.Guard) (*models.Absence, error) {
	absence, err := s.absences.Get(absenceID)
	if err != nil {
		return nil, translateStoreErr("accept coverage", "absence", absenceID, err)
	}

	if !absence.IsOpen() {
		return nil, NewConflictError("absence %s is already covered by %s", absenceID, absence.CoveredByName.String)
	}
	if absence.GuardID == claimer.ID {
		return nil, NewConflictError("a guard cannot cover their own absence")
	}

	schedules, err := s.schedules.GetAll()
	if err != nil {
		return nil, &StoreError{Op: "accept coverage", Err: err}
	}

	// Self-overlap guard: a claimer already approved for any shift on that
	// date cannot double-book themselves.
	for i := range schedules {
		sch := &schedules[i]
		if sch.GuardID != claimer.ID || sch.Month != absence.Month || sch.Year != absence.Year {
			continue
		}
		if sch.IsApproved() {
			if _, taken := sch.Shifts[absence.DateKey]; taken {
				return nil, NewConflictError("guard %s already has a shift on %s", claimer.Name, absence.DateKey)
			}
		}
	}

	now := s.now()
	absence.CoverageStatus = models.CoverageStatusCovered
	absence.CoveredBy = models.String(claimer.ID.String())
	absence.CoveredByName = models.String(claimer.Name)
	absence.CoveredAt = models.Time(now)

	if err := s.absences.Put(absence); err != nil {
		return nil, &StoreError{Op: "accept coverage", Err: err}
	}

	// Reconcile the claimer's schedule for that month, creating it
	// pre-approved when missing.
	var cover *models.Schedule
	for i := range schedules {
		sch := &schedules[i]
		if sch.GuardID == claimer.ID && sch.Month == absence.Month && sch.Year == absence.Year {
			cover = sch
			break
		}
	}

	if cover == nil {
		cover = &models.Schedule{
			ID:          models.ScheduleID(claimer.ID, absence.Year, absence.Month),
			GuardID:     claimer.ID,
			GuardName:   claimer.Name,
			Month:       absence.Month,
			Year:        absence.Year,
			Shifts:      models.ShiftMap{},
			Status:      models.ScheduleStatusApproved,
			SubmittedAt: now,
			ApprovedAt:  models.Time(now),
			ApprovedBy:  models.String(models.ApprovedBySystem),
		}
	}
	if cover.Shifts == nil {
		cover.Shifts = models.ShiftMap{}
	}
	cover.Shifts[absence.DateKey] = absence.Shift

	if err := s.schedules.Put(cover); err != nil {
		return nil, &StoreError{Op: "accept coverage", Err: err}
	}

	s.logger.WithFields(logrus.Fields{
		"absence_id": absence.ID,
		"covered_by": claimer.ID,
		"date_key":   absence.DateKey,
		"shift":      absence.Shift,
	}).Info("Coverage accepted")

	return absence, nil
}

// ListOpen returns open coverage requests, excluding those reported for the
// asking guard (a guard never covers their own absence), newest first.
func (s *AbsenceService) ListOpen(excludeGuardID string) ([]models.Absence, error) {
	all, err := s.absences.GetAll()
	if err != nil {
		return nil, &StoreError{Op: "list open coverages", Err: err}
	}

	var open []models.Absence
	for _, absence := range all {
		if absence.IsOpen() && absence.GuardID.String() != excludeGuardID {
			open = append(open, absence)
		}
	}
	sort.Slice(open, func(i, j int) bool {
		return open[i].ReportedAt.After(open[j].ReportedAt)
	})

	return open, nil
}

// CountOpen returns the number of open coverage requests.
func (s *AbsenceService) CountOpen() (int, error) {
	all, err := s.absences.GetAll()
	if err != nil {
		return 0, &StoreError{Op: "count open coverages", Err: err}
	}

	count := 0
	for _, absence := range all {
		if absence.IsOpen() {
			count++
		}
	}
	return count, nil
}
