package services

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vigilancia/guard-roster-backend/internal/models"
	"github.com/vigilancia/guard-roster-backend/internal/roster"
)

// ScheduleService drives the schedule lifecycle: pending on submission,
// approved by the admin, hard-deleted on rejection.
type ScheduleService struct {
	schedules ScheduleStore
	guards    GuardStore
	logger    *logrus.Logger
	now       func() time.Time
}

// NewScheduleService creates a new schedule service
func NewScheduleService(schedules ScheduleStore, guards GuardStore, logger *logrus.Logger) *ScheduleService {
	return &ScheduleService{
		schedules: schedules,
		guards:    guards,
		logger:    logger,
		now:       time.Now,
	}
}

// Submit upserts a guard's availability for a month at the deterministic
// schedule key. Re-submitting replaces prior content and always resets the
// status to pending.
func (s *ScheduleService) Submit(guardID uuid.UUID, month, year int, rawShifts map[string]string) (*models.Schedule, error) {
	if !roster.ValidMonth(month) {
		return nil, NewValidationError("month must be between 0 and 11, got %d", month)
	}
	if len(rawShifts) == 0 {
		return nil, NewValidationError("at least one shift must be selected")
	}

	shifts := make(models.ShiftMap, len(rawShifts))
	for rawKey, rawShift := range rawShifts {
		dateKey, err := roster.ParseDateKey(rawKey)
		if err != nil {
			return nil, NewValidationError("invalid date key: %v", err)
		}
		if !dateKey.InMonth(month, year) {
			return nil, NewValidationError("date %s is outside month %d/%d", dateKey, month, year)
		}
		shift, err := roster.ParseShiftID(rawShift)
		if err != nil {
			return nil, NewValidationError("invalid shift for %s: %v", dateKey, err)
		}
		shifts[dateKey] = shift
	}

	guard, err := s.guards.Get(guardID)
	if err != nil {
		return nil, translateStoreErr("submit schedule", "guard", guardID.String(), err)
	}

	schedule := &models.Schedule{
		ID:          models.ScheduleID(guardID, year, month),
		GuardID:     guardID,
		GuardName:   guard.Name,
		Month:       month,
		Year:        year,
		Shifts:      shifts,
		Status:      models.ScheduleStatusPending,
		SubmittedAt: s.now(),
	}

	if err := s.schedules.Put(schedule); err != nil {
		return nil, &StoreError{Op: "submit schedule", Err: err}
	}

	s.logger.WithFields(logrus.Fields{
		"schedule_id": schedule.ID,
		"guard_id":    guardID,
		"month":       month,
		"year":        year,
		"shifts":      len(shifts),
	}).Info("Availability submitted")

	return schedule, nil
}

// Approve transitions a schedule to approved, stamping approvedAt and
// approvedBy with the latest call (approving twice is idempotent). It
// refuses an approval that would put a second guard into a slot already
// held by another approved schedule for the month.
func (s *ScheduleService) Approve(scheduleID, approverID string) (*models.Schedule, error) {
	schedule, err := s.schedules.Get(scheduleID)
	if err != nil {
		return nil, translateStoreErr("approve schedule", "schedule", scheduleID, err)
	}

	if conflict := s.findSlotConflict(schedule); conflict != nil {
		return nil, conflict
	}

	schedule.Status = models.ScheduleStatusApproved
	schedule.ApprovedAt = models.Time(s.now())
	schedule.ApprovedBy = models.String(approverID)

	if err := s.schedules.Put(schedule); err != nil {
		return nil, &StoreError{Op: "approve schedule", Err: err}
	}

	s.logger.WithFields(logrus.Fields{
		"schedule_id": scheduleID,
		"approved_by": approverID,
	}).Info("Schedule approved")

	return schedule, nil
}

// findSlotConflict checks the candidate's shifts against every other
// approved schedule in the same month and returns a ConflictError naming
// the first taken slot, or nil.
func (s *ScheduleService) findSlotConflict(candidate *models.Schedule) error {
	others, err := s.schedules.GetAll()
	if err != nil {
		return &StoreError{Op: "check slot conflicts", Err: err}
	}

	for _, other := range others {
		if other.ID == candidate.ID || other.Month != candidate.Month || other.Year != candidate.Year || !other.IsApproved() {
			continue
		}
		for dateKey, shift := range candidate.Shifts {
			if other.Shifts[dateKey] == shift {
				return NewConflictError("slot %s/%s is already assigned to %s", dateKey, shift, other.GuardName)
			}
		}
	}

	return nil
}

// ApproveAllPending bulk-approves every pending schedule in the given month,
// oldest submission first. Schedules that would double-book a slot are
// skipped and reported, not approved.
func (s *ScheduleService) ApproveAllPending(month, year int, approverID string) (*models.ApproveMonthResult, error) {
	if !roster.ValidMonth(month) {
		return nil, NewValidationError("month must be between 0 and 11, got %d", month)
	}

	all, err := s.schedules.GetAll()
	if err != nil {
		return nil, &StoreError{Op: "approve pending schedules", Err: err}
	}

	var pending []models.Schedule
	for _, schedule := range all {
		if schedule.Month == month && schedule.Year == year && schedule.Status == models.ScheduleStatusPending {
			pending = append(pending, schedule)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].SubmittedAt.Before(pending[j].SubmittedAt)
	})

	result := &models.ApproveMonthResult{}
	for i := range pending {
		if _, err := s.Approve(pending[i].ID, approverID); err != nil {
			var conflict *ConflictError
			if errors.As(err, &conflict) {
				s.logger.WithFields(logrus.Fields{
					"schedule_id": pending[i].ID,
					"reason":      conflict.Message,
				}).Warn("Skipping conflicting schedule during bulk approval")
				result.Skipped = append(result.Skipped, pending[i].ID)
				continue
			}
			return nil, err
		}
		result.Approved++
	}

	s.logger.WithFields(logrus.Fields{
		"month":    month,
		"year":     year,
		"approved": result.Approved,
		"skipped":  len(result.Skipped),
	}).Info("Bulk approval finished")

	return result, nil
}

// Reject hard-deletes a pending submission; the guard must resubmit from
// scratch. There is no rejected status to reconcile later.
func (s *ScheduleService) Reject(scheduleID string) error {
	if _, err := s.schedules.Get(scheduleID); err != nil {
		return translateStoreErr("reject schedule", "schedule", scheduleID, err)
	}

	if err := s.schedules.Delete(scheduleID); err != nil {
		return translateStoreErr("reject schedule", "schedule", scheduleID, err)
	}

	s.logger.WithField("schedule_id", scheduleID).Info("Schedule rejected and deleted")
	return nil
}

// Get fetches one schedule by id.
func (s *ScheduleService) Get(scheduleID string) (*models.Schedule, error) {
	schedule, err := s.schedules.Get(scheduleID)
	if err != nil {
		return nil, translateStoreErr("fetch schedule", "schedule", scheduleID, err)
	}
	return schedule, nil
}

// ListPending returns all pending submissions, newest first.
func (s *ScheduleService) ListPending() ([]models.Schedule, error) {
	all, err := s.schedules.GetAll()
	if err != nil {
		return nil, &StoreError{Op: "list pending schedules", Err: err}
	}

	var pending []models.Schedule
	for _, schedule := range all {
		if schedule.Status == models.ScheduleStatusPending {
			pending = append(pending, schedule)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].SubmittedAt.After(pending[j].SubmittedAt)
	})

	return pending, nil
}

// ListByGuard returns a guard's schedules, most recent month first.
func (s *ScheduleService) ListByGuard(guardID uuid.UUID) ([]models.Schedule, error) {
	all, err := s.schedules.GetAll()
	if err != nil {
		return nil, &StoreError{Op: "list schedules", Err: err}
	}

	var mine []models.Schedule
	for _, schedule := range all {
		if schedule.GuardID == guardID {
			mine = append(mine, schedule)
		}
	}
	sort.Slice(mine, func(i, j int) bool {
		if mine[i].Year != mine[j].Year {
			return mine[i].Year > mine[j].Year
		}
		return mine[i].Month > mine[j].Month
	})

	return mine, nil
}
