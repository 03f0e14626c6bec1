package services

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vigilancia/guard-roster-backend/internal/database"
	"github.com/vigilancia/guard-roster-backend/internal/models"
	"github.com/vigilancia/guard-roster-backend/internal/roster"
)

// In-memory store fakes. They copy records on the way in and out so tests
// exercise the same whole-record read/write semantics as the repositories.

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakeGuardStore struct {
	guards map[uuid.UUID]models.Guard
	err    error
}

func newFakeGuardStore() *fakeGuardStore {
	return &fakeGuardStore{guards: map[uuid.UUID]models.Guard{}}
}

func (f *fakeGuardStore) Add(guard *models.Guard) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.guards[guard.ID]; ok {
		return fmt.Errorf("guard %s already exists", guard.ID)
	}
	f.guards[guard.ID] = *guard
	return nil
}

func (f *fakeGuardStore) Get(id uuid.UUID) (*models.Guard, error) {
	if f.err != nil {
		return nil, f.err
	}
	guard, ok := f.guards[id]
	if !ok {
		return nil, fmt.Errorf("guard %s: %w", id, database.ErrNotFound)
	}
	return &guard, nil
}

func (f *fakeGuardStore) GetByUsername(username string) (*models.Guard, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, guard := range f.guards {
		if guard.Username == username {
			g := guard
			return &g, nil
		}
	}
	return nil, fmt.Errorf("guard %q: %w", username, database.ErrNotFound)
}

func (f *fakeGuardStore) GetAll() ([]models.Guard, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Guard, 0, len(f.guards))
	for _, guard := range f.guards {
		out = append(out, guard)
	}
	return out, nil
}

func (f *fakeGuardStore) Put(guard *models.Guard) error {
	if f.err != nil {
		return f.err
	}
	f.guards[guard.ID] = *guard
	return nil
}

func (f *fakeGuardStore) Delete(id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.guards[id]; !ok {
		return fmt.Errorf("guard %s: %w", id, database.ErrNotFound)
	}
	delete(f.guards, id)
	return nil
}

type fakeScheduleStore struct {
	schedules map[string]models.Schedule
	err       error
}

func newFakeScheduleStore() *fakeScheduleStore {
	return &fakeScheduleStore{schedules: map[string]models.Schedule{}}
}

func (f *fakeScheduleStore) Get(id string) (*models.Schedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	schedule, ok := f.schedules[id]
	if !ok {
		return nil, fmt.Errorf("schedule %s: %w", id, database.ErrNotFound)
	}
	schedule.Shifts = schedule.Shifts.Clone()
	return &schedule, nil
}

func (f *fakeScheduleStore) GetAll() ([]models.Schedule, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Schedule, 0, len(f.schedules))
	for _, schedule := range f.schedules {
		schedule.Shifts = schedule.Shifts.Clone()
		out = append(out, schedule)
	}
	return out, nil
}

func (f *fakeScheduleStore) Put(schedule *models.Schedule) error {
	if f.err != nil {
		return f.err
	}
	stored := *schedule
	stored.Shifts = schedule.Shifts.Clone()
	f.schedules[schedule.ID] = stored
	return nil
}

func (f *fakeScheduleStore) Delete(id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.schedules[id]; !ok {
		return fmt.Errorf("schedule %s: %w", id, database.ErrNotFound)
	}
	delete(f.schedules, id)
	return nil
}

func (f *fakeScheduleStore) DeleteByGuard(guardID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	for id, schedule := range f.schedules {
		if schedule.GuardID == guardID {
			delete(f.schedules, id)
		}
	}
	return nil
}

type fakeAbsenceStore struct {
	absences map[string]models.Absence
	err      error
}

func newFakeAbsenceStore() *fakeAbsenceStore {
	return &fakeAbsenceStore{absences: map[string]models.Absence{}}
}

func (f *fakeAbsenceStore) Add(absence *models.Absence) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.absences[absence.ID]; ok {
		return fmt.Errorf("absence %s already exists", absence.ID)
	}
	f.absences[absence.ID] = *absence
	return nil
}

func (f *fakeAbsenceStore) Get(id string) (*models.Absence, error) {
	if f.err != nil {
		return nil, f.err
	}
	absence, ok := f.absences[id]
	if !ok {
		return nil, fmt.Errorf("absence %s: %w", id, database.ErrNotFound)
	}
	return &absence, nil
}

func (f *fakeAbsenceStore) GetAll() ([]models.Absence, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Absence, 0, len(f.absences))
	for _, absence := range f.absences {
		out = append(out, absence)
	}
	return out, nil
}

func (f *fakeAbsenceStore) Put(absence *models.Absence) error {
	if f.err != nil {
		return f.err
	}
	f.absences[absence.ID] = *absence
	return nil
}

func (f *fakeAbsenceStore) Delete(id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.absences[id]; !ok {
		return fmt.Errorf("absence %s: %w", id, database.ErrNotFound)
	}
	delete(f.absences, id)
	return nil
}

func (f *fakeAbsenceStore) DeleteByGuard(guardID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	for id, absence := range f.absences {
		if absence.GuardID == guardID {
			delete(f.absences, id)
		}
	}
	return nil
}

type fakeAdminConfigStore struct {
	cred *models.AdminCredential
	err  error
}

func (f *fakeAdminConfigStore) Get() (*models.AdminCredential, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.cred == nil {
		return nil, fmt.Errorf("admin credential: %w", database.ErrNotFound)
	}
	cred := *f.cred
	return &cred, nil
}

func (f *fakeAdminConfigStore) Put(cred *models.AdminCredential) error {
	if f.err != nil {
		return f.err
	}
	c := *cred
	f.cred = &c
	return nil
}

// Test data helpers.

func testGuard(name, username string) *models.Guard {
	return &models.Guard{
		ID:        uuid.New(),
		Name:      name,
		Username:  username,
		Active:    true,
		CreatedAt: time.Now(),
	}
}

func approvedSchedule(guard *models.Guard, month, year int, shifts models.ShiftMap) *models.Schedule {
	now := time.Now()
	return &models.Schedule{
		ID:          models.ScheduleID(guard.ID, year, month),
		GuardID:     guard.ID,
		GuardName:   guard.Name,
		Month:       month,
		Year:        year,
		Shifts:      shifts,
		Status:      models.ScheduleStatusApproved,
		SubmittedAt: now,
		ApprovedAt:  models.Time(now),
		ApprovedBy:  models.String("admin"),
	}
}

func pendingSchedule(guard *models.Guard, month, year int, shifts models.ShiftMap, submittedAt time.Time) *models.Schedule {
	return &models.Schedule{
		ID:          models.ScheduleID(guard.ID, year, month),
		GuardID:     guard.ID,
		GuardName:   guard.Name,
		Month:       month,
		Year:        year,
		Shifts:      shifts,
		Status:      models.ScheduleStatusPending,
		SubmittedAt: submittedAt,
	}
}

func shiftMap(pairs ...interface{}) models.ShiftMap {
	out := models.ShiftMap{}
	for i := 0; i < len(pairs); i += 2 {
		out[roster.DateKey(pairs[i].(string))] = pairs[i+1].(roster.ShiftID)
	}
	return out
}
