package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vigilancia/guard-roster-backend/internal/models"
	"github.com/vigilancia/guard-roster-backend/internal/roster"
)

func newAbsenceFixture(t *testing.T) (*AbsenceService, *fakeAbsenceStore, *fakeScheduleStore) {
	t.Helper()
	absences := newFakeAbsenceStore()
	schedules := newFakeScheduleStore()
	svc := NewAbsenceService(absences, schedules, newTestLogger())
	return svc, absences, schedules
}

func TestReportAbsence(t *testing.T) {
	svc, absences, schedules := newAbsenceFixture(t)

	ana := testGuard("Ana Pérez", "apérez")
	schedule := approvedSchedule(ana, 5, 2025, shiftMap(
		"2025-06-03", roster.Shift1,
		"2025-06-10", roster.Shift1,
	))
	require.NoError(t, schedules.Put(schedule))

	t.Run("Opens a coverage request", func(t *testing.T) {
		absence, err := svc.ReportAbsence(schedule.ID, "2025-06-03", "shift1", "medical appointment", ana.ID.String())
		require.NoError(t, err)

		assert.Equal(t, models.CoverageStatusOpen, absence.CoverageStatus)
		assert.Equal(t, ana.ID, absence.GuardID)
		assert.Equal(t, roster.DateKey("2025-06-03"), absence.DateKey)
		assert.Equal(t, roster.Shift1, absence.Shift)
		assert.Equal(t, 5, absence.Month)
		assert.True(t, absence.IsOpen())

		stored, err := absences.Get(absence.ID)
		require.NoError(t, err)
		assert.Equal(t, absence.ID, stored.ID)

		// The slot stays in the schedule; absence and assignment coexist.
		after, err := schedules.Get(schedule.ID)
		require.NoError(t, err)
		assert.Equal(t, roster.Shift1, after.Shifts["2025-06-03"])
	})

	t.Run("Requires a reason", func(t *testing.T) {
		_, err := svc.ReportAbsence(schedule.ID, "2025-06-10", "shift1", "   ", ana.ID.String())
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("Rejects slots the schedule does not hold", func(t *testing.T) {
		_, err := svc.ReportAbsence(schedule.ID, "2025-06-10", "shift2", "sick", ana.ID.String())
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("Rejects reports against another guard's schedule", func(t *testing.T) {
		carla := testGuard("Carla Ruiz", "cruiz")
		_, err := svc.ReportAbsence(schedule.ID, "2025-06-10", "shift1", "sick", carla.ID.String())
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("Admin can report on a guard's behalf", func(t *testing.T) {
		absence, err := svc.ReportAbsence(schedule.ID, "2025-06-10", "shift1", "called in by phone", models.AdminConfigKey)
		require.NoError(t, err)
		assert.Equal(t, ana.ID, absence.GuardID)
		assert.Equal(t, models.AdminConfigKey, absence.ReportedBy)
	})

	t.Run("Rejects pending schedules", func(t *testing.T) {
		luis := testGuard("Luis Gómez", "lgómez")
		pending := pendingSchedule(luis, 5, 2025, shiftMap("2025-06-04", roster.Shift2), time.Now())
		require.NoError(t, schedules.Put(pending))

		_, err := svc.ReportAbsence(pending.ID, "2025-06-04", "shift2", "sick", luis.ID.String())
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("Unknown schedule", func(t *testing.T) {
		_, err := svc.ReportAbsence("schedule_missing", "2025-06-03", "shift1", "sick", ana.ID.String())
		var notFoundErr *NotFoundError
		assert.ErrorAs(t, err, &notFoundErr)
	})
}

func TestAcceptCoverage(t *testing.T) {
	newCoverageFixture := func(t *testing.T) (*AbsenceService, *fakeScheduleStore, *models.Guard, *models.Absence) {
		svc, _, schedules := newAbsenceFixture(t)

		ana := testGuard("Ana Pérez", "apérez")
		schedule := approvedSchedule(ana, 5, 2025, shiftMap("2025-06-03", roster.Shift1))
		require.NoError(t, schedules.Put(schedule))

		absence, err := svc.ReportAbsence(schedule.ID, "2025-06-03", "shift1", "sick", ana.ID.String())
		require.NoError(t, err)
		return svc, schedules, ana, absence
	}

	t.Run("Creates pre-approved schedule for claimer without one", func(t *testing.T) {
		svc, schedules, _, absence := newCoverageFixture(t)
		luis := testGuard("Luis Gómez", "lgómez")

		covered, err := svc.AcceptCoverage(absence.ID, luis)
		require.NoError(t, err)

		assert.Equal(t, models.CoverageStatusCovered, covered.CoverageStatus)
		assert.Equal(t, luis.ID.String(), covered.CoveredBy.String)
		assert.Equal(t, "Luis Gómez", covered.CoveredByName.String)
		assert.True(t, covered.CoveredAt.Valid)

		cover, err := schedules.Get(models.ScheduleID(luis.ID, 2025, 5))
		require.NoError(t, err)
		assert.Equal(t, models.ScheduleStatusApproved, cover.Status)
		assert.Equal(t, models.ApprovedBySystem, cover.ApprovedBy.String)
		assert.Equal(t, roster.Shift1, cover.Shifts["2025-06-03"])
	})

	t.Run("Merges slot into claimer's existing schedule", func(t *testing.T) {
		svc, schedules, _, absence := newCoverageFixture(t)
		luis := testGuard("Luis Gómez", "lgómez")
		existing := approvedSchedule(luis, 5, 2025, shiftMap("2025-06-10", roster.Shift2))
		require.NoError(t, schedules.Put(existing))

		_, err := svc.AcceptCoverage(absence.ID, luis)
		require.NoError(t, err)

		cover, err := schedules.Get(existing.ID)
		require.NoError(t, err)
		assert.Len(t, cover.Shifts, 2)
		assert.Equal(t, roster.Shift1, cover.Shifts["2025-06-03"])
		assert.Equal(t, roster.Shift2, cover.Shifts["2025-06-10"])
	})

	t.Run("Refuses second claimer", func(t *testing.T) {
		svc, _, _, absence := newCoverageFixture(t)
		luis := testGuard("Luis Gómez", "lgómez")
		carla := testGuard("Carla Ruiz", "cruiz")

		_, err := svc.AcceptCoverage(absence.ID, luis)
		require.NoError(t, err)

		_, err = svc.AcceptCoverage(absence.ID, carla)
		var conflictErr *ConflictError
		require.ErrorAs(t, err, &conflictErr)
		assert.Contains(t, conflictErr.Message, "Luis Gómez")
	})

	t.Run("Refuses covering own absence", func(t *testing.T) {
		svc, _, ana, absence := newCoverageFixture(t)

		_, err := svc.AcceptCoverage(absence.ID, ana)
		var conflictErr *ConflictError
		assert.ErrorAs(t, err, &conflictErr)
	})

	t.Run("Refuses claimer already working that date", func(t *testing.T) {
		svc, schedules, _, absence := newCoverageFixture(t)
		luis := testGuard("Luis Gómez", "lgómez")
		require.NoError(t, schedules.Put(approvedSchedule(luis, 5, 2025, shiftMap(
			"2025-06-03", roster.Shift3,
		))))

		_, err := svc.AcceptCoverage(absence.ID, luis)
		var conflictErr *ConflictError
		assert.ErrorAs(t, err, &conflictErr)
	})

	t.Run("Unknown absence", func(t *testing.T) {
		svc, _, _ := newAbsenceFixture(t)
		luis := testGuard("Luis Gómez", "lgómez")

		_, err := svc.AcceptCoverage("absence_missing", luis)
		var notFoundErr *NotFoundError
		assert.ErrorAs(t, err, &notFoundErr)
	})
}

func TestListOpen(t *testing.T) {
	svc, _, schedules := newAbsenceFixture(t)

	base := time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)
	clock := base
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	ana := testGuard("Ana Pérez", "apérez")
	luis := testGuard("Luis Gómez", "lgómez")
	anaSchedule := approvedSchedule(ana, 5, 2025, shiftMap(
		"2025-06-03", roster.Shift1,
		"2025-06-10", roster.Shift1,
	))
	luisSchedule := approvedSchedule(luis, 5, 2025, shiftMap("2025-06-04", roster.Shift2))
	require.NoError(t, schedules.Put(anaSchedule))
	require.NoError(t, schedules.Put(luisSchedule))

	first, err := svc.ReportAbsence(anaSchedule.ID, "2025-06-03", "shift1", "sick", ana.ID.String())
	require.NoError(t, err)
	second, err := svc.ReportAbsence(anaSchedule.ID, "2025-06-10", "shift1", "travel", ana.ID.String())
	require.NoError(t, err)
	_, err = svc.ReportAbsence(luisSchedule.ID, "2025-06-04", "shift2", "sick", luis.ID.String())
	require.NoError(t, err)

	t.Run("Excludes own absences, newest first", func(t *testing.T) {
		open, err := svc.ListOpen(luis.ID.String())
		require.NoError(t, err)

		require.Len(t, open, 2)
		assert.Equal(t, second.ID, open[0].ID)
		assert.Equal(t, first.ID, open[1].ID)
	})

	t.Run("Covered absences drop off the list", func(t *testing.T) {
		_, err := svc.AcceptCoverage(first.ID, luis)
		require.NoError(t, err)

		open, err := svc.ListOpen(luis.ID.String())
		require.NoError(t, err)
		require.Len(t, open, 1)
		assert.Equal(t, second.ID, open[0].ID)

		count, err := svc.CountOpen()
		require.NoError(t, err)
		assert.Equal(t, 2, count) // luis's own absence still open
	})
}
