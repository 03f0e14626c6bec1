package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vigilancia/guard-roster-backend/internal/roster"
)

func TestMonthlySchedule(t *testing.T) {
	schedules := newFakeScheduleStore()
	absences := newFakeAbsenceStore()
	svc := NewOverviewService(schedules, absences, newTestLogger())

	ana := testGuard("Ana Pérez", "apérez")
	luis := testGuard("Luis Gómez", "lgómez")

	anaSchedule := approvedSchedule(ana, 5, 2025, shiftMap(
		"2025-06-03", roster.Shift1,
		"2025-06-10", roster.Shift2,
	))
	luisSchedule := pendingSchedule(luis, 5, 2025, shiftMap("2025-06-04", roster.Shift3), time.Now())
	require.NoError(t, schedules.Put(anaSchedule))
	require.NoError(t, schedules.Put(luisSchedule))

	absenceSvc := NewAbsenceService(absences, schedules, newTestLogger())
	absence, err := absenceSvc.ReportAbsence(anaSchedule.ID, "2025-06-03", "shift1", "sick", ana.ID.String())
	require.NoError(t, err)

	overview, err := svc.MonthlySchedule(5, 2025)
	require.NoError(t, err)

	assert.Equal(t, 5, overview.Month)
	assert.Len(t, overview.Slots, 30)

	t.Run("Every slot present, unassigned are nil", func(t *testing.T) {
		day := overview.Slots[roster.DateKey("2025-06-01")]
		require.Len(t, day, roster.ShiftsPerDay)
		for _, shift := range roster.AllShifts {
			assert.Nil(t, day[shift])
		}
	})

	t.Run("Approved assignment with absence flag", func(t *testing.T) {
		assignment := overview.Slots[roster.DateKey("2025-06-03")][roster.Shift1]
		require.NotNil(t, assignment)
		assert.Equal(t, "Ana Pérez", assignment.GuardName)
		assert.Equal(t, "approved", assignment.Status)
		assert.True(t, assignment.Absent)
		assert.Equal(t, absence.ID, assignment.AbsenceID)

		// Same guard, different slot, not absent.
		other := overview.Slots[roster.DateKey("2025-06-10")][roster.Shift2]
		require.NotNil(t, other)
		assert.False(t, other.Absent)
	})

	t.Run("Pending schedules included", func(t *testing.T) {
		assignment := overview.Slots[roster.DateKey("2025-06-04")][roster.Shift3]
		require.NotNil(t, assignment)
		assert.Equal(t, "Luis Gómez", assignment.GuardName)
		assert.Equal(t, "pending", assignment.Status)
	})

	t.Run("Invalid month", func(t *testing.T) {
		_, err := svc.MonthlySchedule(-1, 2025)
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})
}
