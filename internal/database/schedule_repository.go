package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vigilancia/guard-roster-backend/internal/models"
)

// ScheduleRepository handles the schedules record collection, keyed by the
// deterministic composite id schedule_<guardId>_<year>_<month>.
//
// No query pushdown beyond the key: month/status filtering happens in the
// services after GetAll, matching the record store contract. Writes are
// last-write-wins at whole-record granularity.
type ScheduleRepository struct {
	db DB
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(db DB) *ScheduleRepository {
	return &ScheduleRepository{
		db: db,
	}
}

const scheduleColumns = `id, guard_id, guard_name, month, year, shifts, status, submitted_at, approved_at, approved_by`

// Get fetches a schedule by its deterministic id.
func (r *ScheduleRepository) Get(id string) (*models.Schedule, error) {
	var schedule models.Schedule
	query := fmt.Sprintf(`SELECT %s FROM schedules WHERE id = $1`, scheduleColumns)

	err := r.db.Get(&schedule, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("schedule %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}

	return &schedule, nil
}

// GetAll returns every schedule record.
func (r *ScheduleRepository) GetAll() ([]models.Schedule, error) {
	var schedules []models.Schedule
	query := fmt.Sprintf(`SELECT %s FROM schedules ORDER BY year, month, submitted_at`, scheduleColumns)

	if err := r.db.Select(&schedules, query); err != nil {
		return nil, fmt.Errorf("failed to fetch schedules: %w", err)
	}

	return schedules, nil
}

// Put upserts a schedule at its deterministic key. Re-submission replaces
// prior content rather than duplicating.
func (r *ScheduleRepository) Put(schedule *models.Schedule) error {
	query := `
		INSERT INTO schedules (id, guard_id, guard_name, month, year, shifts, status, submitted_at, approved_at, approved_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			guard_name = EXCLUDED.guard_name,
			shifts = EXCLUDED.shifts,
			status = EXCLUDED.status,
			submitted_at = EXCLUDED.submitted_at,
			approved_at = EXCLUDED.approved_at,
			approved_by = EXCLUDED.approved_by
	`

	_, err := r.db.Exec(
		query,
		schedule.ID,
		schedule.GuardID,
		schedule.GuardName,
		schedule.Month,
		schedule.Year,
		schedule.Shifts,
		schedule.Status,
		schedule.SubmittedAt,
		schedule.ApprovedAt,
		schedule.ApprovedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert schedule: %w", err)
	}

	return nil
}

// Delete removes a schedule record by id.
func (r *ScheduleRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("schedule %s: %w", id, ErrNotFound)
	}

	return nil
}

// DeleteByGuard removes all schedules belonging to a guard. Used by the
// cascading guard delete.
func (r *ScheduleRepository) DeleteByGuard(guardID uuid.UUID) error {
	if _, err := r.db.Exec(`DELETE FROM schedules WHERE guard_id = $1`, guardID); err != nil {
		return fmt.Errorf("failed to delete schedules for guard %s: %w", guardID, err)
	}
	return nil
}
