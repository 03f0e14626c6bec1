package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vigilancia/guard-roster-backend/internal/models"
)

// AbsenceRepository handles the absences record collection, keyed by the
// generated absence_<timestamp>_<random> id. Absence.schedule_id is a
// non-owning reference; no foreign key is enforced.
type AbsenceRepository struct {
	db DB
}

// NewAbsenceRepository creates a new absence repository
func NewAbsenceRepository(db DB) *AbsenceRepository {
	return &AbsenceRepository{
		db: db,
	}
}

const absenceColumns = `id, schedule_id, guard_id, guard_name, month, year, date_key, shift, reason,
	reported_at, reported_by, coverage_status, covered_by, covered_by_name, covered_at`

// Add inserts a new absence. The id must not already exist.
func (r *AbsenceRepository) Add(absence *models.Absence) error {
	query := `
		INSERT INTO absences (id, schedule_id, guard_id, guard_name, month, year, date_key, shift, reason,
			reported_at, reported_by, coverage_status, covered_by, covered_by_name, covered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.Exec(
		query,
		absence.ID,
		absence.ScheduleID,
		absence.GuardID,
		absence.GuardName,
		absence.Month,
		absence.Year,
		absence.DateKey,
		absence.Shift,
		absence.Reason,
		absence.ReportedAt,
		absence.ReportedBy,
		absence.CoverageStatus,
		absence.CoveredBy,
		absence.CoveredByName,
		absence.CoveredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create absence: %w", err)
	}

	return nil
}

// Get fetches an absence by id.
func (r *AbsenceRepository) Get(id string) (*models.Absence, error) {
	var absence models.Absence
	query := fmt.Sprintf(`SELECT %s FROM absences WHERE id = $1`, absenceColumns)

	err := r.db.Get(&absence, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("absence %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch absence: %w", err)
	}

	return &absence, nil
}

// GetAll returns every absence record.
func (r *AbsenceRepository) GetAll() ([]models.Absence, error) {
	var absences []models.Absence
	query := fmt.Sprintf(`SELECT %s FROM absences ORDER BY reported_at DESC`, absenceColumns)

	if err := r.db.Select(&absences, query); err != nil {
		return nil, fmt.Errorf("failed to fetch absences: %w", err)
	}

	return absences, nil
}

// Put upserts an absence record.
func (r *AbsenceRepository) Put(absence *models.Absence) error {
	query := `
		INSERT INTO absences (id, schedule_id, guard_id, guard_name, month, year, date_key, shift, reason,
			reported_at, reported_by, coverage_status, covered_by, covered_by_name, covered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			coverage_status = EXCLUDED.coverage_status,
			covered_by = EXCLUDED.covered_by,
			covered_by_name = EXCLUDED.covered_by_name,
			covered_at = EXCLUDED.covered_at,
			reason = EXCLUDED.reason
	`

	_, err := r.db.Exec(
		query,
		absence.ID,
		absence.ScheduleID,
		absence.GuardID,
		absence.GuardName,
		absence.Month,
		absence.Year,
		absence.DateKey,
		absence.Shift,
		absence.Reason,
		absence.ReportedAt,
		absence.ReportedBy,
		absence.CoverageStatus,
		absence.CoveredBy,
		absence.CoveredByName,
		absence.CoveredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert absence: %w", err)
	}

	return nil
}

// Delete removes an absence record by id.
func (r *AbsenceRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM absences WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete absence: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("absence %s: %w", id, ErrNotFound)
	}

	return nil
}

// DeleteByGuard removes all absences reported against a guard. Used by the
// cascading guard delete.
func (r *AbsenceRepository) DeleteByGuard(guardID uuid.UUID) error {
	if _, err := r.db.Exec(`DELETE FROM absences WHERE guard_id = $1`, guardID); err != nil {
		return fmt.Errorf("failed to delete absences for guard %s: %w", guardID, err)
	}
	return nil
}
