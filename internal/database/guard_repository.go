package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vigilancia/guard-roster-backend/internal/models"
)

// GuardRepository handles the guards record collection, keyed by id.
//
// All writes are last-write-wins at whole-record granularity; there is no
// optimistic concurrency control (accepted limitation of the deployment).
type GuardRepository struct {
	db DB
}

// NewGuardRepository creates a new guard repository
func NewGuardRepository(db DB) *GuardRepository {
	return &GuardRepository{
		db: db,
	}
}

const guardColumns = `id, name, username, password_hash, phone, email, active, created_at`

// Add inserts a new guard. The id must not already exist.
func (r *GuardRepository) Add(guard *models.Guard) error {
	query := `
		INSERT INTO guards (id, name, username, password_hash, phone, email, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(
		query,
		guard.ID,
		guard.Name,
		guard.Username,
		guard.PasswordHash,
		guard.Phone,
		guard.Email,
		guard.Active,
		guard.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create guard: %w", err)
	}

	return nil
}

// Get fetches a guard by id.
func (r *GuardRepository) Get(id uuid.UUID) (*models.Guard, error) {
	var guard models.Guard
	query := fmt.Sprintf(`SELECT %s FROM guards WHERE id = $1`, guardColumns)

	err := r.db.Get(&guard, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("guard %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch guard: %w", err)
	}

	return &guard, nil
}

// GetByUsername fetches a guard by their login username.
func (r *GuardRepository) GetByUsername(username string) (*models.Guard, error) {
	var guard models.Guard
	query := fmt.Sprintf(`SELECT %s FROM guards WHERE username = $1`, guardColumns)

	err := r.db.Get(&guard, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("guard %q: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch guard: %w", err)
	}

	return &guard, nil
}

// GetAll returns every guard record.
func (r *GuardRepository) GetAll() ([]models.Guard, error) {
	var guards []models.Guard
	query := fmt.Sprintf(`SELECT %s FROM guards ORDER BY created_at`, guardColumns)

	if err := r.db.Select(&guards, query); err != nil {
		return nil, fmt.Errorf("failed to fetch guards: %w", err)
	}

	return guards, nil
}

// Put upserts a guard record.
func (r *GuardRepository) Put(guard *models.Guard) error {
	query := `
		INSERT INTO guards (id, name, username, password_hash, phone, email, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			username = EXCLUDED.username,
			password_hash = EXCLUDED.password_hash,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			active = EXCLUDED.active
	`

	_, err := r.db.Exec(
		query,
		guard.ID,
		guard.Name,
		guard.Username,
		guard.PasswordHash,
		guard.Phone,
		guard.Email,
		guard.Active,
		guard.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert guard: %w", err)
	}

	return nil
}

// Delete removes a guard record by id.
func (r *GuardRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM guards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete guard: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("guard %s: %w", id, ErrNotFound)
	}

	return nil
}
