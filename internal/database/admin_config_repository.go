package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/vigilancia/guard-roster-backend/internal/models"
)

// AdminConfigRepository handles the config record collection, keyed by a
// string key. The only record this system stores there is the admin
// credential under models.AdminConfigKey, split into a typed entity rather
// than a generic key-value row.
type AdminConfigRepository struct {
	db DB
}

// NewAdminConfigRepository creates a new admin config repository
func NewAdminConfigRepository(db DB) *AdminConfigRepository {
	return &AdminConfigRepository{
		db: db,
	}
}

// Get fetches the admin credential record.
func (r *AdminConfigRepository) Get() (*models.AdminCredential, error) {
	var cred models.AdminCredential
	query := `SELECT key, username, password_hash, name, updated_at FROM admin_config WHERE key = $1`

	err := r.db.Get(&cred, query, models.AdminConfigKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("admin credential: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch admin credential: %w", err)
	}

	return &cred, nil
}

// Put upserts the admin credential record.
func (r *AdminConfigRepository) Put(cred *models.AdminCredential) error {
	query := `
		INSERT INTO admin_config (key, username, password_hash, name, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO UPDATE SET
			username = EXCLUDED.username,
			password_hash = EXCLUDED.password_hash,
			name = EXCLUDED.name,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(
		query,
		cred.Key,
		cred.Username,
		cred.PasswordHash,
		cred.Name,
		cred.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert admin credential: %w", err)
	}

	return nil
}
