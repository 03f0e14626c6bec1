package services

import (
	"github.com/google/uuid"
	"github.com/vigilancia/guard-roster-backend/internal/models"
)

// The services depend on these narrow store interfaces rather than the
// concrete sqlx repositories, so the core logic never touches a shared
// mutable cache and tests run against in-memory fakes. All implementations
// are last-write-wins at whole-record granularity: reads and writes of a
// single record are not atomic across the pair.

// GuardStore is the guards record collection.
type GuardStore interface {
	Add(guard *models.Guard) error
	Get(id uuid.UUID) (*models.Guard, error)
	GetByUsername(username string) (*models.Guard, error)
	GetAll() ([]models.Guard, error)
	Put(guard *models.Guard) error
	Delete(id uuid.UUID) error
}

// ScheduleStore is the schedules record collection.
type ScheduleStore interface {
	Get(id string) (*models.Schedule, error)
	GetAll() ([]models.Schedule, error)
	Put(schedule *models.Schedule) error
	Delete(id string) error
	DeleteByGuard(guardID uuid.UUID) error
}

// AbsenceStore is the absences record collection.
type AbsenceStore interface {
	Add(absence *models.Absence) error
	Get(id string) (*models.Absence, error)
	GetAll() ([]models.Absence, error)
	Put(absence *models.Absence) error
	Delete(id string) error
	DeleteByGuard(guardID uuid.UUID) error
}

// AdminConfigStore holds the single admin credential record.
type AdminConfigStore interface {
	Get() (*models.AdminCredential, error)
	Put(cred *models.AdminCredential) error
}
