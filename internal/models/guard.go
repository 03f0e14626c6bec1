package models

import (
	"time"

	"github.com/google/uuid"
)

// Guard represents a registered worker who submits monthly availability.
type Guard struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Username     string     `json:"username" db:"username"`
	PasswordHash string     `json:"-" db:"password_hash"` // Never expose
	Phone        NullString `json:"phone,omitempty" db:"phone"`
	Email        NullString `json:"email,omitempty" db:"email"`
	Active       bool       `json:"active" db:"active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// RegisterGuardRequest is the admin request to register a new guard.
type RegisterGuardRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
	Email string `json:"email" binding:"omitempty,email"`
}

// RegisteredGuard carries the one-time plaintext credentials back to the
// admin. The password is never stored or returned again.
type RegisteredGuard struct {
	Guard    *Guard `json:"guard"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// UpdateGuardStatusRequest toggles a guard's active flag.
type UpdateGuardStatusRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// ChangePasswordRequest is a guard's request to change their own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}
