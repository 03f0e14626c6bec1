package models

import "time"

// AdminConfigKey is the config collection key holding the single admin
// credential record.
const AdminConfigKey = "admin"

// AdminCredential is the administrator login record, stored in the config
// collection under AdminConfigKey.
type AdminCredential struct {
	Key          string    `json:"key" db:"key"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never expose
	Name         string    `json:"name" db:"name"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// LoginRequest is the shared admin/guard login payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new access token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
