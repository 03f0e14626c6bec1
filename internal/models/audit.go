package models

import "time"

// AuditLog records a security-relevant event (logins, admin mutations).
type AuditLog struct {
	ID         int64      `json:"id" db:"id"`
	ActorID    NullString `json:"actor_id,omitempty" db:"actor_id"` // nil for failed pre-auth events
	Action     string     `json:"action" db:"action"`
	EntityType NullString `json:"entity_type,omitempty" db:"entity_type"`
	EntityID   NullString `json:"entity_id,omitempty" db:"entity_id"`
	IPAddress  NullString `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  NullString `json:"user_agent,omitempty" db:"user_agent"`
	Details    NullString `json:"details,omitempty" db:"details"` // JSONB payload
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
