package services

import (
	"encoding/json"
	"fmt"

	"github.com/vigilancia/guard-roster-backend/internal/database"
	"github.com/vigilancia/guard-roster-backend/internal/utils"
)

// Audit actions recorded for scheduling and account events.
const (
	AuditLoginSuccess       = "login_success"
	AuditLoginFailed        = "login_failed"
	AuditGuardRegistered    = "guard_registered"
	AuditGuardStatusChanged = "guard_status_changed"
	AuditGuardDeleted       = "guard_deleted"
	AuditPasswordChanged    = "password_changed"
	AuditScheduleSubmitted  = "schedule_submitted"
	AuditScheduleApproved   = "schedule_approved"
	AuditScheduleRejected   = "schedule_rejected"
	AuditMonthApproved      = "month_approved"
	AuditAbsenceReported    = "absence_reported"
	AuditCoverageAccepted   = "coverage_accepted"
)

// AuditService writes security and scheduling events to the audit_logs
// table. It is best-effort: callers log failures instead of failing the
// request.
type AuditService struct {
	db      database.DB
	enabled bool
}

// NewAuditService creates a new audit service
func NewAuditService(db database.DB, enabled bool) *AuditService {
	return &AuditService{
		db:      db,
		enabled: enabled,
	}
}

// AuditEvent represents an event to be logged
type AuditEvent struct {
	ActorID    string // Empty for pre-authentication events
	Action     string
	EntityType string
	EntityID   string
	IPAddress  string
	UserAgent  string
	Details    map[string]interface{}
}

// LogLogin records a login attempt, successful or not.
func (s *AuditService) LogLogin(actorID, username, ipAddress, userAgent string, success bool, reason string) error {
	details := map[string]interface{}{
		"username":    username,
		"success":     success,
		"device_info": utils.ParseUserAgent(userAgent),
	}
	if reason != "" {
		details["reason"] = reason
	}

	action := AuditLoginFailed
	if success {
		action = AuditLoginSuccess
	}

	return s.logEvent(AuditEvent{
		ActorID:    actorID,
		Action:     action,
		EntityType: "session",
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogGuardEvent records a guard lifecycle event (registration, status
// change, deletion, password change).
func (s *AuditService) LogGuardEvent(action, actorID, guardID, ipAddress, userAgent string, details map[string]interface{}) error {
	if details == nil {
		details = map[string]interface{}{}
	}
	details["device_info"] = utils.ParseUserAgent(userAgent)

	return s.logEvent(AuditEvent{
		ActorID:    actorID,
		Action:     action,
		EntityType: "guard",
		EntityID:   guardID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogScheduleEvent records a schedule lifecycle event.
func (s *AuditService) LogScheduleEvent(action, actorID, scheduleID, ipAddress, userAgent string, details map[string]interface{}) error {
	if details == nil {
		details = map[string]interface{}{}
	}
	details["device_info"] = utils.ParseUserAgent(userAgent)

	return s.logEvent(AuditEvent{
		ActorID:    actorID,
		Action:     action,
		EntityType: "schedule",
		EntityID:   scheduleID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// LogAbsenceEvent records an absence or coverage event.
func (s *AuditService) LogAbsenceEvent(action, actorID, absenceID, ipAddress, userAgent string, details map[string]interface{}) error {
	if details == nil {
		details = map[string]interface{}{}
	}
	details["device_info"] = utils.ParseUserAgent(userAgent)

	return s.logEvent(AuditEvent{
		ActorID:    actorID,
		Action:     action,
		EntityType: "absence",
		EntityID:   absenceID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Details:    details,
	})
}

// logEvent is the internal method that writes to the audit_logs table
func (s *AuditService) logEvent(event AuditEvent) error {
	if !s.enabled {
		return nil
	}

	detailsJSON, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	var actorID interface{}
	if event.ActorID != "" {
		actorID = event.ActorID
	}

	query := `
		INSERT INTO audit_logs (actor_id, action, entity_type, entity_id, ip_address, user_agent, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	_, err = s.db.Exec(
		query,
		actorID,
		event.Action,
		event.EntityType,
		event.EntityID,
		event.IPAddress,
		event.UserAgent,
		detailsJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}

	return nil
}
