package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vigilancia/guard-roster-backend/internal/middleware"
	"github.com/vigilancia/guard-roster-backend/internal/models"
	"github.com/vigilancia/guard-roster-backend/internal/services"
)

// AbsenceHandler handles absence and coverage HTTP requests
type AbsenceHandler struct {
	absenceService *services.AbsenceService
	guardService   *services.GuardService
	auditService   *services.AuditService
	logger         *logrus.Logger
}

// NewAbsenceHandler creates a new absence handler
func NewAbsenceHandler(absenceService *services.AbsenceService, guardService *services.GuardService, auditService *services.AuditService, logger *logrus.Logger) *AbsenceHandler {
	return &AbsenceHandler{
		absenceService: absenceService,
		guardService:   guardService,
		auditService:   auditService,
		logger:         logger,
	}
}

// Report records an absence against an approved slot and opens a coverage
// request.
func (h *AbsenceHandler) Report(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.ReportAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	absence, err := h.absenceService.ReportAbsence(req.ScheduleID, req.DateKey, req.Shift, req.Reason, userCtx.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if logErr := h.auditService.LogAbsenceEvent(services.AuditAbsenceReported, userCtx.UserID, absence.ID, c.ClientIP(), c.Request.UserAgent(), map[string]interface{}{
		"schedule_id": absence.ScheduleID,
		"date_key":    absence.DateKey,
		"shift":       absence.Shift,
	}); logErr != nil {
		logAuditError("LogAbsenceEvent", logErr)
	}

	c.JSON(http.StatusCreated, absence)
}

// ListOpen returns open coverage requests, excluding the caller's own
// absences.
func (h *AbsenceHandler) ListOpen(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	open, err := h.absenceService.ListOpen(userCtx.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"absences": open, "count": len(open)})
}

// Cover lets the calling guard take over an open coverage request.
func (h *AbsenceHandler) Cover(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	guardID, err := uuid.Parse(userCtx.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guard ID"})
		return
	}

	claimer, err := h.guardService.Get(guardID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	absence, err := h.absenceService.AcceptCoverage(c.Param("id"), claimer)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if logErr := h.auditService.LogAbsenceEvent(services.AuditCoverageAccepted, userCtx.UserID, absence.ID, c.ClientIP(), c.Request.UserAgent(), map[string]interface{}{
		"date_key": absence.DateKey,
		"shift":    absence.Shift,
	}); logErr != nil {
		logAuditError("LogAbsenceEvent", logErr)
	}

	c.JSON(http.StatusOK, absence)
}
