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

// GuardHandler handles guard management HTTP requests (admin only)
type GuardHandler struct {
	guardService *services.GuardService
	auditService *services.AuditService
	logger       *logrus.Logger
}

// NewGuardHandler creates a new guard handler
func NewGuardHandler(guardService *services.GuardService, auditService *services.AuditService, logger *logrus.Logger) *GuardHandler {
	return &GuardHandler{
		guardService: guardService,
		auditService: auditService,
		logger:       logger,
	}
}

// Register creates a guard account. The response carries the generated
// one-time password; it is never retrievable again.
func (h *GuardHandler) Register(c *gin.Context) {
	var req models.RegisterGuardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	registered, err := h.guardService.Register(&req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	userCtx, _ := middleware.GetUserContext(c)
	if logErr := h.auditService.LogGuardEvent(services.AuditGuardRegistered, userCtx.UserID, registered.Guard.ID.String(), c.ClientIP(), c.Request.UserAgent(), map[string]interface{}{
		"username": registered.Username,
	}); logErr != nil {
		logAuditError("LogGuardEvent", logErr)
	}

	c.JSON(http.StatusCreated, registered)
}

// List returns all guards.
func (h *GuardHandler) List(c *gin.Context) {
	guards, err := h.guardService.List()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"guards": guards, "count": len(guards)})
}

// UpdateStatus activates or deactivates a guard.
func (h *GuardHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guard ID"})
		return
	}

	var req models.UpdateGuardStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	guard, err := h.guardService.SetActive(id, *req.Active)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	userCtx, _ := middleware.GetUserContext(c)
	if logErr := h.auditService.LogGuardEvent(services.AuditGuardStatusChanged, userCtx.UserID, id.String(), c.ClientIP(), c.Request.UserAgent(), map[string]interface{}{
		"active": *req.Active,
	}); logErr != nil {
		logAuditError("LogGuardEvent", logErr)
	}

	c.JSON(http.StatusOK, guard)
}

// Delete removes a guard and all their schedules and absences.
func (h *GuardHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guard ID"})
		return
	}

	if err := h.guardService.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}

	userCtx, _ := middleware.GetUserContext(c)
	if logErr := h.auditService.LogGuardEvent(services.AuditGuardDeleted, userCtx.UserID, id.String(), c.ClientIP(), c.Request.UserAgent(), nil); logErr != nil {
		logAuditError("LogGuardEvent", logErr)
	}

	h.logger.WithField("guard_id", id).Info("Guard deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Guard deleted successfully"})
}
