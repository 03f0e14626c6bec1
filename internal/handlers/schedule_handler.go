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

// ScheduleHandler handles schedule lifecycle HTTP requests
type ScheduleHandler struct {
	scheduleService *services.ScheduleService
	overviewService *services.OverviewService
	auditService    *services.AuditService
	logger          *logrus.Logger
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(scheduleService *services.ScheduleService, overviewService *services.OverviewService, auditService *services.AuditService, logger *logrus.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
		overviewService: overviewService,
		auditService:    auditService,
		logger:          logger,
	}
}

// Submit creates or replaces the calling guard's pending schedule for a
// month.
func (h *ScheduleHandler) Submit(c *gin.Context) {
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

	var req models.SubmitScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	schedule, err := h.scheduleService.Submit(guardID, req.Month, req.Year, req.Shifts)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if logErr := h.auditService.LogScheduleEvent(services.AuditScheduleSubmitted, userCtx.UserID, schedule.ID, c.ClientIP(), c.Request.UserAgent(), map[string]interface{}{
		"month": schedule.Month,
		"year":  schedule.Year,
		"slots": len(schedule.Shifts),
	}); logErr != nil {
		logAuditError("LogScheduleEvent", logErr)
	}

	c.JSON(http.StatusCreated, schedule)
}

// Mine lists the calling guard's schedules, newest month first.
func (h *ScheduleHandler) Mine(c *gin.Context) {
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

	schedules, err := h.scheduleService.ListByGuard(guardID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"schedules": schedules, "count": len(schedules)})
}

// Pending lists all pending schedules for admin review.
func (h *ScheduleHandler) Pending(c *gin.Context) {
	schedules, err := h.scheduleService.ListPending()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"schedules": schedules, "count": len(schedules)})
}

// Approve marks a pending schedule approved, refusing approvals that would
// double-book a slot already held by another approved schedule.
func (h *ScheduleHandler) Approve(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	schedule, err := h.scheduleService.Approve(c.Param("id"), userCtx.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if logErr := h.auditService.LogScheduleEvent(services.AuditScheduleApproved, userCtx.UserID, schedule.ID, c.ClientIP(), c.Request.UserAgent(), nil); logErr != nil {
		logAuditError("LogScheduleEvent", logErr)
	}

	c.JSON(http.StatusOK, schedule)
}

// Reject deletes a schedule outright; the guard may resubmit for the month.
func (h *ScheduleHandler) Reject(c *gin.Context) {
	scheduleID := c.Param("id")

	if err := h.scheduleService.Reject(scheduleID); err != nil {
		respondServiceError(c, err)
		return
	}

	userCtx, _ := middleware.GetUserContext(c)
	if logErr := h.auditService.LogScheduleEvent(services.AuditScheduleRejected, userCtx.UserID, scheduleID, c.ClientIP(), c.Request.UserAgent(), nil); logErr != nil {
		logAuditError("LogScheduleEvent", logErr)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Schedule rejected"})
}

// ApproveMonth bulk-approves every pending schedule of a month, oldest
// submission first. Schedules that would double-book a slot are skipped and
// reported, not failed.
func (h *ScheduleHandler) ApproveMonth(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	var req models.ApproveMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	result, err := h.scheduleService.ApproveAllPending(req.Month, req.Year, userCtx.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if logErr := h.auditService.LogScheduleEvent(services.AuditMonthApproved, userCtx.UserID, "", c.ClientIP(), c.Request.UserAgent(), map[string]interface{}{
		"month":    req.Month,
		"year":     req.Year,
		"approved": result.Approved,
		"skipped":  len(result.Skipped),
	}); logErr != nil {
		logAuditError("LogScheduleEvent", logErr)
	}

	c.JSON(http.StatusOK, result)
}

// Overview returns the admin per-slot view of a month, pending schedules
// and absence flags included.
func (h *ScheduleHandler) Overview(c *gin.Context) {
	year, month, ok := parseYearMonth(c)
	if !ok {
		return
	}

	overview, err := h.overviewService.MonthlySchedule(month, year)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}
