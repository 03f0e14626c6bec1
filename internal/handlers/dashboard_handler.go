package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vigilancia/guard-roster-backend/internal/middleware"
	"github.com/vigilancia/guard-roster-backend/internal/services"
	"github.com/vigilancia/guard-roster-backend/pkg/jwt"
)

// DashboardHandler serves role-dependent landing stats
type DashboardHandler struct {
	guardService    *services.GuardService
	scheduleService *services.ScheduleService
	absenceService  *services.AbsenceService
	logger          *logrus.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(guardService *services.GuardService, scheduleService *services.ScheduleService, absenceService *services.AbsenceService, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{
		guardService:    guardService,
		scheduleService: scheduleService,
		absenceService:  absenceService,
		logger:          logger,
	}
}

// Stats returns the dashboard counters for the caller's role. Admins see
// roster-wide numbers; guards see their own shift totals.
func (h *DashboardHandler) Stats(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if userCtx.Role == jwt.RoleAdmin {
		h.adminStats(c)
		return
	}
	h.guardStats(c, userCtx.UserID)
}

func (h *DashboardHandler) adminStats(c *gin.Context) {
	activeGuards, err := h.guardService.CountActive()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	pending, err := h.scheduleService.ListPending()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	openCoverages, err := h.absenceService.CountOpen()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"role":              "admin",
		"active_guards":     activeGuards,
		"pending_schedules": len(pending),
		"open_coverages":    openCoverages,
	})
}

func (h *DashboardHandler) guardStats(c *gin.Context, userID string) {
	guardID, err := uuid.Parse(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guard ID"})
		return
	}

	schedules, err := h.scheduleService.ListByGuard(guardID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	now := time.Now()
	month := int(now.Month()) - 1 // 0-indexed
	year := now.Year()

	shiftsThisMonth := 0
	totalApproved := 0
	for i := range schedules {
		schedule := &schedules[i]
		if !schedule.IsApproved() {
			continue
		}
		totalApproved += len(schedule.Shifts)
		if schedule.Month == month && schedule.Year == year {
			shiftsThisMonth = len(schedule.Shifts)
		}
	}

	openCoverages, err := h.absenceService.ListOpen(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"role":                  "guard",
		"shifts_this_month":     shiftsThisMonth,
		"total_approved_shifts": totalApproved,
		"open_coverages":        len(openCoverages),
	})
}
