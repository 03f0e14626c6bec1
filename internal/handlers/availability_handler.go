package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/vigilancia/guard-roster-backend/internal/middleware"
	"github.com/vigilancia/guard-roster-backend/internal/services"
)

// AvailabilityHandler serves the slot fill-count view guards use when
// composing a schedule
type AvailabilityHandler struct {
	availabilityService *services.AvailabilityService
	logger              *logrus.Logger
}

// NewAvailabilityHandler creates a new availability handler
func NewAvailabilityHandler(availabilityService *services.AvailabilityService, logger *logrus.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityService: availabilityService,
		logger:              logger,
	}
}

// GetMonth returns the fill counts for every slot of a month plus the
// calling guard's own schedule, so the client can mark full slots held by
// others as unavailable while keeping the guard's own selections editable.
func (h *AvailabilityHandler) GetMonth(c *gin.Context) {
	year, month, ok := parseYearMonth(c)
	if !ok {
		return
	}

	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	availability, err := h.availabilityService.MonthAvailabilityFor(userCtx.UserID, month, year)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, availability)
}
