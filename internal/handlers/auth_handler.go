package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vigilancia/guard-roster-backend/internal/middleware"
	"github.com/vigilancia/guard-roster-backend/internal/models"
	"github.com/vigilancia/guard-roster-backend/internal/services"
	"github.com/vigilancia/guard-roster-backend/pkg/jwt"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService  *services.AuthService
	guardService *services.GuardService
	auditService *services.AuditService
	logger       *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, guardService *services.GuardService, auditService *services.AuditService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		guardService: guardService,
		auditService: auditService,
		logger:       logger,
	}
}

// Login authenticates the admin credential or a guard and returns a token
// pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	result, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		h.logger.WithFields(logrus.Fields{
			"username": req.Username,
			"error":    err.Error(),
		}).Warn("Login failed")
		if logErr := h.auditService.LogLogin("", req.Username, c.ClientIP(), c.Request.UserAgent(), false, err.Error()); logErr != nil {
			logAuditError("LogLogin", logErr)
		}
		respondServiceError(c, err)
		return
	}

	if logErr := h.auditService.LogLogin(result.UserID, result.Username, c.ClientIP(), c.Request.UserAgent(), true, ""); logErr != nil {
		logAuditError("LogLogin", logErr)
	}

	c.JSON(http.StatusOK, result)
}

// Refresh exchanges a refresh token for a new token pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	result, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		h.logger.WithError(err).Warn("Token refresh failed")
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ChangePassword lets an authenticated guard replace their generated
// password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if userCtx.Role != jwt.RoleGuard {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only guard passwords can be changed here"})
		return
	}

	guardID, err := uuid.Parse(userCtx.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid guard ID"})
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.guardService.ChangePassword(guardID, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}

	if logErr := h.auditService.LogGuardEvent(services.AuditPasswordChanged, userCtx.UserID, userCtx.UserID, c.ClientIP(), c.Request.UserAgent(), nil); logErr != nil {
		logAuditError("LogGuardEvent", logErr)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
