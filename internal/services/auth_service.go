package services

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/vigilancia/guard-roster-backend/internal/database"
	"github.com/vigilancia/guard-roster-backend/internal/models"
	"github.com/vigilancia/guard-roster-backend/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned for any username/password mismatch.
	// The same error covers unknown usernames so login probing cannot tell
	// the two apart.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrGuardInactive is returned when a deactivated guard tries to log in.
	ErrGuardInactive = errors.New("account is deactivated")
)

// LoginResult carries the token pair and the authenticated identity.
type LoginResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	Role         string `json:"role"`
}

// AuthService authenticates the admin credential and guards and issues
// token pairs.
type AuthService struct {
	guards     GuardStore
	adminCreds AdminConfigStore
	jwtService *jwt.Service
	logger     *logrus.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(guards GuardStore, adminCreds AdminConfigStore, jwtService *jwt.Service, logger *logrus.Logger) *AuthService {
	return &AuthService{
		guards:     guards,
		adminCreds: adminCreds,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login checks the admin credential first, then the guard roster. Inactive
// guards are rejected even with a correct password.
func (s *AuthService) Login(username, password string) (*LoginResult, error) {
	admin, err := s.adminCreds.Get()
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, &StoreError{Op: "login", Err: err}
	}

	if admin != nil && admin.Username == username {
		if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
			return nil, ErrInvalidCredentials
		}
		return s.issueTokens(models.AdminConfigKey, admin.Username, admin.Name, jwt.RoleAdmin)
	}

	guard, err := s.guards.GetByUsername(username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, &StoreError{Op: "login", Err: err}
	}

	if bcrypt.CompareHashAndPassword([]byte(guard.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !guard.Active {
		return nil, ErrGuardInactive
	}

	return s.issueTokens(guard.ID.String(), guard.Username, guard.Name, jwt.RoleGuard)
}

// Refresh exchanges a valid refresh token for a fresh token pair. Guard
// tokens are re-checked against the roster so deactivated or deleted guards
// cannot keep a session alive.
func (s *AuthService) Refresh(refreshToken string) (*LoginResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if claims.Role == jwt.RoleAdmin {
		admin, err := s.adminCreds.Get()
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil, ErrInvalidCredentials
			}
			return nil, &StoreError{Op: "refresh", Err: err}
		}
		if admin.Username != claims.Username {
			return nil, ErrInvalidCredentials
		}
		return s.issueTokens(models.AdminConfigKey, admin.Username, admin.Name, jwt.RoleAdmin)
	}

	guard, err := s.guards.GetByUsername(claims.Username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, &StoreError{Op: "refresh", Err: err}
	}
	if !guard.Active {
		return nil, ErrGuardInactive
	}

	return s.issueTokens(guard.ID.String(), guard.Username, guard.Name, jwt.RoleGuard)
}

func (s *AuthService) issueTokens(userID, username, name, role string) (*LoginResult, error) {
	access, err := s.jwtService.GenerateAccessToken(userID, username, name, role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtService.GenerateRefreshToken(userID, username, role)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"role":    role,
	}).Info("Tokens issued")

	return &LoginResult{
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       userID,
		Username:     username,
		Name:         name,
		Role:         role,
	}, nil
}
