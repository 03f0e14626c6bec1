package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(
		"test-access-secret-key-123456789",
		"test-refresh-secret-key-123456789",
		time.Hour,
		24*time.Hour,
	)
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateAccessToken("user-1", "apérez", "Ana Pérez", RoleGuard)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "apérez", claims.Username)
	assert.Equal(t, "Ana Pérez", claims.Name)
	assert.Equal(t, RoleGuard, claims.Role)
	assert.Equal(t, AccessToken, claims.TokenType)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestGenerateAndValidateRefreshToken(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateRefreshToken("admin", "admin", RoleAdmin)
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, RefreshToken, claims.TokenType)
}

func TestTokenTypeMismatch(t *testing.T) {
	svc := newTestService()

	access, err := svc.GenerateAccessToken("user-1", "apérez", "Ana Pérez", RoleGuard)
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken("user-1", "apérez", RoleGuard)
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(access)
	assert.Error(t, err)
	_, err = svc.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestWrongSecret(t *testing.T) {
	svc := newTestService()
	other := NewService("other-access-secret", "other-refresh-secret", time.Hour, 24*time.Hour)

	token, err := svc.GenerateAccessToken("user-1", "apérez", "Ana Pérez", RoleGuard)
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	expired := NewService("test-access-secret", "test-refresh-secret", -time.Minute, -time.Minute)

	token, err := expired.GenerateAccessToken("user-1", "apérez", "Ana Pérez", RoleGuard)
	require.NoError(t, err)

	_, err = expired.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestGarbageToken(t *testing.T) {
	svc := newTestService()

	_, err := svc.ValidateAccessToken("not.a.token")
	assert.Error(t, err)
}
