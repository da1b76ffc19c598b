package jwt

import (
	"testing"
	"time"

	"telehealth-backend/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
	})
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	service := newTestService()
	userID := uuid.New()

	token, tokenID, err := service.GenerateAccessToken(userID, "doctor@example.com", 2)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, tokenID)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "doctor@example.com", claims.Email)
	assert.Equal(t, 2, claims.RoleID)
	assert.Equal(t, AccessToken, claims.TokenType)
	assert.Equal(t, tokenID, claims.TokenID)
}

func TestJWTService_RefreshTokenType(t *testing.T) {
	service := newTestService()

	token, _, err := service.GenerateRefreshToken(uuid.New(), "patient@example.com", 3)
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, RefreshToken, claims.TokenType)
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	service := newTestService()

	token, _, err := service.GenerateAccessToken(uuid.New(), "someone@example.com", 3)
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "another-secret", AccessExpiry: time.Minute})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	service := NewJWTService(config.JWTConfig{
		Secret:       "test-secret",
		AccessExpiry: -time.Minute,
	})

	token, _, err := service.GenerateAccessToken(uuid.New(), "someone@example.com", 3)
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Error(t, err)
}
