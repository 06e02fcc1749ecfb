package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklane/backend/internal/infrastructure/config"
)

func newTestService(expiration time.Duration) *JWTService {
	return NewJWTService(&config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars!!",
		AccessTokenExpiration: expiration,
		Issuer:                "stocklane-test",
	})
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newTestService(time.Hour)
	personID := uuid.New()

	token, expiresAt, err := svc.Generate(personID)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, personID, claims.PersonID)
	assert.Equal(t, "stocklane-test", claims.Issuer)
	assert.Equal(t, personID.String(), claims.Subject)
}

func TestJWTService_ValidateExpired(t *testing.T) {
	svc := newTestService(-time.Minute)
	token, _, err := svc.Generate(uuid.New())
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_ValidateTampered(t *testing.T) {
	svc := newTestService(time.Hour)
	token, _, err := svc.Generate(uuid.New())
	require.NoError(t, err)

	_, err = svc.Validate(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateWrongSecret(t *testing.T) {
	svc := newTestService(time.Hour)
	token, _, err := svc.Generate(uuid.New())
	require.NoError(t, err)

	other := NewJWTService(&config.JWTConfig{
		Secret:                "another-secret-key-32-chars-long!!!",
		AccessTokenExpiration: time.Hour,
		Issuer:                "stocklane-test",
	})
	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
