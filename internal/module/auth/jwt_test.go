package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManagerRoundTrip(t *testing.T) {
	manager := NewJWTManager(&JWTConfig{
		Secret:            "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "scrumify",
	})

	user := &User{ID: uuid.New(), Email: "dev@example.com", Name: "Dev"}

	token, expiresAt, err := manager.GenerateAccessToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := manager.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, "scrumify", claims.Issuer)

	identity, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, user.Email, identity.Email)
}

func TestJWTManagerRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTManager(&JWTConfig{Secret: "secret-a", AccessTokenExpiry: time.Hour})
	verifier := NewJWTManager(&JWTConfig{Secret: "secret-b", AccessTokenExpiry: time.Hour})

	user := &User{ID: uuid.New(), Email: "dev@example.com"}

	token, _, err := issuer.GenerateAccessToken(user)
	require.NoError(t, err)

	_, err = verifier.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTManagerRejectsExpiredToken(t *testing.T) {
	manager := NewJWTManager(&JWTConfig{Secret: "test-secret", AccessTokenExpiry: -time.Minute})

	user := &User{ID: uuid.New(), Email: "dev@example.com"}

	token, _, err := manager.GenerateAccessToken(user)
	require.NoError(t, err)

	_, err = manager.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManagerRejectsGarbage(t *testing.T) {
	manager := NewJWTManager(&JWTConfig{Secret: "test-secret", AccessTokenExpiry: time.Hour})

	_, err := manager.ValidateAccessToken("not.a.token")
	assert.Error(t, err)
}
