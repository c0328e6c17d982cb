package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"natours-api/internal/models"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret-key-for-testing-only", time.Hour)

	token, err := issuer.GenerateJWT(models.Identity{UserID: "u-42", Role: models.RoleLeadGuide})
	require.NoError(t, err)

	id, err := issuer.ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "u-42", id.UserID)
	assert.Equal(t, models.RoleLeadGuide, id.Role)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := issuer.GenerateJWT(models.Identity{UserID: "u1", Role: models.RoleUser})
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.ParseJWT(token)
	assert.True(t, errors.Is(err, ErrTokenExpired))
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("one", time.Hour).GenerateJWT(models.Identity{UserID: "u1", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = NewTokenIssuer("two", time.Hour).ParseJWT(token)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrTokenExpired))
}

func TestTokenIssuer_RejectsUnknownRole(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, err := issuer.GenerateJWT(models.Identity{UserID: "u1", Role: "root"})
	require.NoError(t, err)

	_, err = issuer.ParseJWT(token)
	assert.Error(t, err)
}

func TestTokenIssuer_Garbage(t *testing.T) {
	_, err := NewTokenIssuer("secret", time.Hour).ParseJWT("not.a.token")
	assert.Error(t, err)
}
