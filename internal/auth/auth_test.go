package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tk := NewTokens("test-secret", time.Hour)

	raw, err := tk.Issue("u-1", "alice@example.com", "user")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := tk.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
}

func TestTokenExpired(t *testing.T) {
	tk := NewTokens("test-secret", -time.Minute)

	raw, err := tk.Issue("u-1", "alice@example.com", "user")
	require.NoError(t, err)

	_, err = tk.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWrongSecret(t *testing.T) {
	raw, err := NewTokens("secret-a", time.Hour).Issue("u-1", "a@example.com", "user")
	require.NoError(t, err)

	_, err = NewTokens("secret-b", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashAndCheck(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret!", hash)

	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
