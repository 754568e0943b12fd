package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	manager, err := NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	token, expiresAt, err := manager.Issue(1, "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := manager.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.NotEmpty(t, claims.ID)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(1), id)
}

func TestTokenManager_TokensAreUnique(t *testing.T) {
	manager, err := NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	first, _, err := manager.Issue(1, "admin")
	require.NoError(t, err)
	second, _, err := manager.Issue(1, "admin")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, "test-secret", first)
}

func TestTokenManager_Rejects(t *testing.T) {
	manager, err := NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	t.Run("expired token", func(t *testing.T) {
		manager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, _, err := manager.Issue(1, "admin")
		require.NoError(t, err)
		manager.now = time.Now

		_, err = manager.Parse(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewTokenManager("other-secret", time.Hour)
		require.NoError(t, err)
		token, _, err := other.Issue(1, "admin")
		require.NoError(t, err)

		_, err = manager.Parse(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("tampered payload", func(t *testing.T) {
		token, _, err := manager.Issue(1, "admin")
		require.NoError(t, err)
		parts := strings.Split(token, ".")
		parts[1] = parts[1][:len(parts[1])-2] + "xx"

		_, err = manager.Parse(strings.Join(parts, "."))
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("unsigned token", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub": "1",
			"iss": issuer,
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = manager.Parse(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("static secret string", func(t *testing.T) {
		_, err := manager.Parse("test-secret")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("non numeric subject", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "admin",
			"iss": issuer,
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = manager.Parse(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestNewTokenManager_Validation(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenManager("secret", 0)
	assert.Error(t, err)
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("smartscale2024")
	require.NoError(t, err)
	assert.NotEqual(t, "smartscale2024", hash)

	assert.True(t, CheckPassword(hash, "smartscale2024"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "smartscale2024"))

	assert.ErrorIs(t, ValidateNewPassword("12345"), ErrPasswordTooShort)
	assert.NoError(t, ValidateNewPassword("123456"))
}
