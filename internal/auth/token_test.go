package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 5)

	token, expiresAt, err := tm.GenerateToken("admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, time.Minute)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}

func TestParseToken_WrongSecretRejected(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 5).GenerateToken("admin")
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", 5).ParseToken(token)
	assert.Error(t, err)
}

func TestParseToken_GarbageRejected(t *testing.T) {
	_, err := NewTokenManager("secret", 5).ParseToken("not-a-token")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.NoError(t, ComparePassword(hash, "secret1"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}
