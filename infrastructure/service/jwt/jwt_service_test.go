package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluecarbon/registry-api/application/port/outbound"
)

const testSecret = "super-secret-signing-key-for-tests"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifyAccessToken_Valid(t *testing.T) {
	verifier, err := NewVerifier(testSecret)
	require.NoError(t, err)

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":   "user-123",
		"email": "admin@example.org",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	claims, err := verifier.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "admin@example.org", claims.Email)
	assert.Nil(t, claims.BannedUntil)
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	verifier, _ := NewVerifier(testSecret)

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err := verifier.VerifyAccessToken(token)
	assert.ErrorIs(t, err, outbound.ErrTokenExpired)
}

func TestVerifyAccessToken_WrongSecret(t *testing.T) {
	verifier, _ := NewVerifier(testSecret)

	token := signToken(t, "a-different-secret-entirely", jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := verifier.VerifyAccessToken(token)
	assert.ErrorIs(t, err, outbound.ErrTokenInvalid)
}

func TestVerifyAccessToken_Garbage(t *testing.T) {
	verifier, _ := NewVerifier(testSecret)

	_, err := verifier.VerifyAccessToken("not.a.token")
	assert.ErrorIs(t, err, outbound.ErrTokenInvalid)
}

func TestVerifyAccessToken_MissingSubject(t *testing.T) {
	verifier, _ := NewVerifier(testSecret)

	token := signToken(t, testSecret, jwt.MapClaims{
		"email": "nobody@example.org",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	_, err := verifier.VerifyAccessToken(token)
	assert.ErrorIs(t, err, outbound.ErrTokenInvalid)
}

func TestVerifyAccessToken_BannedUntil(t *testing.T) {
	verifier, _ := NewVerifier(testSecret)
	bannedUntil := time.Now().Add(24 * time.Hour)

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub":          "user-123",
		"exp":          time.Now().Add(time.Hour).Unix(),
		"banned_until": bannedUntil.Unix(),
	})

	claims, err := verifier.VerifyAccessToken(token)
	require.NoError(t, err)
	require.NotNil(t, claims.BannedUntil)
	assert.WithinDuration(t, bannedUntil, *claims.BannedUntil, time.Second)
}

func TestNewVerifier_EmptySecret(t *testing.T) {
	_, err := NewVerifier("")
	assert.Error(t, err)
}
