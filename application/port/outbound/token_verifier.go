package outbound

import (
	"errors"
	"time"
)

var (
	// ErrTokenExpired is returned when the token was well formed but its
	// expiry is in the past.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid covers every other verification failure: bad
	// signature, malformed payload, missing subject.
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenClaims is the identity material extracted from a verified access
// token.
type TokenClaims struct {
	UserID      string
	Email       string
	BannedUntil *time.Time
}

// TokenVerifier exchanges a bearer token for the caller's claims.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*TokenClaims, error)
}
