package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bluecarbon/registry-api/application/port/outbound"
)

// supabaseClaims is the shape of Supabase-issued access tokens. banned_until
// is a numeric date set by the auth admin API when an account is suspended.
type supabaseClaims struct {
	Email       string           `json:"email"`
	BannedUntil *jwt.NumericDate `json:"banned_until,omitempty"`
	jwt.RegisteredClaims
}

type verifier struct {
	secret []byte
}

// NewVerifier builds a TokenVerifier for HS256 access tokens signed with
// the Supabase project's JWT secret.
func NewVerifier(secret string) (outbound.TokenVerifier, error) {
	if secret == "" {
		return nil, errors.New("jwt secret cannot be empty")
	}
	return &verifier{secret: []byte(secret)}, nil
}

func (v *verifier) VerifyAccessToken(token string) (*outbound.TokenClaims, error) {
	claims := &supabaseClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, outbound.ErrTokenExpired
		}
		return nil, outbound.ErrTokenInvalid
	}

	if claims.Subject == "" {
		return nil, outbound.ErrTokenInvalid
	}

	out := &outbound.TokenClaims{
		UserID: claims.Subject,
		Email:  claims.Email,
	}
	if claims.BannedUntil != nil {
		t := claims.BannedUntil.Time
		out.BannedUntil = &t
	}
	return out, nil
}
