package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bluecarbon/registry-api/application/port/outbound"
	"github.com/bluecarbon/registry-api/domain/entity"
	apperror "github.com/bluecarbon/registry-api/domain/error"
	"github.com/bluecarbon/registry-api/infrastructure/http/response"
	"github.com/bluecarbon/registry-api/infrastructure/service/logger"
)

// Anything shorter cannot be a signed token; rejected before the verifier
// or any collaborator is touched.
const minTokenLength = 20

type ctxKey string

const (
	identityKey       ctxKey = "auth_identity"
	profileKey        ctxKey = "auth_profile"
	verifyDurationKey ctxKey = "auth_verify_duration"
)

// AuthMiddleware verifies bearer tokens (identity) and resolves stored
// roles (authorization) for admin-gated routes.
type AuthMiddleware struct {
	verifier       outbound.TokenVerifier
	users          outbound.UserRepository
	log            logger.Logger
	includeDetails bool
}

func NewAuthMiddleware(verifier outbound.TokenVerifier, users outbound.UserRepository, log logger.Logger, includeDetails bool) *AuthMiddleware {
	return &AuthMiddleware{
		verifier:       verifier,
		users:          users,
		log:            log,
		includeDetails: includeDetails,
	}
}

// RequireAuth authenticates the caller. Malformed or missing credentials
// are rejected without any store or ledger call.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		ip := getClientIP(r)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.reject(w, r, ip, "missing_header", apperror.NewUnauthorized("Authorization header required"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			m.reject(w, r, ip, "bad_header_format", apperror.NewUnauthorized("Invalid authorization header format"))
			return
		}

		token := parts[1]
		if len(token) < minTokenLength {
			m.reject(w, r, ip, "token_too_short", apperror.NewUnauthorized("Token is malformed"))
			return
		}

		claims, err := m.verifier.VerifyAccessToken(token)
		if err != nil {
			if errors.Is(err, outbound.ErrTokenExpired) {
				m.reject(w, r, ip, "token_expired", apperror.NewTokenExpired("Token has expired"))
				return
			}
			m.reject(w, r, ip, "token_invalid", apperror.NewForbidden("Invalid token"))
			return
		}

		identity := &entity.Identity{
			ID:          claims.UserID,
			Email:       claims.Email,
			BannedUntil: claims.BannedUntil,
		}
		if identity.Banned() {
			m.reject(w, r, ip, "banned", apperror.NewForbidden("Account is suspended"))
			return
		}

		elapsed := time.Since(start)
		logger.LogAuthEvent(ctx, m.log, "token_verified", identity.ID, ip, true, map[string]interface{}{
			"duration_ms": elapsed.Milliseconds(),
		})

		ctx = WithIdentity(ctx, identity)
		ctx = context.WithValue(ctx, verifyDurationKey, elapsed)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin authenticates and then resolves the caller's stored role.
// The role comes from the data store, never from the token.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity := GetIdentity(ctx)
		if identity == nil {
			response.Error(w, r, apperror.NewUnauthorized("User not authenticated"), m.includeDetails)
			return
		}

		profile, err := m.users.GetByID(ctx, identity.ID)
		if err != nil {
			if errors.Is(err, outbound.ErrProfileNotFound) {
				m.reject(w, r, getClientIP(r), "no_profile", apperror.NewForbidden("Admin access required"))
				return
			}
			m.log.Error(ctx, "Role lookup failed", err, map[string]interface{}{
				"user_id": identity.ID,
			})
			response.Error(w, r, apperror.NewInternal("Failed to resolve caller role", err), m.includeDetails)
			return
		}

		if !profile.IsAdmin() {
			logger.LogSecurityEvent(ctx, m.log, "admin_route_denied", "MEDIUM", map[string]interface{}{
				"user_id": identity.ID,
				"role":    profile.Role,
				"path":    r.URL.Path,
			})
			response.Error(w, r, apperror.NewForbidden("Admin access required"), m.includeDetails)
			return
		}

		ctx = context.WithValue(ctx, profileKey, profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	}))
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, ip, reason string, appErr *apperror.AppError) {
	logger.LogAuthEvent(r.Context(), m.log, reason, "", ip, false, map[string]interface{}{
		"path": r.URL.Path,
	})
	response.Error(w, r, appErr, m.includeDetails)
}

// WithIdentity attaches a verified identity to the context.
func WithIdentity(ctx context.Context, identity *entity.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity returns the verified caller identity, or nil outside an
// authenticated request.
func GetIdentity(ctx context.Context) *entity.Identity {
	if identity, ok := ctx.Value(identityKey).(*entity.Identity); ok {
		return identity
	}
	return nil
}

// GetProfile returns the resolved profile on admin-gated routes.
func GetProfile(ctx context.Context) *entity.UserProfile {
	if profile, ok := ctx.Value(profileKey).(*entity.UserProfile); ok {
		return profile
	}
	return nil
}

// GetVerifyDuration returns how long token verification took.
func GetVerifyDuration(ctx context.Context) time.Duration {
	if d, ok := ctx.Value(verifyDurationKey).(time.Duration); ok {
		return d
	}
	return 0
}
