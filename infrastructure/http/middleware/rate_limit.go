package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/bluecarbon/registry-api/application/port/inbound"
	apperror "github.com/bluecarbon/registry-api/domain/error"
	"github.com/bluecarbon/registry-api/infrastructure/http/response"
	"github.com/bluecarbon/registry-api/infrastructure/service/logger"
)

// The three independently-windowed quota tiers.
const (
	TierGeneral   = "general"
	TierSensitive = "sensitive"
	TierMint      = "mint"
)

type tierConfig struct {
	limit  int
	window time.Duration
}

var tiers = map[string]tierConfig{
	TierGeneral:   {limit: 100, window: 15 * time.Minute},
	TierSensitive: {limit: 10, window: 5 * time.Minute},
	TierMint:      {limit: 5, window: time.Minute},
}

// RateLimitMiddleware rejects over-quota callers before authentication or
// business logic runs. Windows are independent per tier.
type RateLimitMiddleware struct {
	service        inbound.RateLimitService
	log            logger.Logger
	includeDetails bool
}

func NewRateLimitMiddleware(service inbound.RateLimitService, log logger.Logger, includeDetails bool) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		service:        service,
		log:            log,
		includeDetails: includeDetails,
	}
}

func (m *RateLimitMiddleware) General(next http.Handler) http.Handler {
	return m.limit(TierGeneral, next)
}

func (m *RateLimitMiddleware) Sensitive(next http.Handler) http.Handler {
	return m.limit(TierSensitive, next)
}

func (m *RateLimitMiddleware) Mint(next http.Handler) http.Handler {
	return m.limit(TierMint, next)
}

func (m *RateLimitMiddleware) limit(tier string, next http.Handler) http.Handler {
	cfg := tiers[tier]
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.service == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		key := tier + ":" + clientKey(r)

		allowed, retryAfter, err := m.service.Allow(ctx, key, cfg.limit, cfg.window)
		if err != nil {
			// Fail open: an unavailable counter store must not take the
			// API down with it.
			m.log.Warn(ctx, "Rate limit check failed, allowing request", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			logger.LogSecurityEvent(ctx, m.log, "rate_limit_exceeded", "MEDIUM", map[string]interface{}{
				"tier":        tier,
				"key":         key,
				"path":        r.URL.Path,
				"retry_after": retryAfter.Seconds(),
			})
			response.Error(w, r, apperror.NewRateLimited(retryAfter), m.includeDetails)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientKey combines the client IP with the resolved identity when a
// previous middleware attached one, else "anonymous".
func clientKey(r *http.Request) string {
	ip := getClientIP(r)
	if identity := GetIdentity(r.Context()); identity != nil {
		return ip + ":" + identity.ID
	}
	return ip + ":anonymous"
}

// getClientIP prefers proxy headers over the raw remote address.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ips := strings.Split(xff, ","); len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
