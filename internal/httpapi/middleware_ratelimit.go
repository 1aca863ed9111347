package httpapi

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/PabloPavan/sniply_inject/internal/apperrors"
	"github.com/PabloPavan/sniply_inject/internal/telemetry"
)

type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// RateLimitWrites limits non-GET admin calls per client address. Limiter
// failures let the request through.
func RateLimitWrites(limiter RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || r.Method == http.MethodGet || r.Method == http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			allowed, retryAfter, err := limiter.Allow(r.Context(), "admin:"+clientIP(r))
			if err != nil {
				telemetry.LogWarn(r.Context(), "rate limiter unavailable", telemetry.LogErr(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				writeAppError(w, apperrors.RateLimit("too many requests", retryAfter))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
