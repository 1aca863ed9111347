package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/PabloPavan/sniply_inject/internal/auth"
)

type Authenticator interface {
	AuthenticateToken(ctx context.Context, token string) (auth.Principal, error)
}

// AuthMiddleware rejects requests without a valid admin token.
func AuthMiddleware(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authenticator == nil {
				http.Error(w, "auth not configured", http.StatusInternalServerError)
				return
			}

			principal, err := authenticator.AuthenticateToken(r.Context(), tokenFromRequest(r))
			if err != nil {
				writeAppError(w, err)
				return
			}

			ctx := auth.WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthMiddleware annotates the context when a valid token is
// present and lets every request through.
func OptionalAuthMiddleware(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if authenticator == nil || token == "" {
				next.ServeHTTP(w, r)
				return
			}
			if principal, err := authenticator.AuthenticateToken(r.Context(), token); err == nil {
				ctx := auth.WithPrincipal(r.Context(), principal)
				if strings.TrimSpace(r.Header.Get("X-API-Key")) == "" {
					ctx = auth.WithBearerCredential(ctx)
				}
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("X-API-Key")); v != "" {
		return v
	}

	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	if authz == "" {
		return ""
	}
	parts := strings.Fields(authz)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
