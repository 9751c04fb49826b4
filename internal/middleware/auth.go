package middleware

import (
	"context"
	"net/http"

	"github.com/hongminglow/wayfarer/internal/auth"
	"github.com/hongminglow/wayfarer/internal/http/respond"
)

type claimsKey struct{}

// Authenticate verifies the X-Auth-Token header when present and stores
// the claims on the request context. Requests without a token pass
// through anonymously.
func Authenticate(tokens *auth.TokenManager, revocations *auth.Revocations) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(TokenHeader)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := tokens.Parse(raw)
			if err != nil || revocations.Revoked(claims.ID) {
				respond.Error(w, http.StatusUnauthorized, "Invalid or expired token.")
				return
			}
			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Claims(r.Context()) == nil {
			respond.Error(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Claims returns the verified token claims, or nil for anonymous requests.
func Claims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims
}
