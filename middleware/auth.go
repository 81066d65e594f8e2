package middleware

import (
	"context"
	"net/http"

	"github.com/valinor-labs/authgate"
	"github.com/valinor-labs/authgate/jwt"
)

type principalContextKey struct{}
type userIDContextKey struct{}

// PrincipalFromContext returns the authenticated identity attached by
// [Authenticate], if the request carried a valid token.
func PrincipalFromContext(ctx context.Context) (jwt.Identity, bool) {
	principal, ok := ctx.Value(principalContextKey{}).(jwt.Identity)
	return principal, ok
}

// UserIDFromContext returns the raw user-id claim attached by
// [Authenticate]. Kept alongside the principal so later handlers in the
// same request do not re-derive it from the claims.
func UserIDFromContext(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(userIDContextKey{}).(int)
	return id, ok
}

// Authenticate verifies the Authorization header on every request. A valid
// token establishes the principal and user id in the request context; an
// absent, malformed, revoked, or expired token leaves the request
// unauthenticated and passes it through unchanged. Rejecting requests that
// require a principal is the access-control layer's job, not this filter's.
func Authenticate(engine *authgate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := engine.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil || claims == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey{}, claims.Identity())
			ctx = context.WithValue(ctx, userIDContextKey{}, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Require rejects requests that reached this point without a principal.
// Place it after [Authenticate] on routes that demand credentials.
func Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
