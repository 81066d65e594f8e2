package middleware

import (
	"net"
	"net/http"

	"github.com/valinor-labs/authgate"
)

// Throttle applies the engine's per-IP flow ceiling to every request.
// Clients over the ceiling, or inside the punitive block period, receive a
// 403 with a JSON body. Store failures also deny: the limiter fails closed.
//
// The client IP is attached to the request context for downstream handlers
// (code-request endpoints key their cooldown on it).
func Throttle(engine *authgate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			allowed, err := engine.AllowRequest(r.Context(), ip)
			if err != nil || !allowed {
				writeBlocked(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(authgate.WithClientIP(r.Context(), ip)))
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

func writeBlocked(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"code":403,"message":"too many requests, try again later"}`))
}
