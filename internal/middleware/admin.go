package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// RequireAdmin asserts the caller holds the admin bearer token. Session and
// role issuance live outside this service; this middleware only answers
// "is the caller an admin".
func RequireAdmin(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				writeError(w, http.StatusServiceUnavailable, "admin_disabled", "admin surface is not configured")
				return
			}
			got := strings.TrimSpace(r.Header.Get("X-Admin-Token"))
			if got == "" {
				if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
					got = strings.TrimPrefix(auth, "Bearer ")
				}
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid admin token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
