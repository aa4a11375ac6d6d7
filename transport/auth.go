package transport

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/goliatone/fleet-alerts/core"
)

// basicAuth guards the reporting API. Credentials are compared through
// fixed-length digests so the comparison is constant time regardless of
// input length.
func (rt *Router) basicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expectedUser := strings.TrimSpace(rt.dashboard.Username)
		expectedPass := rt.dashboard.Password
		if expectedUser == "" {
			rt.logger.Warn("dashboard credentials are not configured, rejecting request")
			unauthorized(w)
			return
		}

		user, pass, ok := r.BasicAuth()
		if !ok || !constantTimeEqual(user, expectedUser) || !constantTimeEqual(pass, expectedPass) {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func constantTimeEqual(got string, expected string) bool {
	gotSum := sha256.Sum256([]byte(got))
	expectedSum := sha256.Sum256([]byte(expected))
	return subtle.ConstantTimeCompare(gotSum[:], expectedSum[:]) == 1
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="fleet-alerts"`)
	writeJSON(w, http.StatusUnauthorized, errorBody("error", "authentication required", core.ErrorAuthFailed))
}
