package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/dalemusser/stratadash/internal/app/system/jsonutil"
	"go.uber.org/zap"
)

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. It returns "" when the header is missing or uses another scheme.
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// RequireStaff returns middleware that admits only requests carrying the
// staff API key as a bearer token. Analytics data is only served to staff.
//
// If staffKey is empty every request is rejected.
func RequireStaff(staffKey string, logger *zap.Logger) func(http.Handler) http.Handler {
	if staffKey == "" {
		logger.Warn("staff API key not configured - all staff requests will be rejected")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if staffKey == "" {
				logger.Warn("staff request rejected: API key not configured",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				jsonutil.Unauthorized(w, "staff authentication not configured")
				return
			}

			provided := BearerToken(r)
			if provided == "" {
				logger.Debug("staff request rejected: missing bearer token",
					zap.String("path", r.URL.Path),
				)
				jsonutil.Unauthorized(w, "missing bearer token")
				return
			}

			if subtle.ConstantTimeCompare([]byte(provided), []byte(staffKey)) != 1 {
				logger.Warn("staff request rejected: invalid API key",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				jsonutil.Unauthorized(w, "invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
