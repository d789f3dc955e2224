package middleware

import (
	"net/http"

	logpkg "github.com/benvon/datenight/internal/logger"
	"github.com/benvon/datenight/internal/request"
	"go.uber.org/zap"
)

// Audit logs rejected authentication, authorization and rate limited requests
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			fields := func() []zap.Field {
				return []zap.Field{
					zap.Int("status_code", wrapped.statusCode),
					zap.String("method", r.Method),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxGeneralStringLength)),
				}
			}
			switch wrapped.statusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				logger.Warn("security_event", fields()...)
			case http.StatusTooManyRequests:
				logger.Warn("rate_limit_violation", fields()...)
			}
		})
	}
}
