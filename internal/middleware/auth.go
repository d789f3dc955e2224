package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	logpkg "github.com/benvon/datenight/internal/logger"
	"github.com/benvon/datenight/internal/request"
	"go.uber.org/zap"
)

// Authenticator resolves a bearer token into a session
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*request.Session, error)
}

const (
	msgMissingHeader = "Missing Authorization header"
	msgBadHeader     = "Invalid Authorization header format"
	msgInvalidToken  = "Invalid or expired token"
)

// Auth rejects requests without a valid bearer token and puts the session in the request context
func Auth(authn Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, problem := bearerToken(r)
			if problem != "" {
				respondError(w, http.StatusUnauthorized, problem)
				return
			}

			sess, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				logger.Info("token_rejected",
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.String("reason", logpkg.SanitizeError(err)),
				)
				respondError(w, http.StatusUnauthorized, msgInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(request.WithSession(r.Context(), sess)))
		})
	}
}

// OptionalAuth attaches a session when the request carries a valid bearer token and
// otherwise serves the request anonymously
func OptionalAuth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, problem := bearerToken(r); problem == "" {
				if sess, err := authn.Authenticate(r.Context(), token); err == nil {
					r = r.WithContext(request.WithSession(r.Context(), sess))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken returns the token, or a client-facing problem when the header is unusable
func bearerToken(r *http.Request) (token, problem string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", msgMissingHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", msgBadHeader
	}
	return token, ""
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
