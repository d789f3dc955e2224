package request

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/benvon/datenight/internal/models"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionContextKey returns the context key used for the session. Exposed for tests that inject other values.
func SessionContextKey() contextKey { return sessionContextKey }

// Session is the authenticated identity of one request. It is built by the auth
// middleware from a bearer token and ends when the token is revoked or expires.
type Session struct {
	Token     string
	TokenID   string
	User      *models.User
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at now
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// ClientIP extracts the client IP, preferring X-Forwarded-For then X-Real-IP
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// WithSession returns a context carrying s
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// SessionFromContext returns the request's session, or nil when unauthenticated
func SessionFromContext(r *http.Request) *Session {
	s, _ := r.Context().Value(sessionContextKey).(*Session)
	return s
}

// UserFromContext returns the session user, or nil when unauthenticated
func UserFromContext(r *http.Request) *models.User {
	if s := SessionFromContext(r); s != nil {
		return s.User
	}
	return nil
}
