package middleware

import (
	"net/http"
	"time"
)

const (
	// DefaultRequestTimeout bounds a handler, including its provider calls
	DefaultRequestTimeout = 30 * time.Second
)

const timeoutBody = `{"error":"Request Timeout"}`

// Timeout answers 503 with a JSON body when a handler runs past timeout. The handler's
// context is cancelled at the same moment, which aborts in-flight provider calls.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(next http.Handler) http.Handler {
		limited := http.TimeoutHandler(next, timeout, timeoutBody)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// handlers that set their own Content-Type replace this on success
			w.Header().Set("Content-Type", "application/json")
			limited.ServeHTTP(w, r)
		})
	}
}
