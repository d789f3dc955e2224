package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"

	logpkg "github.com/benvon/datenight/internal/logger"
	"go.uber.org/zap"
)

const (
	// GenericErrorTitle is the error field of every unexpected failure
	GenericErrorTitle = "Something went wrong!"
	// ProductionErrorMessage replaces error detail in production responses
	ProductionErrorMessage = "Internal server error"
)

// ErrorResponse is the envelope for unexpected failures
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ErrorHandler recovers panics into a 500 ErrorResponse. The panic value is only
// exposed to the client outside production.
func ErrorHandler(logger *zap.Logger, production bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					detail := fmt.Sprint(rec)
					logger.Error("panic_recovered",
						zap.String("error", logpkg.SanitizeString(detail, logpkg.MaxErrorMessageLength)),
						zap.String("path", logpkg.SanitizePath(r.URL.Path)),
						zap.String("method", r.Method),
					)
					message := detail
					if production {
						message = ProductionErrorMessage
					}
					respondErrorJSON(w, r, http.StatusInternalServerError, message, logger)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func respondErrorJSON(w http.ResponseWriter, r *http.Request, status int, message string, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := ErrorResponse{
		Error:   GenericErrorTitle,
		Message: message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("failed_to_encode_error_response",
			zap.Error(err),
			zap.Int("status_code", status),
			zap.String("path", logpkg.SanitizePath(r.URL.Path)),
		)
	}
}
