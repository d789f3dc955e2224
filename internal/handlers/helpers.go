package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	logpkg "github.com/benvon/datenight/internal/logger"
	"github.com/benvon/datenight/internal/middleware"
	"go.uber.org/zap"
)

// respondJSON sends data as the JSON response body
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondError sends {"error": message}
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondErrors sends {"errors": messages}, the shape used for field validation failures
func respondErrors(w http.ResponseWriter, status int, messages []string) {
	respondJSON(w, status, map[string][]string{"errors": messages})
}

// Reporter logs unexpected failures and answers them with a 500. The underlying error
// reaches the client only outside production.
type Reporter struct {
	Logger     *zap.Logger
	Production bool
}

// ServerError logs err under event and sends {"error": title, "message": detail}
func (rp Reporter) ServerError(w http.ResponseWriter, r *http.Request, event, title string, err error) {
	rp.Logger.Error(event,
		zap.String("path", logpkg.SanitizePath(r.URL.Path)),
		zap.String("error", logpkg.SanitizeError(err)),
	)
	message := middleware.ProductionErrorMessage
	if !rp.Production && err != nil {
		message = err.Error()
	}
	respondJSON(w, http.StatusInternalServerError, middleware.ErrorResponse{Error: title, Message: message})
}

// decodeJSON reads the request body into dst. It answers 413 or 400 itself and reports false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return false
		}
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// intParam parses an optional integer query parameter, falling back to def when absent or invalid
func intParam(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

// floatParam parses an optional float query parameter; ok is false when absent or invalid
func floatParam(r *http.Request, name string) (v float64, ok bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
