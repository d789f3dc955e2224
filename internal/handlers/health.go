package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger is a dependency whose reachability the extended health check reports
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

// PingContext calls f
func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// HealthChecker handles health check requests
type HealthChecker struct {
	deps  map[string]Pinger
	order []string
}

// NewHealthChecker creates a health checker for the database and any other named dependencies
func NewHealthChecker(db Pinger) *HealthChecker {
	h := &HealthChecker{deps: make(map[string]Pinger)}
	h.Add("database", db)
	return h
}

// Add registers another dependency for extended checks. A nil pinger is ignored.
func (h *HealthChecker) Add(name string, p Pinger) {
	if p == nil {
		return
	}
	if _, ok := h.deps[name]; !ok {
		h.order = append(h.order, name)
	}
	h.deps[name] = p
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles /healthz. With ?mode=extended it pings every dependency and
// answers 503 when any of them fails.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if r.URL.Query().Get("mode") != "extended" {
		respondJSON(w, http.StatusOK, response)
		return
	}

	response.Checks = make(map[string]string, len(h.order))
	for _, name := range h.order {
		if err := ping(r.Context(), h.deps[name]); err != nil {
			response.Status = "unhealthy"
			response.Checks[name] = "unhealthy: " + err.Error()
			continue
		}
		response.Checks[name] = "healthy"
	}

	status := http.StatusOK
	if response.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, response)
}

func ping(ctx context.Context, p Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.PingContext(ctx)
}

// VersionInfo is served by /version
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

// Version returns a handler that serves info
func Version(info VersionInfo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, info)
	}
}

// APITest answers the liveness check used by the browser client
func APITest(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "API is working!"})
}
