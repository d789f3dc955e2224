package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/benvon/datenight/internal/database"
	"github.com/benvon/datenight/internal/models"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// DefaultCORSMaxAge is the preflight cache lifetime when no CORS config is stored
const DefaultCORSMaxAge = 86400

// CORSConfigSource supplies the stored CORS config. A nil config means none is stored.
type CORSConfigSource interface {
	Get(ctx context.Context) (*models.CorsConfig, error)
}

// CORSReloader wraps rs/cors and periodically reloads the allow-list from the database.
type CORSReloader struct {
	swapHandler
	source   CORSConfigSource
	fallback []string
	log      *zap.Logger
	interval time.Duration
	originMu sync.RWMutex
	origins  []string
}

// NewCORSReloader creates a CORS middleware that prefers the stored config and falls back to origins.
func NewCORSReloader(source CORSConfigSource, fallback []string, log *zap.Logger, reloadInterval time.Duration) *CORSReloader {
	return &CORSReloader{
		source:   source,
		fallback: fallback,
		log:      log,
		interval: reloadInterval,
	}
}

// Middleware returns a middleware that wraps next with CORS and hot-reload.
func (r *CORSReloader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		r.next = next
		r.load(context.Background())
		return r
	}
}

// Start runs the reload loop until ctx is cancelled. Call after Middleware() is applied.
func (r *CORSReloader) Start(ctx context.Context) {
	reloadEvery(ctx, r.interval, r.load)
}

// Origins returns the allow-list currently in force
func (r *CORSReloader) Origins() []string {
	r.originMu.RLock()
	defer r.originMu.RUnlock()
	return append([]string(nil), r.origins...)
}

func (r *CORSReloader) load(ctx context.Context) {
	if r.next == nil {
		return
	}
	origins := r.fallback
	allowCreds := true
	maxAge := DefaultCORSMaxAge

	cfg, err := r.source.Get(ctx)
	switch {
	case err != nil:
		r.log.Warn("failed_to_load_cors_config_using_fallback", zap.Error(err))
	case cfg != nil:
		if stored := database.AllowedOriginsSlice(cfg.AllowedOrigins); len(stored) > 0 {
			origins = stored
			allowCreds = cfg.AllowCredentials
			maxAge = cfg.MaxAge
		}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: allowCreds,
		MaxAge:           maxAge,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
	})
	r.originMu.Lock()
	r.origins = origins
	r.originMu.Unlock()
	r.install(c.Handler(r.next))
}
