package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/benvon/datenight/internal/models"
	"github.com/benvon/datenight/internal/request"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

const rateLimitKeyPrefix = "datenight:ratelimit"

// RateLimitConfigSource reads and seeds the stored rate
type RateLimitConfigSource interface {
	Get(ctx context.Context) (*models.RatelimitConfig, error)
	Set(ctx context.Context, c *models.RatelimitConfig) error
}

// NewLimiterStore returns a Redis-backed store shared by all instances, or a
// process-local memory store when redisClient is nil.
func NewLimiterStore(redisClient *redis.Client) (limiter.Store, error) {
	if redisClient == nil {
		return memorystore.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          rateLimitKeyPrefix,
			CleanUpInterval: limiter.DefaultCleanUpInterval,
		}), nil
	}
	store, err := redisstore.NewStoreWithOptions(redisClient, limiter.StoreOptions{
		Prefix: rateLimitKeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis limiter store: %w", err)
	}
	return store, nil
}

// RateLimitReloader wraps ulule/limiter and periodically reloads the rate from the database.
type RateLimitReloader struct {
	swapHandler
	store       limiter.Store
	source      RateLimitConfigSource
	defaultRate string
	log         *zap.Logger
	interval    time.Duration
	rateMu      sync.RWMutex
	rate        limiter.Rate
}

// NewRateLimitReloader creates a rate limit middleware that loads its rate from source and hot-reloads it.
func NewRateLimitReloader(store limiter.Store, source RateLimitConfigSource, defaultRate string, log *zap.Logger, reloadInterval time.Duration) *RateLimitReloader {
	if defaultRate == "" {
		defaultRate = models.DefaultRateLimit
	}
	return &RateLimitReloader{
		store:       store,
		source:      source,
		defaultRate: defaultRate,
		log:         log,
		interval:    reloadInterval,
	}
}

// Middleware returns a middleware that wraps next with rate limiting and hot-reload.
func (r *RateLimitReloader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		r.next = next
		r.load(context.Background())
		return r
	}
}

// Start runs the reload loop until ctx is cancelled. Call after Middleware() is applied.
func (r *RateLimitReloader) Start(ctx context.Context) {
	reloadEvery(ctx, r.interval, r.load)
}

// Rate returns the rate currently in force
func (r *RateLimitReloader) Rate() limiter.Rate {
	r.rateMu.RLock()
	defer r.rateMu.RUnlock()
	return r.rate
}

func (r *RateLimitReloader) load(ctx context.Context) {
	if r.next == nil {
		return
	}
	rate, ok := r.resolveRate(ctx)
	if !ok {
		return
	}

	if r.installed() && r.Rate() == rate {
		return
	}

	limited := stdlibmw.NewMiddleware(limiter.New(r.store, rate),
		stdlibmw.WithKeyGetter(request.ClientIP),
		stdlibmw.WithLimitReachedHandler(func(w http.ResponseWriter, _ *http.Request) {
			respondError(w, http.StatusTooManyRequests, "Too many requests, please try again later.")
		}),
		// a failing store lets the request through
		stdlibmw.WithErrorHandler(func(w http.ResponseWriter, req *http.Request, err error) {
			r.log.Error("rate_limiter_store_failed", zap.Error(err))
			r.next.ServeHTTP(w, req)
		}),
	).Handler(r.next)

	r.rateMu.Lock()
	r.rate = rate
	r.rateMu.Unlock()
	r.install(limited)
	r.log.Info("rate_limit_applied",
		zap.Int64("limit", rate.Limit),
		zap.Duration("period", rate.Period),
	)
}

// resolveRate picks the stored rate, seeding the default when nothing is stored yet.
// An unparsable stored rate falls back to the default.
func (r *RateLimitReloader) resolveRate(ctx context.Context) (limiter.Rate, bool) {
	formatted := r.defaultRate
	stored, err := r.source.Get(ctx)
	switch {
	case err != nil:
		r.log.Warn("rate_limit_config_unavailable", zap.Error(err), zap.String("using", r.defaultRate))
	case stored != nil && stored.Rate != "":
		formatted = stored.Rate
	default:
		if err := r.source.Set(ctx, &models.RatelimitConfig{Rate: r.defaultRate}); err != nil {
			r.log.Error("rate_limit_seed_failed", zap.Error(err), zap.String("rate", r.defaultRate))
		}
	}

	rate, err := models.ParseRate(formatted)
	if err == nil {
		return rate, true
	}
	if formatted != r.defaultRate {
		r.log.Error("rate_limit_invalid", zap.Error(err), zap.String("rate", formatted))
	}
	rate, err = models.ParseRate(r.defaultRate)
	if err != nil {
		r.log.Error("default_rate_limit_invalid", zap.Error(err), zap.String("rate", r.defaultRate))
		return limiter.Rate{}, false
	}
	return rate, true
}
