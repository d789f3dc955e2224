package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/benvon/datenight/internal/catalog"
	"github.com/benvon/datenight/internal/config"
	"github.com/benvon/datenight/internal/database"
	"github.com/benvon/datenight/internal/handlers"
	"github.com/benvon/datenight/internal/logger"
	"github.com/benvon/datenight/internal/middleware"
	"github.com/benvon/datenight/internal/models"
	"github.com/benvon/datenight/internal/services/auth"
	"github.com/benvon/datenight/internal/services/places"
	"github.com/benvon/datenight/internal/services/reviews"
	"github.com/benvon/datenight/internal/services/upstream"
	"github.com/benvon/datenight/internal/services/weather"
	"github.com/benvon/datenight/internal/session"
	"github.com/benvon/datenight/internal/telemetry"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

// Set at build time with -ldflags "-X main.version=..."
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

const reloadInterval = time.Minute

type providers struct {
	places  places.Provider
	reviews reviews.Provider
	weather weather.Provider
}

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.New(cfg.Environment, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	zapLogger.Info("starting_server",
		zap.String("version", version),
		zap.String("environment", cfg.Environment),
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("provider_mode", cfg.ProviderMode),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	tracingEnabled := false
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else if tp, err := telemetry.InitTracer(context.Background(), telemetry.ServiceName, version, cfg.OTELEndpoint); err != nil {
			zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		} else {
			tracingEnabled = true
			zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
					zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
				}
			}()
		}
	}

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startCancel()

	db, err := database.Open(startCtx, cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	if err := db.Migrate(startCtx); err != nil {
		zapLogger.Fatal("failed_to_migrate_database", zap.Error(err))
	}
	zapLogger.Info("connected_to_database", zap.String("driver", db.Driver()))

	// Redis is optional; without it revocations and rate limit counters stay in process
	var redisClient *redis.Client
	var sessions session.Store = session.NewMemoryStore()
	if cfg.RedisURL != "" {
		redisClient, err = session.Connect(startCtx, cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		sessions = session.NewRedisStore(redisClient)
		zapLogger.Info("connected_to_redis")
	} else {
		zapLogger.Warn("redis_not_configured_using_memory_stores")
	}

	limiterStore, err := middleware.NewLimiterStore(redisClient)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limit_store", zap.Error(err))
	}

	// Repositories
	userRepo := database.NewUserRepository(db)
	prefsRepo := database.NewPreferencesRepository(db)
	favoriteRepo := database.NewFavoriteRepository(db)
	ideaRepo := database.NewIdeaRepository(db)
	dateRepo := database.NewDateEventRepository(db)
	corsConfigRepo := database.NewCorsConfigRepository(db)
	ratelimitConfigRepo := database.NewRatelimitConfigRepository(db)

	// Services
	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		zapLogger.Fatal("failed_to_create_token_issuer", zap.Error(err))
	}
	authService := auth.NewService(userRepo, sessions, tokens)
	ideaCatalog, err := catalog.Default()
	if err != nil {
		zapLogger.Fatal("failed_to_load_idea_catalog", zap.Error(err))
	}
	provs := newProviders(cfg, upstream.NewHTTPClient(cfg.ProviderTimeout), zapLogger)

	// Handlers
	rep := handlers.Reporter{Logger: zapLogger, Production: cfg.IsProduction()}
	healthChecker := handlers.NewHealthChecker(db)
	if redisClient != nil {
		healthChecker.Add("redis", handlers.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}))
	}
	routes := handlers.Routes{
		Auth: handlers.NewAuthHandler(authService, rep),
		Lookup: handlers.NewLookupHandler(provs.places, provs.reviews, provs.weather, favoriteRepo, prefsRepo,
			models.Location{Lat: cfg.DefaultLat, Lng: cfg.DefaultLng}, rep),
		Ideas:        handlers.NewIdeaHandler(ideaCatalog, ideaRepo, rep),
		Account:      handlers.NewAccountHandler(prefsRepo, favoriteRepo, dateRepo, rep),
		RequireAuth:  middleware.Auth(authService, zapLogger),
		OptionalAuth: middleware.OptionalAuth(authService),
	}

	r := mux.NewRouter()

	// In gorilla/mux the middleware registered first is the outermost wrapper
	if tracingEnabled {
		r.Use(otelmux.Middleware(telemetry.ServiceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	corsReloader := middleware.NewCORSReloader(corsConfigRepo, cfg.CORSOrigins(), zapLogger, reloadInterval)
	r.Use(corsReloader.Middleware())
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger, cfg.IsProduction()))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Ops routes are not rate limited
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", handlers.Version(handlers.VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildTime: buildTime,
	})).Methods(http.MethodGet)
	handlers.NewOpenAPIHandler(filepath.Join("api", "openapi", "openapi.yaml")).RegisterRoutes(r)

	rateLimitReloader := middleware.NewRateLimitReloader(limiterStore, ratelimitConfigRepo, cfg.RateLimit, zapLogger, reloadInterval)
	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(rateLimitReloader.Middleware())
	routes.Mount(apiRouter)

	// Preflight requests are answered by the CORS middleware before reaching this
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   45 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	reloadCtx, reloadCancel := context.WithCancel(context.Background())
	defer reloadCancel()
	go corsReloader.Start(reloadCtx)
	go rateLimitReloader.Start(reloadCtx)

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	reloadCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}
	zapLogger.Info("server_exited")
}

// newProviders picks the live or mock variant of every lookup provider
func newProviders(cfg *config.Config, client *http.Client, zapLogger *zap.Logger) providers {
	var p providers
	if cfg.UsesLiveProvider(cfg.GoogleMapsAPIKey) {
		p.places = places.NewLive(client, cfg.GoogleMapsAPIKey)
	} else {
		p.places = places.NewMock()
	}
	if cfg.UsesLiveProvider(cfg.YelpAPIKey) {
		p.reviews = reviews.NewLive(client, cfg.YelpAPIKey)
	} else {
		p.reviews = reviews.NewMock()
	}
	if cfg.UsesLiveProvider(cfg.OpenWeatherAPIKey) {
		p.weather = weather.NewLive(client, cfg.OpenWeatherAPIKey)
	} else {
		p.weather = weather.NewMock()
	}

	zapLogger.Info("providers_configured",
		zap.Bool("places_live", isLive(p.places)),
		zap.Bool("reviews_live", isLive(p.reviews)),
		zap.Bool("weather_live", isLive(p.weather)),
	)
	return p
}

func isLive(p any) bool {
	switch p.(type) {
	case *places.Live, *reviews.Live, *weather.Live:
		return true
	}
	return false
}
