package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/benvon/datenight/internal/models"
	"github.com/joho/godotenv"
)

const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"

	ProviderModeLive = "live"
	ProviderModeMock = "mock"
	ProviderModeAuto = "auto"

	// DefaultLat and DefaultLng are used when a request carries no usable coordinates
	DefaultLat = 40.3916
	DefaultLng = -111.8508

	developmentJWTSecret = "datenight-development-secret"
)

// DevelopmentOrigins are allowed by CORS outside production
var DevelopmentOrigins = []string{"http://localhost:5173", "http://localhost:5174"}

// Config holds application configuration
type Config struct {
	DatabaseURL       string
	ServerPort        string
	Environment       string
	AllowedOrigins    string
	JWTSecret         string
	JWTIssuer         string
	GoogleMapsAPIKey  string
	YelpAPIKey        string
	OpenWeatherAPIKey string
	ProviderMode      string
	ProviderTimeout   time.Duration
	DefaultLat        float64
	DefaultLng        float64
	RedisURL          string
	RateLimit         string
	EnableHSTS        bool
	ServerDebugMode   bool
	OTELEnabled       bool
	OTELEndpoint      string
}

// Load reads .env files when present, then the process environment
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// godotenv never overrides variables that are already set
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return loadFrom(os.Getenv)
}

func loadFrom(getenv func(string) string) (*Config, error) {
	e := env(getenv)
	cfg := &Config{
		DatabaseURL:       e.str("DATABASE_URL", ""),
		ServerPort:        e.str("SERVER_PORT", e.str("PORT", "3001")),
		Environment:       strings.ToLower(e.str("ENVIRONMENT", e.str("NODE_ENV", EnvironmentDevelopment))),
		AllowedOrigins:    e.str("ALLOWED_ORIGINS", ""),
		JWTSecret:         e.str("JWT_SECRET", ""),
		JWTIssuer:         e.str("JWT_ISSUER", "datenight"),
		GoogleMapsAPIKey:  e.str("GOOGLE_MAPS_API_KEY", ""),
		YelpAPIKey:        e.str("YELP_API_KEY", ""),
		OpenWeatherAPIKey: e.str("OPENWEATHER_API_KEY", ""),
		ProviderMode:      strings.ToLower(e.str("PROVIDER_MODE", ProviderModeAuto)),
		ProviderTimeout:   e.duration("PROVIDER_TIMEOUT", 10*time.Second),
		DefaultLat:        e.float("DEFAULT_LAT", DefaultLat),
		DefaultLng:        e.float("DEFAULT_LNG", DefaultLng),
		RedisURL:          e.str("REDIS_URL", ""),
		RateLimit:         e.str("RATE_LIMIT", models.DefaultRateLimit),
		EnableHSTS:        e.bool("ENABLE_HSTS", false),
		ServerDebugMode:   e.bool("SERVER_DEBUG_MODE", false),
		OTELEnabled:       e.bool("OTEL_ENABLED", false),
		OTELEndpoint:      e.str("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = developmentJWTSecret
	}
	switch cfg.ProviderMode {
	case ProviderModeLive, ProviderModeMock, ProviderModeAuto:
	default:
		return nil, fmt.Errorf("PROVIDER_MODE must be live, mock or auto, got %q", cfg.ProviderMode)
	}
	if _, err := models.ParseRate(cfg.RateLimit); err != nil {
		return nil, fmt.Errorf("RATE_LIMIT: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == EnvironmentProduction
}

// CORSOrigins returns the allow-list used when no CORS config is stored
func (c *Config) CORSOrigins() []string {
	if !c.IsProduction() {
		return append([]string(nil), DevelopmentOrigins...)
	}
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// UsesLiveProvider decides between the live and mock variant of a provider
func (c *Config) UsesLiveProvider(apiKey string) bool {
	switch c.ProviderMode {
	case ProviderModeLive:
		return true
	case ProviderModeMock:
		return false
	default:
		return apiKey != ""
	}
}

type env func(string) string

func (e env) str(key, defaultValue string) string {
	if value := strings.TrimSpace(e(key)); value != "" {
		return value
	}
	return defaultValue
}

func (e env) bool(key string, defaultValue bool) bool {
	if value := strings.ToLower(e.str(key, "")); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func (e env) float(key string, defaultValue float64) float64 {
	if value := e.str(key, ""); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func (e env) duration(key string, defaultValue time.Duration) time.Duration {
	if value := e.str(key, ""); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
