package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ulule/limiter/v3"
)

// DefaultRateLimit allows 100 requests per client IP in a 15 minute window
const DefaultRateLimit = "100-15M"

// CorsConfig is a stored CORS allow-list, read by the API and edited with the admin CLI
type CorsConfig struct {
	ConfigKey        string    `json:"config_key"`
	AllowedOrigins   string    `json:"allowed_origins"`
	AllowCredentials bool      `json:"allow_credentials"`
	MaxAge           int       `json:"max_age"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// RatelimitConfig is a stored limiter rate such as "100-15M"
type RatelimitConfig struct {
	ConfigKey string    `json:"config_key"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var ratePeriods = map[byte]time.Duration{
	'S': time.Second,
	'M': time.Minute,
	'H': time.Hour,
	'D': 24 * time.Hour,
}

// ParseRate reads "<limit>-<period>" where period is an optional multiplier followed by
// S, M, H or D. "100-M" and "100-15M" are both accepted.
func ParseRate(formatted string) (limiter.Rate, error) {
	limitPart, periodPart, ok := strings.Cut(strings.TrimSpace(formatted), "-")
	if !ok || periodPart == "" {
		return limiter.Rate{}, fmt.Errorf("incorrect rate format %q", formatted)
	}
	limit, err := strconv.ParseInt(limitPart, 10, 64)
	if err != nil || limit <= 0 {
		return limiter.Rate{}, fmt.Errorf("incorrect rate limit %q", limitPart)
	}

	periodPart = strings.ToUpper(periodPart)
	unit, ok := ratePeriods[periodPart[len(periodPart)-1]]
	if !ok {
		return limiter.Rate{}, fmt.Errorf("incorrect rate period %q", periodPart)
	}
	multiplier := int64(1)
	if digits := periodPart[:len(periodPart)-1]; digits != "" {
		multiplier, err = strconv.ParseInt(digits, 10, 64)
		if err != nil || multiplier <= 0 {
			return limiter.Rate{}, fmt.Errorf("incorrect rate period %q", periodPart)
		}
	}

	return limiter.Rate{
		Formatted: formatted,
		Period:    time.Duration(multiplier) * unit,
		Limit:     limit,
	}, nil
}
