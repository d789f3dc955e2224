package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/datenight/internal/models"
	"github.com/google/uuid"
)

// PreferencesRepository stores venue listing preferences per user
type PreferencesRepository struct {
	db *DB
}

// NewPreferencesRepository creates a new preferences repository
func NewPreferencesRepository(db *DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

// Get returns the user's preferences, or the defaults when none were saved
func (r *PreferencesRepository) Get(ctx context.Context, userID uuid.UUID) (models.Preferences, error) {
	p := models.Preferences{}
	err := r.db.QueryRowContext(ctx, `
		SELECT price_range_min, price_range_max, max_distance_miles, updated_at
		FROM user_preferences WHERE user_id = $1
	`, userID).Scan(&p.PriceRangeMin, &p.PriceRangeMax, &p.MaxDistanceMiles, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultPreferences(), nil
	}
	if err != nil {
		return models.Preferences{}, fmt.Errorf("failed to get preferences: %w", err)
	}
	return p, nil
}

// Set upserts the user's preferences
func (r *PreferencesRepository) Set(ctx context.Context, userID uuid.UUID, p *models.Preferences) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_preferences (user_id, price_range_min, price_range_max, max_distance_miles, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			price_range_min = EXCLUDED.price_range_min,
			price_range_max = EXCLUDED.price_range_max,
			max_distance_miles = EXCLUDED.max_distance_miles,
			updated_at = EXCLUDED.updated_at
	`, userID, p.PriceRangeMin, p.PriceRangeMax, p.MaxDistanceMiles, now)
	if err != nil {
		return fmt.Errorf("failed to set preferences: %w", err)
	}
	p.UpdatedAt = now
	return nil
}
