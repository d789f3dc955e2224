package database

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/benvon/datenight/internal/models"
	"github.com/google/uuid"
)

// FavoriteRepository stores venues a user saved under a category key
type FavoriteRepository struct {
	db *DB
}

// NewFavoriteRepository creates a new favorite repository
func NewFavoriteRepository(db *DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// List returns the user's favorites for category, oldest first
func (r *FavoriteRepository) List(ctx context.Context, userID uuid.UUID, category string) ([]*models.Favorite, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, venue_id, venue, created_at
		FROM favorites
		WHERE user_id = $1 AND category = $2
		ORDER BY created_at, venue_id
	`, userID, normalizeCategory(category))
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer func() { _ = rows.Close() }()

	favorites := []*models.Favorite{}
	for rows.Next() {
		f := &models.Favorite{UserID: userID}
		var raw string
		if err := rows.Scan(&f.Category, &f.VenueID, &raw, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &f.Venue); err != nil {
			return nil, fmt.Errorf("failed to decode favorite venue %s: %w", f.VenueID, err)
		}
		f.Venue.Favorite = true
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return favorites, nil
}

// IDs returns the set of venue ids the user favorited under category
func (r *FavoriteRepository) IDs(ctx context.Context, userID uuid.UUID, category string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT venue_id FROM favorites WHERE user_id = $1 AND category = $2
	`, userID, normalizeCategory(category))
	if err != nil {
		return nil, fmt.Errorf("failed to list favorite ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan favorite id: %w", err)
		}
		ids[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list favorite ids: %w", err)
	}
	return ids, nil
}

// Upsert saves f. A venue is kept at most once per user and category; saving it again
// refreshes the stored venue snapshot.
func (r *FavoriteRepository) Upsert(ctx context.Context, f *models.Favorite) error {
	f.Category = normalizeCategory(f.Category)
	if f.Category == "" || f.VenueID == "" {
		return fmt.Errorf("favorite requires category and venue id")
	}
	f.Venue.Favorite = true
	raw, err := json.Marshal(f.Venue)
	if err != nil {
		return fmt.Errorf("failed to encode favorite venue: %w", err)
	}
	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO favorites (user_id, category, venue_id, venue, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, category, venue_id) DO UPDATE SET
			venue = EXCLUDED.venue
	`, f.UserID, f.Category, f.VenueID, string(raw), now)
	if err != nil {
		return fmt.Errorf("failed to save favorite: %w", err)
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	return nil
}

// Delete removes one favorite
func (r *FavoriteRepository) Delete(ctx context.Context, userID uuid.UUID, category, venueID string) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM favorites WHERE user_id = $1 AND category = $2 AND venue_id = $3
	`, userID, normalizeCategory(category), venueID)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	return requireRow(result, "favorite")
}

func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}
