package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/benvon/datenight/internal/models"
	"github.com/google/uuid"
)

// DateEventRepository stores saved date plans
type DateEventRepository struct {
	db *DB
}

// NewDateEventRepository creates a new date event repository
func NewDateEventRepository(db *DB) *DateEventRepository {
	return &DateEventRepository{db: db}
}

// Create inserts a date plan
func (r *DateEventRepository) Create(ctx context.Context, e *models.DateEvent) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	var coords *string
	if e.Coordinates != nil {
		raw, err := json.Marshal(e.Coordinates)
		if err != nil {
			return fmt.Errorf("failed to encode coordinates: %w", err)
		}
		s := string(raw)
		coords = &s
	}
	var weather *string
	if len(e.Weather) > 0 {
		s := string(e.Weather)
		weather = &s
	}

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO date_events (id, user_id, title, description, location, date, weather, coordinates, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, e.ID, e.UserID, e.Title, e.Description, e.Location, e.Date.UTC(), weather, coords, now, now)
	if err != nil {
		return fmt.Errorf("failed to create date event: %w", err)
	}
	e.CreatedAt = now
	e.UpdatedAt = now
	return nil
}

// ListByUser returns the user's plans ordered by date
func (r *DateEventRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.DateEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, title, description, location, date, weather, coordinates, created_at, updated_at
		FROM date_events
		WHERE user_id = $1
		ORDER BY date, created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list date events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := []*models.DateEvent{}
	for rows.Next() {
		e := &models.DateEvent{}
		var weather, coords sql.NullString
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Description, &e.Location, &e.Date,
			&weather, &coords, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan date event: %w", err)
		}
		if weather.Valid && weather.String != "" {
			e.Weather = json.RawMessage(weather.String)
		}
		if coords.Valid && coords.String != "" {
			e.Coordinates = &models.Location{}
			if err := json.Unmarshal([]byte(coords.String), e.Coordinates); err != nil {
				return nil, fmt.Errorf("failed to decode coordinates for date event %s: %w", e.ID, err)
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list date events: %w", err)
	}
	return events, nil
}

// Delete removes a plan owned by userID
func (r *DateEventRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM date_events WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete date event: %w", err)
	}
	return requireRow(result, "date event")
}
