package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IdeaRepository stores each user's custom wheel ideas as a JSON array
type IdeaRepository struct {
	db *DB
}

// NewIdeaRepository creates a new idea repository
func NewIdeaRepository(db *DB) *IdeaRepository {
	return &IdeaRepository{db: db}
}

// Get returns the stored list. found is false when the user never saved one.
func (r *IdeaRepository) Get(ctx context.Context, userID uuid.UUID) (ideas []string, found bool, err error) {
	var raw string
	err = r.db.QueryRowContext(ctx, `SELECT ideas FROM user_ideas WHERE user_id = $1`, userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get ideas: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &ideas); err != nil {
		return nil, false, fmt.Errorf("failed to decode ideas: %w", err)
	}
	if ideas == nil {
		ideas = []string{}
	}
	return ideas, true, nil
}

// Update applies modify to the stored list inside one transaction and returns the saved
// result. A user without a stored list starts from seed. Concurrent updates for the same
// user are serialized, so none is lost.
func (r *IdeaRepository) Update(ctx context.Context, userID uuid.UUID, seed []string, modify func(ideas []string) []string) ([]string, error) {
	seedRaw, err := encodeIdeas(seed)
	if err != nil {
		return nil, err
	}

	var saved []string
	err = r.db.InTx(ctx, func(tx *Tx) error {
		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_ideas (user_id, ideas, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id) DO NOTHING
		`, userID, seedRaw, now); err != nil {
			return fmt.Errorf("failed to seed ideas: %w", err)
		}

		var raw string
		query := `SELECT ideas FROM user_ideas WHERE user_id = $1` + r.db.forUpdate()
		if err := tx.QueryRowContext(ctx, query, userID).Scan(&raw); err != nil {
			return fmt.Errorf("failed to get ideas: %w", err)
		}
		var current []string
		if err := json.Unmarshal([]byte(raw), &current); err != nil {
			return fmt.Errorf("failed to decode ideas: %w", err)
		}
		if current == nil {
			current = []string{}
		}

		next := modify(current)
		if next == nil {
			next = []string{}
		}
		nextRaw, err := encodeIdeas(next)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE user_ideas SET ideas = $2, updated_at = $3 WHERE user_id = $1`,
			userID, nextRaw, now); err != nil {
			return fmt.Errorf("failed to save ideas: %w", err)
		}
		saved = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func encodeIdeas(ideas []string) (string, error) {
	if ideas == nil {
		ideas = []string{}
	}
	raw, err := json.Marshal(ideas)
	if err != nil {
		return "", fmt.Errorf("failed to encode ideas: %w", err)
	}
	return string(raw), nil
}

