package commands

import (
	"context"
	"fmt"

	"github.com/benvon/datenight/internal/config"
	"github.com/benvon/datenight/internal/database"
)

// Opener connects to the database a command operates on. The returned func releases it.
type Opener func(ctx context.Context) (*database.DB, func(), error)

// OpenFromConfig loads the service configuration, then opens and migrates its database
func OpenFromConfig(ctx context.Context) (*database.DB, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, func() { _ = db.Close() }, nil
}
