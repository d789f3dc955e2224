package commands

import (
	"fmt"
	"strings"

	"github.com/benvon/datenight/internal/database"
	"github.com/benvon/datenight/internal/models"
	"github.com/spf13/cobra"
)

// NewRatelimitCmd creates the ratelimit configuration command with list and set subcommands.
func NewRatelimitCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Manage rate limit configuration",
		Long:  "List or update the per-client rate limit (e.g. 100-15M, 5-S). Stored in database.",
	}
	cmd.AddCommand(newRatelimitListCmd(open))
	cmd.AddCommand(newRatelimitSetCmd(open))
	return cmd
}

func newRatelimitListCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List current rate limit configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, release, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			c, err := database.NewRatelimitConfigRepository(db).Get(cmd.Context())
			if err != nil {
				return fmt.Errorf("get ratelimit config: %w", err)
			}
			out := cmd.OutOrStdout()
			if c == nil {
				fmt.Fprintf(out, "No rate limit configuration in database; servers use RATE_LIMIT (default %s).\n", models.DefaultRateLimit)
				return nil
			}
			rate, err := models.ParseRate(c.Rate)
			if err != nil {
				fmt.Fprintf(out, "Rate limit configuration: %s (invalid: %v)\n", c.Rate, err)
				return nil
			}
			fmt.Fprintf(out, "Rate limit configuration: %s (%d requests per %s)\n", c.Rate, rate.Limit, rate.Period)
			return nil
		},
	}
}

func newRatelimitSetCmd(open Opener) *cobra.Command {
	var rate string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set rate limit configuration",
		Long:  "Update the rate limit (e.g. 5-S, 100-15M, 1000-H). Stored in database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			rate = strings.TrimSpace(rate)
			if rate == "" {
				return fmt.Errorf("--rate is required (e.g. 100-15M)")
			}
			if _, err := models.ParseRate(rate); err != nil {
				return fmt.Errorf("invalid --rate: %w", err)
			}
			db, release, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			if err := database.NewRatelimitConfigRepository(db).Set(cmd.Context(), &models.RatelimitConfig{Rate: rate}); err != nil {
				return fmt.Errorf("set ratelimit config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Rate limit configuration updated.")
			return nil
		},
	}
	cmd.Flags().StringVar(&rate, "rate", "", "Rate (e.g. 5-S, 100-15M, 1000-H) (required)")
	return cmd
}
