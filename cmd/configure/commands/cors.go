package commands

import (
	"fmt"
	"strings"

	"github.com/benvon/datenight/internal/database"
	"github.com/benvon/datenight/internal/middleware"
	"github.com/benvon/datenight/internal/models"
	"github.com/spf13/cobra"
)

// NewCorsCmd creates the cors configuration command with list and set subcommands.
func NewCorsCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cors",
		Short: "Manage CORS configuration",
		Long:  "List or update CORS allowed origins and options (stored in database, picked up by running servers within a minute).",
	}
	cmd.AddCommand(newCorsListCmd(open))
	cmd.AddCommand(newCorsSetCmd(open))
	return cmd
}

func newCorsListCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List current CORS configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, release, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			c, err := database.NewCorsConfigRepository(db).Get(cmd.Context())
			if err != nil {
				return fmt.Errorf("get cors config: %w", err)
			}
			out := cmd.OutOrStdout()
			if c == nil {
				fmt.Fprintln(out, "No CORS configuration in database. Use 'cors set' to add one.")
				return nil
			}
			fmt.Fprintln(out, "CORS configuration:")
			fmt.Fprintf(out, "  Allowed origins: %s\n", strings.Join(database.AllowedOriginsSlice(c.AllowedOrigins), ", "))
			fmt.Fprintf(out, "  Allow credentials: %v\n", c.AllowCredentials)
			fmt.Fprintf(out, "  Max-Age: %d\n", c.MaxAge)
			return nil
		},
	}
}

func newCorsSetCmd(open Opener) *cobra.Command {
	var origins string
	var allowCreds bool
	var maxAge int
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set CORS configuration",
		Long:  "Update CORS allowed origins (comma-separated). Stored in database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			list := database.AllowedOriginsSlice(origins)
			if len(list) == 0 {
				return fmt.Errorf("--origins is required (comma-separated list)")
			}
			if maxAge < 0 {
				return fmt.Errorf("--max-age cannot be negative")
			}
			db, release, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			c := &models.CorsConfig{
				AllowedOrigins:   strings.Join(list, ","),
				AllowCredentials: allowCreds,
				MaxAge:           maxAge,
			}
			if err := database.NewCorsConfigRepository(db).Set(cmd.Context(), c); err != nil {
				return fmt.Errorf("set cors config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "CORS configuration updated.")
			return nil
		},
	}
	cmd.Flags().StringVar(&origins, "origins", "", "Comma-separated allowed origins (required)")
	cmd.Flags().BoolVar(&allowCreds, "allow-credentials", true, "Allow credentials")
	cmd.Flags().IntVar(&maxAge, "max-age", middleware.DefaultCORSMaxAge, "Access-Control-Max-Age (seconds)")
	return cmd
}
