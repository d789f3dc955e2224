package main

import (
	"fmt"
	"os"

	"github.com/benvon/datenight/cmd/configure/commands"
	"github.com/benvon/datenight/internal/config"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "datenight-configure",
		Short:         "Configuration tool for the Date Night API",
		Long:          "CLI tool for runtime settings stored in the database, user accounts and provider checks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewCorsCmd(commands.OpenFromConfig))
	rootCmd.AddCommand(commands.NewRatelimitCmd(commands.OpenFromConfig))
	rootCmd.AddCommand(commands.NewUsersCmd(commands.OpenFromConfig))
	rootCmd.AddCommand(commands.NewProvidersCmd(func() (*config.Config, error) { return config.Load() }))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
