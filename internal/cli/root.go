// Package cli implements cardctl, the command line front end for card
// imports.
//
// Commands validate CSV and deck files locally. Commands that touch the
// database read the same environment configuration as the server.
package cli

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/cardimport/internal/config"
	"github.com/JonMunkholm/cardimport/internal/core"
	_ "github.com/JonMunkholm/cardimport/internal/core/tables" // registers the cards kind
	"github.com/JonMunkholm/cardimport/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// ErrDefects is returned when a command ran but its input broke rules.
// The report has already been printed.
var ErrDefects = errors.New("input has defects")

// Version is set at build time.
var Version = "dev"

// NewRootCmd creates the cardctl command tree.
func NewRootCmd() *cobra.Command {
	var logLevel, logFormat string

	root := &cobra.Command{
		Use:   "cardctl",
		Short: "Validate and import card CSV files",
		Long: `cardctl runs the card import pipeline from the command line.

Files are tokenized, checked against the kind's schema and reported with
every defect at once. Use --save to store a clean import in the database
configured by DATABASE_URL and DB_DRIVER.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logging.SetupWriter(cmd.ErrOrStderr(), logLevel, logFormat)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug|info|warn|error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text|json)")

	root.AddCommand(newImportCmd())
	root.AddCommand(newDeckCmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newKindsCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newResetCmd())

	return root
}

// ErrorMessage formats a command error for the terminal. Known failures
// carry their user message, support code and action; anything else,
// including flag and argument errors, is printed as is.
func ErrorMessage(err error) string {
	if !core.IsUserFacing(err) {
		return "Error: " + err.Error()
	}
	return fmt.Sprintf("Error: %s\n  %v", core.FormatUserError(err), err)
}

// loadConfig reads .env when present and then the environment.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func checkFormat(format string) error {
	switch format {
	case "table", "json":
		return nil
	default:
		return fmt.Errorf("unknown format %q (want table or json)", format)
	}
}
