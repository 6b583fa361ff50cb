package cli

import (
	"os"

	"github.com/JonMunkholm/cardimport/internal/core"
	"github.com/JonMunkholm/cardimport/internal/core/tables"
	"github.com/JonMunkholm/cardimport/internal/schema"
	"github.com/JonMunkholm/cardimport/internal/store"
	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "schema [KIND]",
		Short: "Print a record kind's schema as YAML",
		Long: `Print the schema of KIND (default cards) in the YAML format accepted by
--schema and IMPORT_SCHEMA_DIR. Use it as a starting point for a new kind.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadSchemaDir(dir); err != nil {
				return err
			}
			kind := tables.CardsKey
			if len(args) == 1 {
				kind = args[0]
			}
			def, err := core.Lookup(kind)
			if err != nil {
				return err
			}
			return schema.Dump(cmd.OutOrStdout(), def.Schema)
		},
	}
	cmd.Flags().StringVar(&dir, "schema-dir", os.Getenv("IMPORT_SCHEMA_DIR"), "directory of YAML schemas to register")
	return cmd
}

func newKindsCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "kinds",
		Short: "List the registered record kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadSchemaDir(dir); err != nil {
				return err
			}
			renderKinds(cmd.OutOrStdout(), core.NewService(nil, nil, core.ServiceConfig{}).Kinds())
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "schema-dir", os.Getenv("IMPORT_SCHEMA_DIR"), "directory of YAML schemas to register")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var limit int
	var format string

	cmd := &cobra.Command{
		Use:   "history [KIND]",
		Short: "Show recent imports from the database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			kind := tables.CardsKey
			if len(args) == 1 {
				kind = args[0]
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := core.NewService(st, nil, core.ServiceConfig{}).History(cmd.Context(), kind, limit)
			if err != nil {
				return err
			}

			if format == "json" {
				if runs == nil {
					runs = []core.Run{}
				}
				return writeJSON(cmd.OutOrStdout(), runs)
			}
			renderRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", core.DefaultHistoryLimit, "number of runs to show")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table|json)")
	return cmd
}

// loadSchemaDir registers the kinds in dir, if any.
func loadSchemaDir(dir string) error {
	if dir == "" {
		return nil
	}
	_, err := tables.LoadDir(dir)
	return err
}
