package cli

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/cardimport/internal/admin"
	"github.com/JonMunkholm/cardimport/internal/store"
	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all imported cards, records and import history",
		Long: `Delete every row of the data tables in the configured database.

The schema is kept. This cannot be undone, so --yes is required.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to reset without --yes")
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

			counts, err := admin.ResetAll(cmd.Context(), st, store.DataTables)
			for _, c := range counts {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows deleted\n", c.Table, c.Deleted)
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
