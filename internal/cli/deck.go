package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/JonMunkholm/cardimport/internal/cards"
	"github.com/JonMunkholm/cardimport/internal/core"
	"github.com/JonMunkholm/cardimport/internal/deck"
	"github.com/JonMunkholm/cardimport/internal/store"
	"github.com/spf13/cobra"
)

func newDeckCmd() *cobra.Command {
	var catalogPath, format string
	var merge bool

	cmd := &cobra.Command{
		Use:   "deck FILE",
		Short: "Check a JSON deck list against the card catalog",
		Long: `Check a deck list of the form {"entries": [{"cardId": "...", "qty": 1}]}.

The catalog is read from a card CSV given with --catalog, or from the
configured database when --catalog is empty. The command exits with
status 1 when the deck breaks a rule.`,
		Example: `  cardctl deck mydeck.json --catalog cards.csv
  cardctl deck mydeck.json --merge`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			d, err := deck.LoadFile(args[0])
			if err != nil {
				return err
			}

			list, err := loadCatalog(cmd, catalogPath)
			if err != nil {
				return err
			}

			res := deck.Validate(d, deck.CatalogFrom(list), deck.Options{MergeDuplicates: merge})
			if err := renderDeckResult(cmd.OutOrStdout(), d, res, format); err != nil {
				return err
			}
			if !res.OK {
				return ErrDefects
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&catalogPath, "catalog", "c", "", "card CSV to use as the catalog")
	cmd.Flags().BoolVar(&merge, "merge", false, "sum repeated card ids instead of reporting them")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format (table|json)")

	return cmd
}

// loadCatalog reads cards from a CSV file, or from the store when path is empty.
func loadCatalog(cmd *cobra.Command, path string) ([]cards.Card, error) {
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		st, err := store.Open(cmd.Context(), cfg.Database)
		if err != nil {
			return nil, err
		}
		defer st.Close()
		return st.Cards(cmd.Context())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	text, err := core.DecodeInput(bytes.NewReader(data), "", 0)
	if err != nil {
		return nil, err
	}

	res := cards.Import(text, core.Options{StrictHeader: true, Trim: true})
	if !res.OK {
		return nil, fmt.Errorf("catalog %s has %d defects, first: %v", path, len(res.Defects), res.Defects[0])
	}
	return res.Records, nil
}
