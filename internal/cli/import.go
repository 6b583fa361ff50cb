package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/JonMunkholm/cardimport/internal/core"
	"github.com/JonMunkholm/cardimport/internal/core/tables"
	"github.com/JonMunkholm/cardimport/internal/schema"
	"github.com/JonMunkholm/cardimport/internal/store"
	"github.com/spf13/cobra"
)

type importFlags struct {
	kind       string
	schemaPath string
	charset    string
	format     string
	workers    int
	strict     bool
	trim       bool
	save       bool
	force      bool
	dryRun     bool
}

func newImportCmd() *cobra.Command {
	f := &importFlags{}

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Validate a CSV file and optionally store it",
		Long: `Run the import pipeline on FILE and print every defect.

Without --save nothing is written. With --save a clean file is stored in the
configured database and the run is added to the import history; a file whose
content was already imported is refused unless --force is given.

The command exits with status 1 when the file has defects.`,
		Example: `  # Check a card list
  cardctl import cards.csv

  # Check a file against a custom schema
  cardctl import tokens.csv --schema tokens.yaml

  # Store a clean file
  cardctl import cards.csv --save`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.kind, "kind", "k", tables.CardsKey, "record kind to import")
	cmd.Flags().StringVar(&f.schemaPath, "schema", "", "YAML schema file defining the kind")
	cmd.Flags().StringVar(&f.charset, "charset", "", "input charset (default utf-8)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "table", "output format (table|json)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "row workers (0 = automatic)")
	cmd.Flags().BoolVar(&f.strict, "strict", true, "reject columns the schema does not declare")
	cmd.Flags().BoolVar(&f.trim, "trim", true, "trim whitespace around fields")
	cmd.Flags().BoolVar(&f.save, "save", false, "store the import in the database")
	cmd.Flags().BoolVar(&f.force, "force", false, "store even if the same content was imported before")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "with --save, connect but do not write")

	return cmd
}

func runImport(cmd *cobra.Command, path string, f *importFlags) error {
	if err := checkFormat(f.format); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	kind := f.kind
	if f.schemaPath != "" {
		if kind, err = registerSchema(f.schemaPath); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	svcCfg := core.ServiceConfig{Charset: f.charset, Workers: f.workers}

	var repo core.Repository
	if f.save {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := store.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer st.Close()

		repo = st
		svcCfg.MaxBytes = cfg.Import.MaxFileSize
	}

	svc := core.NewService(repo, nil, svcCfg)
	report, err := svc.Import(ctx, kind, filepath.Base(path), data, core.ImportOptions{
		Options: core.Options{StrictHeader: f.strict, Trim: f.trim},
		Force:   f.force,
		DryRun:  f.dryRun,
	})
	if err != nil {
		return err
	}

	if err := renderReport(cmd.OutOrStdout(), report, f.format); err != nil {
		return err
	}
	if !report.Result.OK {
		return ErrDefects
	}
	return nil
}

// registerSchema loads a YAML schema and registers it as a record kind.
// Loading the same schema twice reuses the first registration.
func registerSchema(path string) (string, error) {
	s, err := schema.LoadFile(path)
	if err != nil {
		return "", err
	}

	key := s.Name
	if key == "" {
		key = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if def, ok := core.Get(key); ok {
		if !reflect.DeepEqual(def.Schema, s) {
			return "", fmt.Errorf("schema %s: record kind %q already registered", path, key)
		}
		return key, nil
	}

	core.Register(core.Definition{
		Info:   core.KindInfo{Key: key, Label: key},
		Schema: s,
	})
	return key, nil
}
