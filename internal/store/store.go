// Package store persists imported records and import history in PostgreSQL
// or SQLite.
//
// Card records are upserted into the cards table by id, so re-importing a
// corrected file updates the catalog in place. Records of other kinds are
// kept as JSON rows keyed by import and line. Schema changes are applied as
// embedded goose migrations when a store is opened.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/cardimport/internal/cards"
	"github.com/JonMunkholm/cardimport/internal/config"
	"github.com/JonMunkholm/cardimport/internal/core"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown database driver")

// ErrUnknownTable is returned by DeleteAll for a table outside DataTables.
var ErrUnknownTable = errors.New("unknown data table")

// DataTables lists the tables holding imported data, in safe delete order.
var DataTables = []string{"records", "cards", "import_runs"}

func checkTable(table string) error {
	for _, t := range DataTables {
		if t == table {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownTable, table)
}

// Store is a core.Repository with catalog reads and lifecycle methods.
type Store interface {
	core.Repository

	// Cards returns the card catalog ordered by id.
	Cards(ctx context.Context) ([]cards.Card, error)

	// DeleteAll removes every row of one of the DataTables.
	DeleteAll(ctx context.Context, table string) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

// Open connects to the configured database and applies pending migrations.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg)
	case config.DriverSQLite, "":
		return OpenSQLite(ctx, cfg.URL)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// recordJSON encodes the values of a record for the records table.
func recordJSON(r core.Record) ([]byte, error) {
	data, err := json.Marshal(r.Map())
	if err != nil {
		return nil, fmt.Errorf("encode record on line %d: %w", r.Line, err)
	}
	return data, nil
}

var (
	_ Store = (*Postgres)(nil)
	_ Store = (*SQLite)(nil)
)
