// Package admin provides administrative operations for database management.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ResetTimeout is the maximum duration for database reset operations.
const ResetTimeout = 30 * time.Second

// Truncater deletes all rows of a named table.
type Truncater interface {
	DeleteAll(ctx context.Context, table string) (int64, error)
}

// TableCount is the number of rows removed from one table.
type TableCount struct {
	Table   string `json:"table"`
	Deleted int64  `json:"deleted"`
}

// ResetAll empties tables in the given order.
// This is a destructive operation - use with caution.
// It stops at the first failure and returns the counts so far.
func ResetAll(ctx context.Context, db Truncater, tables []string) ([]TableCount, error) {
	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	counts := make([]TableCount, 0, len(tables))
	for _, table := range tables {
		n, err := db.DeleteAll(ctx, table)
		if err != nil {
			return counts, fmt.Errorf("reset %s: %w", table, err)
		}
		counts = append(counts, TableCount{Table: table, Deleted: n})
		slog.Info("table reset", "table", table, "deleted", n)
	}
	return counts, nil
}
