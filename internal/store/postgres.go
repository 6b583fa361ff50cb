package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/cardimport/internal/cards"
	"github.com/JonMunkholm/cardimport/internal/config"
	"github.com/JonMunkholm/cardimport/internal/core"
	"github.com/JonMunkholm/cardimport/internal/core/tables"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

const (
	pgUpsertCard = `
INSERT INTO cards (id, name, set_code, type, cost, is_unique, import_id, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    set_code = EXCLUDED.set_code,
    type = EXCLUDED.type,
    cost = EXCLUDED.cost,
    is_unique = EXCLUDED.is_unique,
    import_id = EXCLUDED.import_id,
    updated_at = EXCLUDED.updated_at`

	pgInsertRecord = `
INSERT INTO records (import_id, line, kind, data)
VALUES ($1, $2, $3, $4)`

	pgInsertRun = `
INSERT INTO import_runs (id, kind, file_name, fingerprint, ok, forced, records, defects, ip_address, user_agent, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	pgRunColumns = `id, kind, file_name, fingerprint, ok, forced, records, defects, ip_address, user_agent, created_at`
)

// Postgres is a Store backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres creates a pool from cfg, verifies the connection and
// applies migrations.
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	err = migrate(db, "postgres")
	db.Close()
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &Postgres{pool: pool}, nil
}

// CommitImport writes the run and its records in one transaction, the
// records as a pipelined batch. A second unforced successful run for the
// same fingerprint violates the partial unique index, yields
// core.ErrDuplicateImport and writes nothing.
func (p *Postgres) CommitImport(ctx context.Context, run core.Run, records []core.Record) (int, error) {
	batch := &pgx.Batch{}
	if run.Kind == tables.CardsKey {
		for _, c := range cards.FromRecords(records) {
			batch.Queue(pgUpsertCard,
				c.ID, c.Name, c.SetCode, c.Type,
				pgtype.Int8{Int64: int64(c.Cost), Valid: true},
				pgtype.Bool{Bool: c.Unique, Valid: true},
				run.ID,
			)
		}
	} else {
		for _, r := range records {
			data, err := recordJSON(r)
			if err != nil {
				return 0, err
			}
			batch.Queue(pgInsertRecord, run.ID, r.Line, run.Kind, data)
		}
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, pgInsertRun,
		run.ID, run.Kind, run.FileName, run.Fingerprint,
		run.OK, run.Forced, run.Records, run.Defects,
		optionalText(run.IPAddress), optionalText(run.UserAgent),
		run.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, fmt.Errorf("%w: %s", core.ErrDuplicateImport, pgErr.ConstraintName)
		}
		return 0, fmt.Errorf("insert import run: %w", err)
	}

	if batch.Len() > 0 {
		results := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return 0, fmt.Errorf("write row %d of %d: %w", i+1, batch.Len(), err)
			}
		}
		if err := results.Close(); err != nil {
			return 0, fmt.Errorf("close batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(records), nil
}

func (p *Postgres) FindImport(ctx context.Context, kind, fingerprint string) (*core.Run, error) {
	rows, err := p.pool.Query(ctx, `
SELECT `+pgRunColumns+` FROM import_runs
WHERE kind = $1 AND fingerprint = $2 AND ok AND NOT forced
ORDER BY created_at DESC
LIMIT 1`, kind, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("find import: %w", err)
	}

	run, err := pgx.CollectOneRow(rows, scanPgRun)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find import: %w", err)
	}
	return &run, nil
}

func (p *Postgres) ListImports(ctx context.Context, kind string, limit int) ([]core.Run, error) {
	rows, err := p.pool.Query(ctx, `
SELECT `+pgRunColumns+` FROM import_runs
WHERE kind = $1
ORDER BY created_at DESC
LIMIT $2`, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}

	runs, err := pgx.CollectRows(rows, scanPgRun)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	return runs, nil
}

func (p *Postgres) PruneImports(ctx context.Context, before time.Time) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM import_runs WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("prune imports: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) DeleteAll(ctx context.Context, table string) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	tag, err := p.pool.Exec(ctx, "DELETE FROM "+table)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", table, err)
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) Cards(ctx context.Context) ([]cards.Card, error) {
	rows, err := p.pool.Query(ctx, `
SELECT id, name, set_code, type, cost, is_unique FROM cards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (cards.Card, error) {
		var c cards.Card
		err := row.Scan(&c.ID, &c.Name, &c.SetCode, &c.Type, &c.Cost, &c.Unique)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return list, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func scanPgRun(row pgx.CollectableRow) (core.Run, error) {
	var (
		run       core.Run
		ip, agent pgtype.Text
		id        pgtype.UUID
	)
	err := row.Scan(
		&id, &run.Kind, &run.FileName, &run.Fingerprint,
		&run.OK, &run.Forced, &run.Records, &run.Defects,
		&ip, &agent, &run.CreatedAt,
	)
	if err != nil {
		return core.Run{}, err
	}
	run.ID = uuidString(id)
	run.IPAddress = ip.String
	run.UserAgent = agent.String
	return run, nil
}

func optionalText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func uuidString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	v, err := u.Value()
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
