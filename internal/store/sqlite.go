package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/cardimport/internal/cards"
	"github.com/JonMunkholm/cardimport/internal/core"
	"github.com/JonMunkholm/cardimport/internal/core/tables"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	sqliteUpsertCard = `
INSERT INTO cards (id, name, set_code, type, cost, is_unique, import_id, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    name = excluded.name,
    set_code = excluded.set_code,
    type = excluded.type,
    cost = excluded.cost,
    is_unique = excluded.is_unique,
    import_id = excluded.import_id,
    updated_at = excluded.updated_at`

	sqliteInsertRecord = `
INSERT INTO records (import_id, line, kind, data)
VALUES (?, ?, ?, ?)`

	sqliteInsertRun = `
INSERT INTO import_runs (id, kind, file_name, fingerprint, ok, forced, records, defects, ip_address, user_agent, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	sqliteRunColumns = `id, kind, file_name, fingerprint, ok, forced, records, defects, ip_address, user_agent, created_at`
)

// SQLite is a Store backed by a single SQLite database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens the database at path and applies migrations.
// Use ":memory:" for a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	dsn := path
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps an
	// in-memory database alive for the life of the store.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := migrate(db, "sqlite"); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// CommitImport writes the run and its records in one transaction. The run
// row goes first so a duplicate fingerprint aborts before any record is
// written.
func (s *SQLite) CommitImport(ctx context.Context, run core.Run, records []core.Record) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertSQLiteRun(ctx, tx, run); err != nil {
		return 0, err
	}

	if len(records) > 0 {
		if run.Kind == tables.CardsKey {
			err = saveCards(ctx, tx, run.ID, cards.FromRecords(records))
		} else {
			err = saveRecords(ctx, tx, run.Kind, run.ID, records)
		}
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(records), nil
}

func insertSQLiteRun(ctx context.Context, tx *sql.Tx, run core.Run) error {
	_, err := tx.ExecContext(ctx, sqliteInsertRun,
		run.ID, run.Kind, run.FileName, run.Fingerprint,
		run.OK, run.Forced, run.Records, run.Defects,
		nullString(run.IPAddress), nullString(run.UserAgent),
		run.CreatedAt.UnixMilli(),
	)
	if err != nil {
		var sqlErr *sqlite.Error
		if errors.As(err, &sqlErr) && sqlErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return fmt.Errorf("%w: %s", core.ErrDuplicateImport, run.Fingerprint)
		}
		return fmt.Errorf("insert import run: %w", err)
	}
	return nil
}

func saveCards(ctx context.Context, tx *sql.Tx, importID string, list []cards.Card) error {
	stmt, err := tx.PrepareContext(ctx, sqliteUpsertCard)
	if err != nil {
		return fmt.Errorf("prepare card upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UnixMilli()
	for _, c := range list {
		if _, err := stmt.ExecContext(ctx, c.ID, c.Name, c.SetCode, c.Type, c.Cost, c.Unique, importID, now); err != nil {
			return fmt.Errorf("upsert card %s: %w", c.ID, err)
		}
	}
	return nil
}

func saveRecords(ctx context.Context, tx *sql.Tx, kind, importID string, records []core.Record) error {
	stmt, err := tx.PrepareContext(ctx, sqliteInsertRecord)
	if err != nil {
		return fmt.Errorf("prepare record insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		data, err := recordJSON(r)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, importID, r.Line, kind, string(data)); err != nil {
			return fmt.Errorf("insert record on line %d: %w", r.Line, err)
		}
	}
	return nil
}

func (s *SQLite) FindImport(ctx context.Context, kind, fingerprint string) (*core.Run, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT `+sqliteRunColumns+` FROM import_runs
WHERE kind = ? AND fingerprint = ? AND ok = 1 AND forced = 0
ORDER BY created_at DESC
LIMIT 1`, kind, fingerprint)

	run, err := scanSQLiteRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find import: %w", err)
	}
	return &run, nil
}

func (s *SQLite) ListImports(ctx context.Context, kind string, limit int) ([]core.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+sqliteRunColumns+` FROM import_runs
WHERE kind = ?
ORDER BY created_at DESC, rowid DESC
LIMIT ?`, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	defer rows.Close()

	var runs []core.Run
	for rows.Next() {
		run, err := scanSQLiteRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list imports: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLite) PruneImports(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM import_runs WHERE created_at < ?`, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune imports: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLite) DeleteAll(ctx context.Context, table string) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", table, err)
	}
	return res.RowsAffected()
}

func (s *SQLite) Cards(ctx context.Context) ([]cards.Card, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, set_code, type, cost, is_unique FROM cards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var list []cards.Card
	for rows.Next() {
		var c cards.Card
		if err := rows.Scan(&c.ID, &c.Name, &c.SetCode, &c.Type, &c.Cost, &c.Unique); err != nil {
			return nil, fmt.Errorf("list cards: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRun(row rowScanner) (core.Run, error) {
	var (
		run       core.Run
		ip, agent sql.NullString
		created   int64
	)
	err := row.Scan(
		&run.ID, &run.Kind, &run.FileName, &run.Fingerprint,
		&run.OK, &run.Forced, &run.Records, &run.Defects,
		&ip, &agent, &created,
	)
	if err != nil {
		return core.Run{}, err
	}
	run.IPAddress = ip.String
	run.UserAgent = agent.String
	run.CreatedAt = time.UnixMilli(created).UTC()
	return run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
