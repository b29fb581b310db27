package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect selects placeholder syntax for SQLStorage.
type Dialect uint8

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

const defaultTable = "gogate_kv"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ErrInvalidTable is returned for table names that are not plain identifiers.
var ErrInvalidTable = errors.New("persist: invalid table name")

// SQLStorage keeps entries in a two-column key/value table.
type SQLStorage struct {
	db      *sql.DB
	dialect Dialect
	table   string

	getQ string
	setQ string
}

// OpenSQLite opens (or creates) a SQLite database file using the pure-Go
// modernc driver.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("persist: open sqlite: %w", err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY under concurrent saves.
	db.SetMaxOpenConns(1)
	return db, nil
}

// OpenPostgres opens a Postgres pool through pgx's database/sql driver.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("persist: open postgres: %w", err)
	}
	return db, nil
}

// NewSQLStorage binds to db. An empty table uses "gogate_kv".
func NewSQLStorage(db *sql.DB, dialect Dialect, table string) (*SQLStorage, error) {
	if db == nil {
		return nil, ErrNilStorage
	}
	if table == "" {
		table = defaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	s := &SQLStorage{db: db, dialect: dialect, table: table}
	s.getQ = fmt.Sprintf("SELECT v FROM %s WHERE k = %s", table, s.ph(1))
	s.setQ = fmt.Sprintf(
		"INSERT INTO %s (k, v) VALUES (%s, %s) ON CONFLICT (k) DO UPDATE SET v = excluded.v",
		table, s.ph(1), s.ph(2),
	)
	return s, nil
}

func (s *SQLStorage) ph(n int) string {
	if s.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// EnsureSchema creates the key/value table when missing.
func (s *SQLStorage) EnsureSchema(ctx context.Context) error {
	q := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (k TEXT PRIMARY KEY, v TEXT NOT NULL)", s.table)
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("persist: ensure schema: %w", err)
	}
	return nil
}

func (s *SQLStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, s.getQ, key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("persist: get %q: %w", key, err)
	}
	return v, true, nil
}

func (s *SQLStorage) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, s.setQ, key, value); err != nil {
		return fmt.Errorf("persist: set %q: %w", key, err)
	}
	return nil
}

func (s *SQLStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("persist: begin: %w", err)
	}
	q := fmt.Sprintf("DELETE FROM %s WHERE k = %s", s.table, s.ph(1))
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, q, k); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("persist: delete %q: %w", k, err)
		}
	}
	return tx.Commit()
}
