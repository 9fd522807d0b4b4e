// Package sqlite implements the repository interfaces on SQLite.
//
// The driver is modernc.org/sqlite, a pure Go translation of SQLite, so the
// binary builds without a C toolchain. Queries are assembled with squirrel and
// executed through database/sql; DDL lives in migrate as plain SQL.
//
// Integrity rules live in the schema, not in Go: emails and names are UNIQUE
// COLLATE NOCASE, favourites are UNIQUE per (user, target) and CHECK that
// exactly one target column is set, and foreign keys cascade. The stores map
// the resulting constraint errors onto apperror values, which is what makes
// duplicate detection race-free under concurrent requests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

// psql builds statements with "?" placeholders, which is what SQLite expects.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// querier is the subset of *sql.DB and *sql.Tx the stores use, so the same
// helper can run inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// DB owns the connection pool and hands out one store per table.
type DB struct {
	conn *sql.DB
}

// ParseURL turns a DATABASE_URL style value into a path the driver accepts.
//
//	sqlite:////tmp/test.db → /tmp/test.db
//	sqlite:///data/app.db  → data/app.db
//	:memory:               → :memory:
//	data/app.db            → data/app.db
func ParseURL(url string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", fmt.Errorf("sqlite: empty database url")
	}
	for _, scheme := range []string{"postgres://", "postgresql://", "mysql://"} {
		if strings.HasPrefix(url, scheme) {
			return "", fmt.Errorf("sqlite: unsupported database url scheme %q", scheme)
		}
	}
	if rest, ok := strings.CutPrefix(url, "sqlite://"); ok {
		// sqlite:///relative and sqlite:////absolute, as SQLAlchemy spells them.
		rest = strings.TrimPrefix(rest, "/")
		if rest == "" {
			return "", fmt.Errorf("sqlite: database url %q has no path", url)
		}
		return rest, nil
	}
	return url, nil
}

// New opens (creating if needed) the database at path and runs migrations.
// Use ":memory:" for a throwaway database in tests.
func New(path string) (*DB, error) {
	inMemory := path == ":memory:" || strings.Contains(path, "mode=memory")

	// Pragmas in the DSN are applied to every pooled connection; foreign_keys
	// is per-connection in SQLite, so setting it once with Exec is not enough.
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if inMemory {
		// Each connection to :memory: is a separate database.
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if !inMemory {
		if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
		}
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

func (db *DB) Users() *UserStore {
	return &UserStore{conn: db.conn}
}

func (db *DB) People() *PeopleStore {
	return &PeopleStore{conn: db.conn}
}

func (db *DB) Planets() *PlanetStore {
	return &PlanetStore{conn: db.conn}
}

func (db *DB) Favourites() *FavouriteStore {
	return &FavouriteStore{conn: db.conn}
}

// withTx runs fn in a transaction, committing on success and rolling back on
// any error. fn must only use tx: with a single-connection pool, touching
// db.conn inside fn would deadlock.
func withTx(ctx context.Context, conn *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}

// applyList adds LIMIT/OFFSET to b. A non-positive limit means "all rows".
func applyList(b sq.SelectBuilder, limit, offset int) sq.SelectBuilder {
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	if offset > 0 {
		if limit <= 0 {
			// SQLite only accepts OFFSET after a LIMIT.
			b = b.Limit(uint64(1<<62))
		}
		b = b.Offset(uint64(offset))
	}
	return b
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS planets (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			name            TEXT NOT NULL UNIQUE COLLATE NOCASE,
			diameter        TEXT,
			rotation_period TEXT,
			orbital_period  TEXT,
			gravity         REAL,
			population      INTEGER,
			climate         TEXT,
			terrain         TEXT,
			surface_water   TEXT,
			image           TEXT,
			species         TEXT,
			films           TEXT
		);
	`)
	if err != nil {
		return fmt.Errorf("creating planets table: %w", err)
	}

	// A person outlives their homeworld's row: the link is cleared, not the person.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS people (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			name         TEXT NOT NULL UNIQUE COLLATE NOCASE,
			birth_year   INTEGER,
			eye_color    TEXT,
			gender       TEXT,
			hair_color   TEXT,
			height       TEXT,
			weight       TEXT,
			skin_color   TEXT,
			species      TEXT,
			starships    TEXT,
			vehicles     TEXT,
			master       TEXT,
			disciple     TEXT,
			image        TEXT,
			films        TEXT,
			homeworld_id INTEGER REFERENCES planets(id) ON DELETE SET NULL
		);
		CREATE INDEX IF NOT EXISTS idx_people_homeworld_id ON people(homeworld_id);
	`)
	if err != nil {
		return fmt.Errorf("creating people table: %w", err)
	}

	// UNIQUE ignores NULLs, so each pair of constraints only bites on the
	// column that is actually set.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS favourites (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			people_id  INTEGER REFERENCES people(id) ON DELETE CASCADE,
			planet_id  INTEGER REFERENCES planets(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CHECK ((people_id IS NULL) <> (planet_id IS NULL)),
			UNIQUE (user_id, people_id),
			UNIQUE (user_id, planet_id)
		);
		CREATE INDEX IF NOT EXISTS idx_favourites_user_id ON favourites(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating favourites table: %w", err)
	}

	return nil
}
