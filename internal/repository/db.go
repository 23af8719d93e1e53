package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup by ID matches no row.
var ErrNotFound = errors.New("not found")

// InitDB opens (or creates) a SQLite database at the given path and ensures
// all required tables exist. Pass ":memory:" for an in-memory database.
func InitDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Every pooled connection to ":memory:" would get its own empty database.
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS locations (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			commission_type TEXT,
			commission_rate TEXT,
			commission_flat_cents INTEGER,
			commission_tiers_json TEXT,
			commission_base TEXT,
			commission_min_guarantee_cents INTEGER
		)`,

		`CREATE TABLE IF NOT EXISTS machines (
			id TEXT PRIMARY KEY,
			location_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			FOREIGN KEY (location_id) REFERENCES locations(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_machines_location ON machines(location_id)`,

		`CREATE TABLE IF NOT EXISTS finance_terms (
			machine_id TEXT PRIMARY KEY,
			monthly_payment_cents INTEGER,
			purchase_price_cents INTEGER,
			term_months INTEGER,
			FOREIGN KEY (machine_id) REFERENCES machines(id)
		)`,

		`CREATE TABLE IF NOT EXISTS fee_rules (
			key TEXT PRIMARY KEY,
			percent TEXT,
			flat_cents INTEGER
		)`,

		`CREATE TABLE IF NOT EXISTS sales_imports (
			id TEXT PRIMARY KEY,
			format TEXT NOT NULL,
			file_hash TEXT UNIQUE NOT NULL,
			record_count INTEGER NOT NULL,
			ingested_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS sales (
			id TEXT PRIMARY KEY,
			machine_id TEXT NOT NULL,
			occurred_at DATETIME NOT NULL,
			qty INTEGER,
			unit_price_cents INTEGER,
			unit_cost_cents INTEGER,
			payment_method TEXT,
			import_id TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_occurred_at ON sales(occurred_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_machine ON sales(machine_id)`,

		`CREATE TABLE IF NOT EXISTS commission_statements (
			id TEXT PRIMARY KEY,
			location_id TEXT NOT NULL,
			month TEXT NOT NULL,
			method TEXT NOT NULL,
			base_amount_cents INTEGER NOT NULL,
			raw_commission_cents INTEGER NOT NULL,
			commission_cents INTEGER NOT NULL,
			floor_applied INTEGER NOT NULL,
			gross_cents INTEGER NOT NULL,
			fees_cents INTEGER NOT NULL,
			net_cents INTEGER NOT NULL,
			computed_at DATETIME NOT NULL,
			UNIQUE (location_id, month)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_statements_month ON commission_statements(month)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}

	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// nullable maps SQL NULLs to nil so the parse boundary sees them as absent.
func nullable(v any) any {
	switch x := v.(type) {
	case sql.NullString:
		if !x.Valid {
			return nil
		}
		return x.String
	case sql.NullInt64:
		if !x.Valid {
			return nil
		}
		return x.Int64
	default:
		return v
	}
}
