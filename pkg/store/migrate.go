package store

import (
	"context"
	"fmt"
	"strings"
)

// schema uses {{id}} for the auto-increment primary key, which differs
// between SQLite and Postgres.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		input TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		total INTEGER NOT NULL DEFAULT 0,
		assigned INTEGER NOT NULL DEFAULT 0,
		ambiguous INTEGER NOT NULL DEFAULT 0,
		no_statute INTEGER NOT NULL DEFAULT 0,
		format_errors INTEGER NOT NULL DEFAULT 0,
		ilcs_errors INTEGER NOT NULL DEFAULT 0,
		iucr_errors INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS convictions (
		id {{id}},
		run_id TEXT NOT NULL,
		case_number TEXT NOT NULL,
		ctlbkngno TEXT NOT NULL DEFAULT '',
		fgrprntno TEXT NOT NULL DEFAULT '',
		statepoliceid TEXT NOT NULL DEFAULT '',
		fbiidno TEXT NOT NULL DEFAULT '',
		dob TEXT,
		st_address TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		zipcode TEXT NOT NULL DEFAULT '',
		sex TEXT NOT NULL DEFAULT '',
		chrgdispdate TEXT,
		final_statute TEXT NOT NULL DEFAULT '',
		final_chrgdesc TEXT NOT NULL DEFAULT '',
		final_chrgtype TEXT NOT NULL DEFAULT '',
		final_chrgclass TEXT NOT NULL DEFAULT '',
		iucr_code TEXT NOT NULL DEFAULT '',
		iucr_category TEXT NOT NULL DEFAULT '',
		inchoate TEXT NOT NULL DEFAULT '',
		lat DOUBLE PRECISION,
		lon DOUBLE PRECISION
	)`,
	`CREATE TABLE IF NOT EXISTS dispositions (
		id {{id}},
		run_id TEXT NOT NULL,
		conviction_id BIGINT,
		` + strings.Join(dispositionColumnDefinitions, ",\n\t\t") + `
	)`,
	`CREATE INDEX IF NOT EXISTS dispositions_case_number ON dispositions (case_number)`,
	`CREATE INDEX IF NOT EXISTS dispositions_final_statute ON dispositions (final_statute)`,
	`CREATE INDEX IF NOT EXISTS dispositions_iucr_code ON dispositions (iucr_code)`,
	`CREATE INDEX IF NOT EXISTS convictions_case_number ON convictions (case_number)`,
	`CREATE INDEX IF NOT EXISTS convictions_iucr_code ON convictions (iucr_code)`,
}

// Migrate creates any missing tables and indexes.
func (store *Store) Migrate(ctx context.Context) error {
	id := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if store.driver == DriverPostgres {
		id = "BIGSERIAL PRIMARY KEY"
	}

	for _, statement := range schema {
		statement = strings.ReplaceAll(statement, "{{id}}", id)
		if _, err := store.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}
