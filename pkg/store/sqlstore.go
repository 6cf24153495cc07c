// Package store persists dispositions, convictions and enrichment runs in
// SQLite or Postgres.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Drivers lists the supported driver names.
var Drivers = []string{DriverSQLite, DriverPostgres}

const dateLayout = "2006-01-02"

// Store is a SQL-backed store. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to a database. For SQLite the DSN is a file path or
// ":memory:"; for Postgres it is a lib/pq connection string.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// One connection keeps an in-memory database alive and serializes
		// writers.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db, driver: driver}, nil
}

// Close closes the database.
func (store *Store) Close() error {
	return store.db.Close()
}

// Driver returns the driver name the store was opened with.
func (store *Store) Driver() string {
	return store.driver
}

// rebind rewrites ? placeholders as $1, $2, ... for Postgres.
func (store *Store) rebind(query string) string {
	if store.driver != DriverPostgres {
		return query
	}

	var builder strings.Builder
	builder.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			builder.WriteString("$" + strconv.Itoa(n))
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func dateValue(date *time.Time) any {
	if date == nil {
		return nil
	}
	return date.Format(dateLayout)
}

func parseDate(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	date, err := time.Parse(dateLayout, value.String)
	if err != nil {
		return nil, fmt.Errorf("invalid stored date %q: %w", value.String, err)
	}
	return &date, nil
}

func boolValue(b bool) int {
	if b {
		return 1
	}
	return 0
}

func floatValue(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func intValue(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func nullFloat(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	f := value.Float64
	return &f
}

func nullInt(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	i := int(value.Int64)
	return &i
}
