// Package dbconn provides connection provisioning and a query helper shared
// by all checks.
package dbconn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/ymajdalawi/dqwatch/internal/config"
)

// Target identifies which configured database a check wants.
type Target string

const (
	// TargetPrimary is the storefront database.
	TargetPrimary Target = "primary"
	// TargetSecondary is the ERP database.
	TargetSecondary Target = "secondary"
)

// Row is one query result row keyed by column name.
type Row = map[string]any

// Provider lazily opens one connection pool per target and shares it across
// checks for the lifetime of a run. Checks run sequentially, so access is
// single-threaded.
type Provider struct {
	cfg config.DatabasesConfig
	dbs map[Target]*sql.DB
}

// NewProvider creates a Provider over the configured database targets.
// Nothing is opened until a check asks for a target.
func NewProvider(cfg config.DatabasesConfig) *Provider {
	return &Provider{
		cfg: cfg,
		dbs: make(map[Target]*sql.DB),
	}
}

// DB returns the connection pool for target, opening it on first use.
// Missing connection parameters are a configuration error.
func (p *Provider) DB(target Target) (*sql.DB, error) {
	if db, ok := p.dbs[target]; ok {
		return db, nil
	}

	var dc config.DatabaseConfig
	switch target {
	case TargetPrimary:
		dc = p.cfg.Primary
	case TargetSecondary:
		dc = p.cfg.Secondary
	default:
		return nil, fmt.Errorf("unknown database target: %q", target)
	}

	if dc.User == "" || dc.Name == "" {
		return nil, fmt.Errorf("database %q is not configured: user and name are required", target)
	}

	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", dc.Host, dc.Port)
	mc.User = dc.User
	mc.Passwd = dc.Password
	mc.DBName = dc.Name
	mc.ParseTime = true

	db, err := sql.Open("mysql", mc.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("opening database %q: %w", target, err)
	}
	p.dbs[target] = db
	return db, nil
}

// Close closes every pool that was opened during the run.
func (p *Provider) Close() error {
	var errs []error
	for target, db := range p.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing database %q: %w", target, err))
		}
	}
	return errors.Join(errs...)
}

// Query runs a parameterized query and returns all rows keyed by column name.
// Arguments are always bound by the driver, never interpolated into the query
// text. []byte cells are converted to string so rows render cleanly.
func Query(ctx context.Context, db *sql.DB, query string, args ...any) ([]Row, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	var result []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return result, nil
}

// Placeholders returns a comma-separated list of n bind markers for use in an
// IN clause.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, 0, 2*n-1)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, '?')
	}
	return string(b)
}
