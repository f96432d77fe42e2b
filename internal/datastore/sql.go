package datastore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// SQLClient runs requests against a relational database through database/sql.
type SQLClient struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQL opens and pings a database for the given driver.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLClient, error) {
	d, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(d.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	if d.Name == SQLite.Name {
		// a shared in-memory database lives only as long as one connection
		db.SetMaxOpenConns(1)
	}

	return &SQLClient{db: db, dialect: d}, nil
}

// NewSQLClient wraps an already opened handle.
func NewSQLClient(db *sql.DB, d Dialect) *SQLClient {
	return &SQLClient{db: db, dialect: d}
}

func (c *SQLClient) DB() *sql.DB { return c.db }

func (c *SQLClient) Driver() string { return c.dialect.Name }

func (c *SQLClient) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *SQLClient) Close() error {
	return c.db.Close()
}

func (c *SQLClient) Query(ctx context.Context, req Request) ([]Row, error) {
	query, args, err := BuildSQL(c.dialect, req)
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := make([]Row, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(Row, len(cols))
		for i, name := range cols {
			row[name] = normalizeValue(values[i])
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return result, nil
}
