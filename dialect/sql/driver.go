package sql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/assoc/dialect"
)

// Driver is a dialect.Driver implementation for SQL based databases.
type Driver struct {
	Conn
	db      *sql.DB
	dialect string
}

// NewDriver creates a new Driver with the given database handle and dialect.
func NewDriver(dialect string, db *sql.DB) *Driver {
	return &Driver{
		Conn:    Conn{ExecQuerier: db, dialect: dialect, joins: &joinCatalog{tables: make(map[string][2]string)}},
		db:      db,
		dialect: dialect,
	}
}

// Open wraps the database/sql.Open method and returns a dialect.Driver that
// implements the assoc dialect.Driver interface.
//
// SQLite enforces foreign keys only when the connection enables them. Use a
// DSN like "file:app.db?_pragma=foreign_keys(1)".
func Open(dialect, source string) (*Driver, error) {
	db, err := sql.Open(dialect, source)
	if err != nil {
		return nil, err
	}
	return NewDriver(dialect, db), nil
}

// OpenDB wraps the given database/sql.DB method with a Driver.
func OpenDB(dialect string, db *sql.DB) *Driver {
	return NewDriver(dialect, db)
}

// DB returns the underlying *sql.DB instance.
func (d Driver) DB() *sql.DB {
	return d.db
}

// Dialect implements the dialect.Dialect method.
func (d Driver) Dialect() string {
	return normalize(d.dialect)
}

// normalize maps wrapped driver names, like "sqlite3" or "postgres-otel",
// to the dialect they speak.
func normalize(name string) string {
	for _, d := range []string{dialect.MySQL, dialect.SQLite, dialect.Postgres} {
		if strings.HasPrefix(name, d) {
			return d
		}
	}
	if name == "pgx" {
		return dialect.Postgres
	}
	return name
}

// Tx starts and returns a transaction.
func (d *Driver) Tx(ctx context.Context) (dialect.Tx, error) {
	return d.BeginTx(ctx, nil)
}

// BeginTx starts a transaction with options.
func (d *Driver) BeginTx(ctx context.Context, opts *TxOptions) (*Tx, error) {
	tx, err := d.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{
		Conn: Conn{ExecQuerier: tx, dialect: d.dialect, joins: d.joins},
		tx:   tx,
	}, nil
}

// Close closes the underlying connection.
func (d *Driver) Close() error { return d.db.Close() }

// Tx implements dialect.Tx interface.
type Tx struct {
	Conn
	tx driver.Tx
}

// Commit commits the transaction.
func (tx *Tx) Commit() error { return tx.tx.Commit() }

// Rollback rolls back the transaction.
func (tx *Tx) Rollback() error { return tx.tx.Rollback() }

// ErrNestedTx is returned when a transaction is started from a transaction.
var ErrNestedTx = errors.New("dialect/sql: nested transactions are not supported")

// Tx implements the dialect.Driver interface. Transactions do not nest.
func (*Tx) Tx(context.Context) (dialect.Tx, error) {
	return nil, ErrNestedTx
}

// Close is a nop. A transaction is released by Commit or Rollback.
func (*Tx) Close() error { return nil }

// Dialect implements the dialect.Dialect method.
func (tx *Tx) Dialect() string {
	return normalize(tx.dialect)
}

// ExecQuerier wraps the standard Exec and Query methods.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Conn implements dialect.ExecQuerier given ExecQuerier.
type Conn struct {
	ExecQuerier
	dialect string
	joins   *joinCatalog
}

// Exec implements the dialect.Exec method.
func (c Conn) Exec(ctx context.Context, query string, args, v any) error {
	argv, ok := args.([]any)
	if !ok {
		return fmt.Errorf("dialect/sql: invalid type %T. expect []any for args", args)
	}
	switch v := v.(type) {
	case nil:
		if _, err := c.ExecContext(ctx, query, argv...); err != nil {
			return fmt.Errorf("dialect/sql: exec: %w", err)
		}
	case *sql.Result:
		res, err := c.ExecContext(ctx, query, argv...)
		if err != nil {
			return fmt.Errorf("dialect/sql: exec: %w", err)
		}
		*v = res
	default:
		return fmt.Errorf("dialect/sql: invalid type %T. expect *sql.Result", v)
	}
	return nil
}

// Query implements the dialect.Query method.
func (c Conn) Query(ctx context.Context, query string, args, v any) error {
	vr, ok := v.(*Rows)
	if !ok {
		return fmt.Errorf("dialect/sql: invalid type %T. expect *sql.Rows", v)
	}
	argv, ok := args.([]any)
	if !ok {
		return fmt.Errorf("dialect/sql: invalid type %T. expect []any for args", args)
	}
	rows, err := c.QueryContext(ctx, query, argv...)
	if err != nil {
		return fmt.Errorf("dialect/sql: query: %w", err)
	}
	*vr = Rows{rows}
	return nil
}

var (
	_ dialect.Driver = (*Driver)(nil)
	_ dialect.Tx     = (*Tx)(nil)
)

type (
	// Rows wraps the sql.Rows to avoid locks copy.
	Rows struct{ ColumnScanner }
	// Result is an alias to sql.Result.
	Result = sql.Result
	// TxOptions holds the transaction options to be used in DB.BeginTx.
	TxOptions = sql.TxOptions
)

// ColumnScanner is the interface that wraps the standard
// sql.Rows methods used for scanning database rows.
type ColumnScanner interface {
	Close() error
	ColumnTypes() ([]*sql.ColumnType, error)
	Columns() ([]string, error)
	Err() error
	Next() bool
	NextResultSet() bool
	Scan(dest ...any) error
}
