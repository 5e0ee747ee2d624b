package dialect

import (
	"context"
	"errors"
)

// Dialect names for external usage.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
	Memory   = "memory"
)

// Storage sentinels. Drivers wrap them so the core can tell storage-level
// constraint and missing-row failures apart from ambient errors.
var (
	// ErrNotFound is returned when an update or delete targets a missing row.
	ErrNotFound = errors.New("dialect: row not found")

	// ErrConstraint is returned on uniqueness, foreign-key or check violations.
	ErrConstraint = errors.New("dialect: constraint violation")
)

// Row is a storage row keyed by column name. The primary key is stored
// under the IDColumn key.
type Row map[string]any

// IDColumn is the primary key column of every entity table.
const IDColumn = "id"

// Direction selects which side of a join table is known in SelectJoined.
type Direction uint8

const (
	// Forward looks up target ids for a known source id.
	Forward Direction = iota
	// Inverse looks up source ids for a known target id.
	Inverse
)

// String returns the direction name.
func (d Direction) String() string {
	if d == Inverse {
		return "inverse"
	}
	return "forward"
}

// Driver is the storage collaborator the core issues schema, read and write
// operations against.
type Driver interface {
	// CreateTable creates the entity table if it does not exist.
	CreateTable(ctx context.Context, t *Table) error
	// CreateJoinTable creates the join table if it does not exist.
	CreateJoinTable(ctx context.Context, t *JoinTable) error
	// DropTable drops the table if it exists.
	DropTable(ctx context.Context, name string) error

	// InsertRow inserts a row and returns its assigned id.
	InsertRow(ctx context.Context, table string, values Row) (int64, error)
	// SelectRows returns all rows matching the predicate ordered by id.
	SelectRows(ctx context.Context, table string, p *Predicate) ([]Row, error)
	// UpdateRow replaces the given columns of the row with the given id.
	UpdateRow(ctx context.Context, table string, id int64, values Row) error
	// DeleteRow deletes the row with the given id.
	DeleteRow(ctx context.Context, table string, id int64) error

	// InsertJoinRow links a source and a target in a join table.
	InsertJoinRow(ctx context.Context, join string, sourceID, targetID int64) error
	// DeleteJoinRow unlinks a pair. Deleting an absent pair is not an error.
	DeleteJoinRow(ctx context.Context, join string, sourceID, targetID int64) error
	// SelectJoined returns the ids linked to knownID, ordered ascending.
	SelectJoined(ctx context.Context, join string, knownID int64, dir Direction) ([]int64, error)

	// Tx starts and returns a new transaction.
	Tx(ctx context.Context) (Tx, error)
	// Close closes the underlying storage.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps the Driver interface and adds the Commit and Rollback methods.
type Tx interface {
	Driver
	// Commit commits the transaction.
	Commit() error
	// Rollback rolls back the transaction.
	Rollback() error
}
