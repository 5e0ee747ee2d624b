// Package dialect defines the storage boundary of the association core.
//
// The core never builds SQL itself. It resolves entities and associations
// into Table and JoinTable descriptors and issues row-level operations
// against a Driver:
//
//	type Driver interface {
//	    CreateTable(ctx, *Table) error
//	    CreateJoinTable(ctx, *JoinTable) error
//	    DropTable(ctx, name) error
//	    InsertRow(ctx, table, Row) (int64, error)
//	    SelectRows(ctx, table, *Predicate) ([]Row, error)
//	    UpdateRow(ctx, table, id, Row) error
//	    DeleteRow(ctx, table, id) error
//	    InsertJoinRow(ctx, join, sourceID, targetID) error
//	    DeleteJoinRow(ctx, join, sourceID, targetID) error
//	    SelectJoined(ctx, join, knownID, Direction) ([]int64, error)
//	    Tx(ctx) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// Drivers report missing rows by wrapping ErrNotFound and constraint
// violations by wrapping ErrConstraint.
//
// # Sub-packages
//
//   - dialect/memory: in-process driver with snapshot transactions
//   - dialect/sql: database/sql driver for SQLite, PostgreSQL and MySQL
//   - dialect/sqlschema: cascade actions of foreign keys
package dialect
