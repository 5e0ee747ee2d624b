// Package sql implements the assoc storage driver on top of database/sql.
//
// The driver speaks SQLite (modernc.org/sqlite), PostgreSQL (lib/pq) and
// MySQL (go-sql-driver/mysql). Statements are built by a small dialect-aware
// Builder that quotes identifiers and numbers placeholders:
//
//	b := sql.Dialect(dialect.Postgres)
//	b.Select("users", dialect.Where(dialect.EQ("username", "CoolUser")))
//	query, args := b.Query()
//	// SELECT * FROM "users" WHERE "username" = $1 ORDER BY "id"
//
// # Opening a Driver
//
//	drv, err := sql.Open(dialect.SQLite, "file:app.db?_pragma=foreign_keys(1)")
//	if err != nil {
//	    return err
//	}
//	client := assoc.NewClient(reg, drv)
//
// # Column Types
//
// Entity tables get an auto-assigned integer primary key named "id". String,
// date, timestamp and UUID attributes are stored as TEXT (VARCHAR(255) on
// MySQL) in their canonical text form. Foreign keys and join columns are
// 64-bit integers.
//
// # Errors
//
// Uniqueness, foreign-key and check violations of all three databases are
// wrapped with dialect.ErrConstraint. Updates and deletes of missing rows
// return errors wrapping dialect.ErrNotFound.
//
// # Statistics
//
// StatsDriver and DebugDriver wrap a Driver to record query statistics or
// log every statement with log/slog.
package sql
