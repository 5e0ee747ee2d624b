package sql

import (
	"context"
	"database/sql"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/syssam/assoc/dialect"
	"github.com/syssam/assoc/dialect/sql/schema"
	"github.com/syssam/assoc/schema/field"
)

func (c Conn) builder() *Builder {
	return Dialect(c.dialect)
}

func (c Conn) exec(ctx context.Context, b *Builder) (sql.Result, error) {
	query, args := b.Query()
	var res sql.Result
	if err := c.Exec(ctx, query, args, &res); err != nil {
		return nil, wrapError(err)
	}
	return res, nil
}

// scan runs the query and calls fn with the column names and the values of
// every row.
func (c Conn) scan(ctx context.Context, b *Builder, fn func(columns []string, values []any) error) error {
	query, args := b.Query()
	var rows Rows
	if err := c.Query(ctx, query, args, &rows); err != nil {
		return wrapError(err)
	}
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("dialect/sql: columns: %w", err)
	}
	values := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("dialect/sql: scan: %w", err)
		}
		if err := fn(columns, values); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("dialect/sql: rows: %w", err)
	}
	return rows.Close()
}

// CreateTable implements the dialect.Driver interface.
func (c Conn) CreateTable(ctx context.Context, t *dialect.Table) error {
	if r := schema.ValidateTable(normalize(c.dialect), t); r.HasErrors() {
		return fmt.Errorf("dialect/sql: table %q: %w", t.Name, r.Err())
	}
	_, err := c.exec(ctx, c.builder().CreateTable(t))
	return err
}

// CreateJoinTable implements the dialect.Driver interface.
func (c Conn) CreateJoinTable(ctx context.Context, t *dialect.JoinTable) error {
	if r := schema.ValidateJoinTable(normalize(c.dialect), t); r.HasErrors() {
		return fmt.Errorf("dialect/sql: join table %q: %w", t.Name, r.Err())
	}
	if _, err := c.exec(ctx, c.builder().CreateJoinTable(t)); err != nil {
		return err
	}
	c.joins.put(t.Name, t.Columns)
	return nil
}

// DropTable implements the dialect.Driver interface.
func (c Conn) DropTable(ctx context.Context, name string) error {
	_, err := c.exec(ctx, c.builder().DropTable(name))
	return err
}

// InsertRow implements the dialect.Driver interface.
func (c Conn) InsertRow(ctx context.Context, table string, values dialect.Row) (int64, error) {
	columns := slices.Sorted(maps.Keys(values))
	args := make([]any, len(columns))
	for i, col := range columns {
		args[i] = values[col]
	}
	b := c.builder().Insert(table, columns, args)
	if b.dialect != dialect.Postgres {
		res, err := c.exec(ctx, b)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}
	var id int64
	err := c.scan(ctx, b.Returning(dialect.IDColumn), func(_ []string, vs []any) error {
		n, ok := field.ToInt64(vs[0])
		if !ok {
			return fmt.Errorf("dialect/sql: unexpected id type %T", vs[0])
		}
		id = n
		return nil
	})
	return id, err
}

// SelectRows implements the dialect.Driver interface.
func (c Conn) SelectRows(ctx context.Context, table string, p *dialect.Predicate) ([]dialect.Row, error) {
	var rows []dialect.Row
	err := c.scan(ctx, c.builder().Select(table, p), func(columns []string, vs []any) error {
		r := make(dialect.Row, len(columns))
		for i, col := range columns {
			r[col] = vs[i]
		}
		rows = append(rows, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateRow implements the dialect.Driver interface.
func (c Conn) UpdateRow(ctx context.Context, table string, id int64, values dialect.Row) error {
	if len(values) == 0 {
		return nil
	}
	columns := slices.Sorted(maps.Keys(values))
	args := make([]any, len(columns))
	for i, col := range columns {
		args[i] = values[col]
	}
	res, err := c.exec(ctx, c.builder().Update(table, id, columns, args))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil || n > 0 {
		return err
	}
	// MySQL reports matched rows with unchanged values as not affected.
	ok, err := c.exists(ctx, table, id)
	switch {
	case err != nil:
		return err
	case !ok:
		return fmt.Errorf("%w: %s %d", dialect.ErrNotFound, table, id)
	}
	return nil
}

func (c Conn) exists(ctx context.Context, table string, id int64) (bool, error) {
	var found bool
	err := c.scan(ctx, c.builder().SelectColumn(table, dialect.IDColumn, dialect.Where(dialect.EQ(dialect.IDColumn, id))), func([]string, []any) error {
		found = true
		return nil
	})
	return found, err
}

// DeleteRow implements the dialect.Driver interface.
func (c Conn) DeleteRow(ctx context.Context, table string, id int64) error {
	res, err := c.exec(ctx, c.builder().Delete(table, dialect.Where(dialect.EQ(dialect.IDColumn, id))))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %d", dialect.ErrNotFound, table, id)
	}
	return nil
}

// joinCatalog remembers the columns of the join tables created or read by
// a driver and its transactions.
type joinCatalog struct {
	mu     sync.RWMutex
	tables map[string][2]string
}

func (j *joinCatalog) get(name string) ([2]string, bool) {
	if j == nil {
		return [2]string{}, false
	}
	j.mu.RLock()
	defer j.mu.RUnlock()
	cols, ok := j.tables[name]
	return cols, ok
}

func (j *joinCatalog) put(name string, cols [2]string) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.tables[name] = cols
}

// joinColumns returns the (source, target) columns of a join table. Tables
// not created through the driver are read from the database.
func (c Conn) joinColumns(ctx context.Context, join string) ([2]string, error) {
	if cols, ok := c.joins.get(join); ok {
		return cols, nil
	}
	var cols [2]string
	query, args := c.builder().WriteString("SELECT * FROM ").Ident(join).WriteString(" WHERE 1 = 0").Query()
	var rows Rows
	if err := c.Query(ctx, query, args, &rows); err != nil {
		return cols, wrapError(err)
	}
	defer rows.Close()
	names, err := rows.Columns()
	if err != nil {
		return cols, fmt.Errorf("dialect/sql: columns: %w", err)
	}
	if len(names) != 2 {
		return cols, fmt.Errorf("dialect/sql: join table %q has %d columns", join, len(names))
	}
	copy(cols[:], names)
	c.joins.put(join, cols)
	return cols, rows.Close()
}

// InsertJoinRow implements the dialect.Driver interface.
func (c Conn) InsertJoinRow(ctx context.Context, join string, sourceID, targetID int64) error {
	cols, err := c.joinColumns(ctx, join)
	if err != nil {
		return err
	}
	_, err = c.exec(ctx, c.builder().Insert(join, cols[:], []any{sourceID, targetID}))
	return err
}

// DeleteJoinRow implements the dialect.Driver interface.
func (c Conn) DeleteJoinRow(ctx context.Context, join string, sourceID, targetID int64) error {
	cols, err := c.joinColumns(ctx, join)
	if err != nil {
		return err
	}
	_, err = c.exec(ctx, c.builder().Delete(join, dialect.Where(
		dialect.EQ(cols[0], sourceID),
		dialect.EQ(cols[1], targetID),
	)))
	return err
}

// SelectJoined implements the dialect.Driver interface.
func (c Conn) SelectJoined(ctx context.Context, join string, knownID int64, dir dialect.Direction) ([]int64, error) {
	cols, err := c.joinColumns(ctx, join)
	if err != nil {
		return nil, err
	}
	known, other := cols[0], cols[1]
	if dir == dialect.Inverse {
		known, other = other, known
	}
	var ids []int64
	err = c.scan(ctx, c.builder().SelectColumn(join, other, dialect.Where(dialect.EQ(known, knownID))), func(_ []string, vs []any) error {
		id, ok := field.ToInt64(vs[0])
		if !ok {
			return fmt.Errorf("dialect/sql: unexpected id type %T", vs[0])
		}
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
