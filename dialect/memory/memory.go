// Package memory provides an in-process dialect.Driver.
//
// Rows live in maps guarded by a mutex. Unique columns, foreign keys and
// join pairs are enforced the way the SQL driver's DDL enforces them, and
// deleting a referenced row applies the foreign key's cascade action.
//
// Transactions work on a private snapshot of the store and record the
// tables they read and write. Commit publishes the written tables and fails
// if any table the transaction touched was written outside it after it
// began. Writes to other tables do not conflict.
package memory

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/syssam/assoc/dialect"
	"github.com/syssam/assoc/dialect/sqlschema"
	"github.com/syssam/assoc/schema/field"
)

// ErrConflict is returned by Commit when a table used by the transaction
// changed under it.
var ErrConflict = errors.New("memory: store was modified during the transaction")

// Driver is an in-memory dialect.Driver.
type Driver struct {
	mu     sync.Mutex
	st     *state
	closed bool
}

// New returns an empty in-memory driver.
func New() *Driver {
	return &Driver{st: newState()}
}

var _ dialect.Driver = (*Driver)(nil)

// Dialect implements the dialect.Driver interface.
func (*Driver) Dialect() string { return dialect.Memory }

// Close implements the dialect.Driver interface. Operations on a closed
// driver fail.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Tx starts a transaction on a snapshot of the store.
func (d *Driver) Tx(context.Context) (dialect.Tx, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, errClosed
	}
	st := d.st.clone()
	st.reads, st.writes = make(map[string]struct{}), make(map[string]struct{})
	return &Tx{d: d, st: st, base: maps.Clone(d.st.versions)}, nil
}

var errClosed = errors.New("memory: driver is closed")

// read runs fn on the store under the lock.
func (d *Driver) read(fn func(*state) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return errClosed
	}
	return fn(d.st)
}

// write runs fn on the store under the lock.
func (d *Driver) write(fn func(*state) error) error {
	return d.read(fn)
}

// CreateTable implements the dialect.Driver interface.
func (d *Driver) CreateTable(_ context.Context, t *dialect.Table) error {
	return d.write(func(s *state) error { return s.createTable(t) })
}

// CreateJoinTable implements the dialect.Driver interface.
func (d *Driver) CreateJoinTable(_ context.Context, t *dialect.JoinTable) error {
	return d.write(func(s *state) error { return s.createJoinTable(t) })
}

// DropTable implements the dialect.Driver interface.
func (d *Driver) DropTable(_ context.Context, name string) error {
	return d.write(func(s *state) error { return s.dropTable(name) })
}

// InsertRow implements the dialect.Driver interface.
func (d *Driver) InsertRow(_ context.Context, table string, values dialect.Row) (id int64, err error) {
	err = d.write(func(s *state) error {
		id, err = s.insertRow(table, values)
		return err
	})
	return id, err
}

// SelectRows implements the dialect.Driver interface.
func (d *Driver) SelectRows(_ context.Context, table string, p *dialect.Predicate) (rows []dialect.Row, err error) {
	err = d.read(func(s *state) error {
		rows, err = s.selectRows(table, p)
		return err
	})
	return rows, err
}

// UpdateRow implements the dialect.Driver interface.
func (d *Driver) UpdateRow(_ context.Context, table string, id int64, values dialect.Row) error {
	return d.write(func(s *state) error { return s.updateRow(table, id, values) })
}

// DeleteRow implements the dialect.Driver interface.
func (d *Driver) DeleteRow(_ context.Context, table string, id int64) error {
	return d.write(func(s *state) error { return s.deleteRow(table, id) })
}

// InsertJoinRow implements the dialect.Driver interface.
func (d *Driver) InsertJoinRow(_ context.Context, join string, sourceID, targetID int64) error {
	return d.write(func(s *state) error { return s.insertJoinRow(join, sourceID, targetID) })
}

// DeleteJoinRow implements the dialect.Driver interface.
func (d *Driver) DeleteJoinRow(_ context.Context, join string, sourceID, targetID int64) error {
	return d.write(func(s *state) error { return s.deleteJoinRow(join, sourceID, targetID) })
}

// SelectJoined implements the dialect.Driver interface.
func (d *Driver) SelectJoined(_ context.Context, join string, knownID int64, dir dialect.Direction) (ids []int64, err error) {
	err = d.read(func(s *state) error {
		ids, err = s.selectJoined(join, knownID, dir)
		return err
	})
	return ids, err
}

// Tx is a transaction of the in-memory driver.
type Tx struct {
	d    *Driver
	st   *state
	base map[string]uint64 // table versions when the transaction began
	done bool
}

var _ dialect.Tx = (*Tx)(nil)

var errTxDone = errors.New("memory: transaction has already been committed or rolled back")

func (tx *Tx) run(fn func(*state) error) error {
	tx.d.mu.Lock()
	defer tx.d.mu.Unlock()
	if tx.done {
		return errTxDone
	}
	return fn(tx.st)
}

// Commit publishes the transaction snapshot.
func (tx *Tx) Commit() error {
	tx.d.mu.Lock()
	defer tx.d.mu.Unlock()
	if tx.done {
		return errTxDone
	}
	tx.done = true
	for _, names := range []map[string]struct{}{tx.st.reads, tx.st.writes} {
		for name := range names {
			if tx.d.st.versions[name] != tx.base[name] {
				return fmt.Errorf("%w: %s", ErrConflict, name)
			}
		}
	}
	for name := range tx.st.writes {
		tx.d.st.publish(tx.st, name)
	}
	return nil
}

// Rollback discards the transaction snapshot.
func (tx *Tx) Rollback() error {
	tx.d.mu.Lock()
	defer tx.d.mu.Unlock()
	if tx.done {
		return errTxDone
	}
	tx.done = true
	return nil
}

// Dialect implements the dialect.Driver interface.
func (*Tx) Dialect() string { return dialect.Memory }

// Close is a nop for transactions.
func (*Tx) Close() error { return nil }

// Tx fails, transactions do not nest.
func (*Tx) Tx(context.Context) (dialect.Tx, error) {
	return nil, errors.New("memory: cannot start a transaction within a transaction")
}

// CreateTable implements the dialect.Driver interface.
func (tx *Tx) CreateTable(_ context.Context, t *dialect.Table) error {
	return tx.run(func(s *state) error { return s.createTable(t) })
}

// CreateJoinTable implements the dialect.Driver interface.
func (tx *Tx) CreateJoinTable(_ context.Context, t *dialect.JoinTable) error {
	return tx.run(func(s *state) error { return s.createJoinTable(t) })
}

// DropTable implements the dialect.Driver interface.
func (tx *Tx) DropTable(_ context.Context, name string) error {
	return tx.run(func(s *state) error { return s.dropTable(name) })
}

// InsertRow implements the dialect.Driver interface.
func (tx *Tx) InsertRow(_ context.Context, table string, values dialect.Row) (id int64, err error) {
	err = tx.run(func(s *state) error {
		id, err = s.insertRow(table, values)
		return err
	})
	return id, err
}

// SelectRows implements the dialect.Driver interface.
func (tx *Tx) SelectRows(_ context.Context, table string, p *dialect.Predicate) (rows []dialect.Row, err error) {
	err = tx.run(func(s *state) error {
		rows, err = s.selectRows(table, p)
		return err
	})
	return rows, err
}

// UpdateRow implements the dialect.Driver interface.
func (tx *Tx) UpdateRow(_ context.Context, table string, id int64, values dialect.Row) error {
	return tx.run(func(s *state) error { return s.updateRow(table, id, values) })
}

// DeleteRow implements the dialect.Driver interface.
func (tx *Tx) DeleteRow(_ context.Context, table string, id int64) error {
	return tx.run(func(s *state) error { return s.deleteRow(table, id) })
}

// InsertJoinRow implements the dialect.Driver interface.
func (tx *Tx) InsertJoinRow(_ context.Context, join string, sourceID, targetID int64) error {
	return tx.run(func(s *state) error { return s.insertJoinRow(join, sourceID, targetID) })
}

// DeleteJoinRow implements the dialect.Driver interface.
func (tx *Tx) DeleteJoinRow(_ context.Context, join string, sourceID, targetID int64) error {
	return tx.run(func(s *state) error { return s.deleteJoinRow(join, sourceID, targetID) })
}

// SelectJoined implements the dialect.Driver interface.
func (tx *Tx) SelectJoined(_ context.Context, join string, knownID int64, dir dialect.Direction) (ids []int64, err error) {
	err = tx.run(func(s *state) error {
		ids, err = s.selectJoined(join, knownID, dir)
		return err
	})
	return ids, err
}

type (
	// state is the content of the store.
	state struct {
		tables map[string]*table
		joins  map[string]*joinTable
		// versions counts the changes of each table.
		versions map[string]uint64
		// reads and writes are only tracked on transaction snapshots.
		reads, writes map[string]struct{}
	}
	table struct {
		def  *dialect.Table
		seq  int64
		rows map[int64]dialect.Row
	}
	joinTable struct {
		def   *dialect.JoinTable
		pairs map[[2]int64]struct{}
	}
)

func newState() *state {
	return &state{
		tables:   make(map[string]*table),
		joins:    make(map[string]*joinTable),
		versions: make(map[string]uint64),
	}
}

func (s *state) read(name string) {
	if s.reads != nil {
		s.reads[name] = struct{}{}
	}
}

func (s *state) wrote(name string) {
	s.versions[name]++
	if s.writes != nil {
		s.writes[name] = struct{}{}
	}
}

// publish replaces the table or join table name of s with the one of src.
func (s *state) publish(src *state, name string) {
	if t, ok := src.tables[name]; ok {
		s.tables[name] = t
	} else {
		delete(s.tables, name)
	}
	if j, ok := src.joins[name]; ok {
		s.joins[name] = j
	} else {
		delete(s.joins, name)
	}
	s.versions[name]++
}

func (s *state) clone() *state {
	c := newState()
	for name, t := range s.tables {
		rows := make(map[int64]dialect.Row, len(t.rows))
		for id, r := range t.rows {
			rows[id] = maps.Clone(r)
		}
		c.tables[name] = &table{def: t.def, seq: t.seq, rows: rows}
	}
	for name, j := range s.joins {
		c.joins[name] = &joinTable{def: j.def, pairs: maps.Clone(j.pairs)}
	}
	c.versions = maps.Clone(s.versions)
	return c
}

func (s *state) createTable(t *dialect.Table) error {
	s.read(t.Name)
	if _, ok := s.joins[t.Name]; ok {
		return fmt.Errorf("memory: table %q already exists as a join table", t.Name)
	}
	if _, ok := s.tables[t.Name]; !ok {
		s.tables[t.Name] = &table{def: t, rows: make(map[int64]dialect.Row)}
		s.wrote(t.Name)
	}
	return nil
}

func (s *state) createJoinTable(t *dialect.JoinTable) error {
	s.read(t.Name)
	if _, ok := s.tables[t.Name]; ok {
		return fmt.Errorf("memory: join table %q already exists as an entity table", t.Name)
	}
	if _, ok := s.joins[t.Name]; !ok {
		s.joins[t.Name] = &joinTable{def: t, pairs: make(map[[2]int64]struct{})}
		s.wrote(t.Name)
	}
	return nil
}

func (s *state) dropTable(name string) error {
	s.read(name)
	_, isTable := s.tables[name]
	_, isJoin := s.joins[name]
	if isTable || isJoin {
		delete(s.tables, name)
		delete(s.joins, name)
		s.wrote(name)
	}
	return nil
}

func (s *state) table(name string) (*table, error) {
	s.read(name)
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("memory: table %q does not exist", name)
	}
	return t, nil
}

func (s *state) join(name string) (*joinTable, error) {
	s.read(name)
	j, ok := s.joins[name]
	if !ok {
		return nil, fmt.Errorf("memory: join table %q does not exist", name)
	}
	return j, nil
}

func (s *state) insertRow(name string, values dialect.Row) (int64, error) {
	t, err := s.table(name)
	if err != nil {
		return 0, err
	}
	row := make(dialect.Row, len(t.def.Columns)+1)
	for _, c := range t.def.Columns {
		row[c.Name] = nil
	}
	if err := s.assign(t, 0, row, values); err != nil {
		return 0, err
	}
	t.seq++
	row[dialect.IDColumn] = t.seq
	t.rows[t.seq] = row
	s.wrote(name)
	return t.seq, nil
}

func (s *state) selectRows(name string, p *dialect.Predicate) ([]dialect.Row, error) {
	t, err := s.table(name)
	if err != nil {
		return nil, err
	}
	ids := slices.Sorted(maps.Keys(t.rows))
	rows := make([]dialect.Row, 0, len(ids))
	for _, id := range ids {
		if r := t.rows[id]; p.Match(r) {
			rows = append(rows, maps.Clone(r))
		}
	}
	return rows, nil
}

func (s *state) updateRow(name string, id int64, values dialect.Row) error {
	t, err := s.table(name)
	if err != nil {
		return err
	}
	row, ok := t.rows[id]
	if !ok {
		return fmt.Errorf("memory: update %s %d: %w", name, id, dialect.ErrNotFound)
	}
	next := maps.Clone(row)
	if err := s.assign(t, id, next, values); err != nil {
		return err
	}
	t.rows[id] = next
	s.wrote(name)
	return nil
}

// assign copies values into row, checking columns, unique constraints and
// foreign keys. self is the id of the row being updated, or 0 on insert.
func (s *state) assign(t *table, self int64, row, values dialect.Row) error {
	for col, v := range values {
		if col == dialect.IDColumn {
			return fmt.Errorf("memory: %s: cannot assign the primary key", t.def.Name)
		}
		if _, ok := t.def.Column(col); !ok {
			return fmt.Errorf("memory: %s: unknown column %q", t.def.Name, col)
		}
		row[col] = v
	}
	for _, c := range t.def.UniqueColumns() {
		v := row[c.Name]
		if v == nil {
			continue
		}
		for id, other := range t.rows {
			if id != self && dialect.Where(dialect.EQ(c.Name, v)).Match(other) {
				return fmt.Errorf("memory: UNIQUE constraint failed: %s.%s: %w", t.def.Name, c.Name, dialect.ErrConstraint)
			}
		}
	}
	for _, fk := range t.def.ForeignKeys {
		v, ok := values[fk.Column]
		if !ok || v == nil {
			continue
		}
		if !s.exists(fk.RefTable, v) {
			return fmt.Errorf("memory: FOREIGN KEY constraint failed: %s.%s: %w", t.def.Name, fk.Column, dialect.ErrConstraint)
		}
	}
	return nil
}

func (s *state) exists(table string, id any) bool {
	s.read(table)
	t, ok := s.tables[table]
	if !ok {
		return false
	}
	n, ok := field.ToInt64(id)
	if !ok {
		return false
	}
	_, ok = t.rows[n]
	return ok
}

func (s *state) deleteRow(name string, id int64) error {
	t, err := s.table(name)
	if err != nil {
		return err
	}
	if _, ok := t.rows[id]; !ok {
		return fmt.Errorf("memory: delete %s %d: %w", name, id, dialect.ErrNotFound)
	}
	if err := s.restricted(name, id); err != nil {
		return err
	}
	// Foreign keys referencing the row.
	for _, other := range s.tables {
		for _, fk := range other.def.ForeignKeys {
			if fk.RefTable != name {
				continue
			}
			s.read(other.def.Name)
			for rid, r := range other.rows {
				if !dialect.Where(dialect.EQ(fk.Column, id)).Match(r) {
					continue
				}
				switch fk.OnDelete.OrDefault() {
				case sqlschema.Restrict:
					// Checked by restricted.
				case sqlschema.Cascade:
					if err := s.deleteRow(other.def.Name, rid); err != nil {
						return err
					}
				default:
					r[fk.Column] = nil
					s.wrote(other.def.Name)
				}
			}
		}
	}
	for _, j := range s.joins {
		if j.def.RefTables[0] != name && j.def.RefTables[1] != name {
			continue
		}
		s.read(j.def.Name)
		for pair := range j.pairs {
			if (j.def.RefTables[0] == name && pair[0] == id) || (j.def.RefTables[1] == name && pair[1] == id) {
				delete(j.pairs, pair)
				s.wrote(j.def.Name)
			}
		}
	}
	delete(t.rows, id)
	s.wrote(name)
	return nil
}

// restricted fails if a row references the given one through a RESTRICT
// foreign key.
func (s *state) restricted(name string, id int64) error {
	for _, other := range s.tables {
		for _, fk := range other.def.ForeignKeys {
			if fk.RefTable != name || fk.OnDelete.OrDefault() != sqlschema.Restrict {
				continue
			}
			s.read(other.def.Name)
			for _, r := range other.rows {
				if dialect.Where(dialect.EQ(fk.Column, id)).Match(r) {
					return fmt.Errorf("memory: FOREIGN KEY constraint failed: %s.%s: %w", other.def.Name, fk.Column, dialect.ErrConstraint)
				}
			}
		}
	}
	return nil
}

func (s *state) insertJoinRow(name string, sourceID, targetID int64) error {
	j, err := s.join(name)
	if err != nil {
		return err
	}
	pair := [2]int64{sourceID, targetID}
	if _, ok := j.pairs[pair]; ok {
		return fmt.Errorf("memory: UNIQUE constraint failed: %s(%s, %s): %w", name, j.def.Columns[0], j.def.Columns[1], dialect.ErrConstraint)
	}
	if !s.exists(j.def.RefTables[0], sourceID) || !s.exists(j.def.RefTables[1], targetID) {
		return fmt.Errorf("memory: FOREIGN KEY constraint failed: %s: %w", name, dialect.ErrConstraint)
	}
	j.pairs[pair] = struct{}{}
	s.wrote(name)
	return nil
}

func (s *state) deleteJoinRow(name string, sourceID, targetID int64) error {
	j, err := s.join(name)
	if err != nil {
		return err
	}
	pair := [2]int64{sourceID, targetID}
	if _, ok := j.pairs[pair]; ok {
		delete(j.pairs, pair)
		s.wrote(name)
	}
	return nil
}

func (s *state) selectJoined(name string, knownID int64, dir dialect.Direction) ([]int64, error) {
	j, err := s.join(name)
	if err != nil {
		return nil, err
	}
	known, other := 0, 1
	if dir == dialect.Inverse {
		known, other = 1, 0
	}
	ids := make([]int64, 0)
	for pair := range j.pairs {
		if pair[known] == knownID {
			ids = append(ids, pair[other])
		}
	}
	slices.Sort(ids)
	return ids, nil
}
