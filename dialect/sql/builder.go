package sql

import (
	"strconv"
	"strings"

	"github.com/syssam/assoc/dialect"
	"github.com/syssam/assoc/schema/field"
)

// Builder is the base query builder of the package. It quotes identifiers
// and numbers placeholders according to its dialect.
type Builder struct {
	sb      strings.Builder
	dialect string
	args    []any
}

// Dialect returns a new Builder of the given dialect.
func Dialect(name string) *Builder {
	return &Builder{dialect: normalize(name)}
}

// Quote quotes the identifier: backticks for MySQL and double quotes for the
// other dialects.
func (b *Builder) Quote(ident string) string {
	if b.dialect == dialect.MySQL {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// Ident writes the quoted identifier.
func (b *Builder) Ident(ident string) *Builder {
	b.sb.WriteString(b.Quote(ident))
	return b
}

// IdentComma writes the quoted identifiers separated by commas.
func (b *Builder) IdentComma(idents ...string) *Builder {
	for i, ident := range idents {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.Ident(ident)
	}
	return b
}

// WriteString writes the raw string.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// Arg writes a placeholder for v and records it as an argument.
func (b *Builder) Arg(v any) *Builder {
	b.args = append(b.args, v)
	if b.dialect == dialect.Postgres {
		b.sb.WriteString("$" + strconv.Itoa(len(b.args)))
	} else {
		b.sb.WriteString("?")
	}
	return b
}

// Args writes the placeholders of vs separated by commas.
func (b *Builder) Args(vs ...any) *Builder {
	for i, v := range vs {
		if i > 0 {
			b.sb.WriteString(", ")
		}
		b.Arg(v)
	}
	return b
}

// Query returns the query and its arguments.
func (b *Builder) Query() (string, []any) {
	args := b.args
	if args == nil {
		args = []any{}
	}
	return b.sb.String(), args
}

// Where writes the WHERE clause of the predicate. An empty predicate writes
// nothing.
func (b *Builder) Where(p *dialect.Predicate) *Builder {
	if p.Empty() {
		return b
	}
	b.sb.WriteString(" WHERE ")
	for i, c := range p.Conds {
		if i > 0 {
			b.sb.WriteString(" AND ")
		}
		b.cond(c)
	}
	return b
}

func (b *Builder) cond(c dialect.Cond) {
	switch c.Op {
	case dialect.OpIsNull:
		b.Ident(c.Column).WriteString(" IS NULL")
	case dialect.OpEQ:
		b.Ident(c.Column).WriteString(" = ").Arg(c.Value)
	case dialect.OpIn:
		vs, _ := c.Value.([]any)
		if len(vs) == 0 {
			b.WriteString("1 = 0")
			return
		}
		b.Ident(c.Column).WriteString(" IN (").Args(vs...).WriteString(")")
	}
}

// columnType returns the storage type of an attribute column. Dates,
// timestamps and UUIDs are stored in their canonical text form.
func (b *Builder) columnType(t field.Type) string {
	switch t {
	case field.TypeInt:
		return b.intType()
	case field.TypeFloat:
		switch b.dialect {
		case dialect.Postgres:
			return "DOUBLE PRECISION"
		case dialect.MySQL:
			return "DOUBLE"
		}
		return "REAL"
	case field.TypeBool:
		return "BOOLEAN"
	}
	if b.dialect == dialect.MySQL {
		// TEXT columns cannot carry a unique index without a prefix length.
		return "VARCHAR(255)"
	}
	return "TEXT"
}

func (b *Builder) intType() string {
	if b.dialect == dialect.SQLite {
		return "INTEGER"
	}
	return "BIGINT"
}

func (b *Builder) idColumn() *Builder {
	b.Ident(dialect.IDColumn)
	switch b.dialect {
	case dialect.Postgres:
		return b.WriteString(" BIGSERIAL PRIMARY KEY")
	case dialect.MySQL:
		return b.WriteString(" BIGINT AUTO_INCREMENT PRIMARY KEY")
	}
	return b.WriteString(" INTEGER PRIMARY KEY AUTOINCREMENT")
}

func (b *Builder) column(c *dialect.Column, typ string) {
	b.Ident(c.Name).WriteString(" " + typ)
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	if c.Unique {
		b.WriteString(" UNIQUE")
	}
}

func (b *Builder) references(column, table, action string) {
	b.WriteString("FOREIGN KEY (").Ident(column).WriteString(") REFERENCES ").
		Ident(table).WriteString(" (").Ident(dialect.IDColumn).WriteString(")")
	if action != "" {
		b.WriteString(" ON DELETE " + action)
	}
}

// CreateTable returns the CREATE TABLE statement of an entity table.
func (b *Builder) CreateTable(t *dialect.Table) *Builder {
	fks := make(map[string]bool, len(t.ForeignKeys))
	for _, fk := range t.ForeignKeys {
		fks[fk.Column] = true
	}
	b.WriteString("CREATE TABLE IF NOT EXISTS ").Ident(t.Name).WriteString(" (")
	b.idColumn()
	for _, c := range t.Columns {
		typ := b.columnType(c.Type)
		if fks[c.Name] {
			typ = b.intType()
		}
		b.WriteString(", ")
		b.column(c, typ)
	}
	for _, fk := range t.ForeignKeys {
		b.WriteString(", ")
		b.references(fk.Column, fk.RefTable, string(fk.OnDelete.OrDefault()))
	}
	return b.WriteString(")")
}

// CreateJoinTable returns the CREATE TABLE statement of a join table. The
// pair of columns is the primary key and both cascade on delete.
func (b *Builder) CreateJoinTable(t *dialect.JoinTable) *Builder {
	b.WriteString("CREATE TABLE IF NOT EXISTS ").Ident(t.Name).WriteString(" (")
	for _, c := range t.Columns {
		b.Ident(c).WriteString(" " + b.intType() + " NOT NULL, ")
	}
	b.WriteString("PRIMARY KEY (").IdentComma(t.Columns[:]...).WriteString(")")
	for i, c := range t.Columns {
		b.WriteString(", ")
		b.references(c, t.RefTables[i], "CASCADE")
	}
	return b.WriteString(")")
}

// DropTable returns the DROP TABLE statement of the table.
func (b *Builder) DropTable(name string) *Builder {
	return b.WriteString("DROP TABLE IF EXISTS ").Ident(name)
}

// Insert returns the INSERT statement of a row. The columns are written in
// the given order.
func (b *Builder) Insert(table string, columns []string, values []any) *Builder {
	b.WriteString("INSERT INTO ").Ident(table)
	switch {
	case len(columns) > 0:
		b.WriteString(" (").IdentComma(columns...).WriteString(") VALUES (").Args(values...).WriteString(")")
	case b.dialect == dialect.MySQL:
		b.WriteString(" () VALUES ()")
	default:
		b.WriteString(" DEFAULT VALUES")
	}
	return b
}

// Returning appends a RETURNING clause of the column.
func (b *Builder) Returning(column string) *Builder {
	return b.WriteString(" RETURNING ").Ident(column)
}

// Select returns the SELECT statement of the rows matching p ordered by id.
func (b *Builder) Select(table string, p *dialect.Predicate) *Builder {
	return b.WriteString("SELECT * FROM ").Ident(table).Where(p).
		WriteString(" ORDER BY ").Ident(dialect.IDColumn)
}

// Update returns the UPDATE statement of the row with the given id.
func (b *Builder) Update(table string, id int64, columns []string, values []any) *Builder {
	b.WriteString("UPDATE ").Ident(table).WriteString(" SET ")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Ident(c).WriteString(" = ").Arg(values[i])
	}
	return b.Where(dialect.Where(dialect.EQ(dialect.IDColumn, id)))
}

// Delete returns the DELETE statement of the rows matching p.
func (b *Builder) Delete(table string, p *dialect.Predicate) *Builder {
	return b.WriteString("DELETE FROM ").Ident(table).Where(p)
}

// SelectColumn returns the SELECT statement of one column of the rows
// matching p, ordered by that column.
func (b *Builder) SelectColumn(table, column string, p *dialect.Predicate) *Builder {
	return b.WriteString("SELECT ").Ident(column).WriteString(" FROM ").Ident(table).Where(p).
		WriteString(" ORDER BY ").Ident(column)
}
