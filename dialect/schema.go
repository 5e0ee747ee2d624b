package dialect

import (
	"github.com/syssam/assoc/dialect/sqlschema"
	"github.com/syssam/assoc/schema/field"
)

// Table describes an entity table. Every table has an auto-assigned int64
// primary key named IDColumn that is not listed in Columns.
type Table struct {
	Name        string
	Columns     []*Column
	ForeignKeys []*ForeignKey
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// UniqueColumns returns the columns with a unique constraint.
func (t *Table) UniqueColumns() []*Column {
	var cols []*Column
	for _, c := range t.Columns {
		if c.Unique {
			cols = append(cols, c)
		}
	}
	return cols
}

// Column describes a table column.
type Column struct {
	Name     string
	Type     field.Type
	Nullable bool
	Unique   bool
}

// ForeignKey describes a foreign-key column added to a table by a one-to-one
// or one-to-many association.
type ForeignKey struct {
	Column   string
	RefTable string
	OnDelete sqlschema.CascadeAction
}

// JoinTable describes the association table of a many-to-many relation. It
// holds exactly two foreign keys and their pair is its primary key.
type JoinTable struct {
	Name string
	// Columns holds the (source, target) columns in declaration order.
	Columns [2]string
	// RefTables holds the tables referenced by Columns.
	RefTables [2]string
}

// Column returns the join column of the given direction: the source column
// for Forward and the target column for Inverse.
func (j *JoinTable) Column(dir Direction) string {
	if dir == Inverse {
		return j.Columns[1]
	}
	return j.Columns[0]
}
