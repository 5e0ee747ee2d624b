package assoc

import (
	"slices"

	"github.com/syssam/assoc/dialect"
	"github.com/syssam/assoc/schema/field"
)

// Layout is the storage structure resolved from the registry.
type Layout struct {
	// Tables holds one table per entity type, ordered so that referenced
	// tables come before the tables referencing them.
	Tables []*dialect.Table
	// JoinTables holds one table per distinct many-to-many join.
	JoinTables []*dialect.JoinTable
}

// Table returns the entity table with the given name.
func (l *Layout) Table(name string) (*dialect.Table, bool) {
	for _, t := range l.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Layout resolves the entity tables, their foreign-key columns and the join
// tables of all declared associations.
func (r *Registry) Layout() *Layout {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tables := make(map[*EntityType]*dialect.Table, len(r.order))
	for _, t := range r.order {
		tbl := &dialect.Table{Name: t.table}
		for _, d := range t.attrs {
			tbl.Columns = append(tbl.Columns, &dialect.Column{
				Name:     d.Column,
				Type:     d.Type,
				Nullable: d.Nullable,
				Unique:   d.Unique,
			})
		}
		tables[t] = tbl
	}
	l := &Layout{}
	for _, a := range r.assocs {
		if a.kind == M2M {
			l.JoinTables = append(l.JoinTables, a.join)
			continue
		}
		tbl := tables[a.target]
		tbl.Columns = append(tbl.Columns, &dialect.Column{
			Name:     a.fk,
			Type:     field.TypeInt,
			Nullable: true,
			Unique:   a.kind == O2O,
		})
		tbl.ForeignKeys = append(tbl.ForeignKeys, &dialect.ForeignKey{
			Column:   a.fk,
			RefTable: a.source.table,
			OnDelete: a.onDelete.OrDefault(),
		})
	}
	l.Tables = sortTables(r.order, tables)
	return l
}

// sortTables orders the tables topologically by their foreign keys, keeping
// the definition order between independent tables. Tables on a reference
// cycle are appended in definition order.
func sortTables(order []*EntityType, tables map[*EntityType]*dialect.Table) []*dialect.Table {
	var (
		sorted = make([]*dialect.Table, 0, len(order))
		done   = make(map[string]bool, len(order))
	)
	ready := func(t *dialect.Table) bool {
		for _, fk := range t.ForeignKeys {
			if fk.RefTable != t.Name && !done[fk.RefTable] {
				return false
			}
		}
		return true
	}
	for len(sorted) < len(order) {
		progress := false
		for _, et := range order {
			t := tables[et]
			if !done[t.Name] && ready(t) {
				sorted = append(sorted, t)
				done[t.Name] = true
				progress = true
			}
		}
		if !progress {
			for _, et := range order {
				if t := tables[et]; !slices.Contains(sorted, t) {
					sorted = append(sorted, t)
				}
			}
		}
	}
	return sorted
}
