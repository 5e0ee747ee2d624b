package assoc

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/syssam/assoc/dialect"
	"github.com/syssam/assoc/schema/field"
)

// State is the lifecycle state of an instance.
type State uint8

// Instance states. An instance moves from Unsaved to Persisted on save or
// create, and from Persisted to Destroyed on destroy.
const (
	Unsaved State = iota
	Persisted
	Destroyed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Unsaved:
		return "unsaved"
	case Persisted:
		return "persisted"
	case Destroyed:
		return "destroyed"
	}
	return fmt.Sprintf("State(%d)", s)
}

// Values holds attribute values keyed by attribute name.
type Values map[string]any

// Filter selects instances by attribute equality. A nil value matches
// instances where the attribute is NULL.
type Filter map[string]any

// Instance is a single entity instance.
type Instance struct {
	typ    *EntityType
	id     int64
	state  State
	values map[string]any
}

// Type returns the entity type of the instance.
func (i *Instance) Type() *EntityType { return i.typ }

// ID returns the storage id of the instance, 0 if it was never saved.
func (i *Instance) ID() int64 { return i.id }

// State returns the lifecycle state of the instance.
func (i *Instance) State() State { return i.state }

// Get returns the value of the given attribute, or nil if it is unset.
func (i *Instance) Get(attr string) any {
	return i.values[attr]
}

// Values returns a copy of the instance attribute values.
func (i *Instance) Values() Values {
	return maps.Clone(Values(i.values))
}

// Set stages an attribute value on an unsaved instance. Persisted instances
// are changed with Client.Update.
func (i *Instance) Set(attr string, v any) error {
	if i.state != Unsaved {
		return &InvalidStateError{Label: i.typ.name, State: i.state, Op: "set " + attr}
	}
	d, ok := i.typ.Attribute(attr)
	if !ok {
		return unknownAttr(i.typ, attr)
	}
	v, err := d.Check(v)
	if err != nil {
		return NewValidationError(i.typ.name+"."+attr, err)
	}
	i.values[attr] = v
	return nil
}

// String implements the fmt.Stringer interface.
func (i *Instance) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s(id=%d", i.typ.name, i.id)
	for _, d := range i.typ.attrs {
		fmt.Fprintf(&b, ", %s=%v", d.Name, i.values[d.Name])
	}
	b.WriteString(")")
	return b.String()
}

// requirePersisted returns an InvalidStateError if the instance is unsaved
// or destroyed.
func requirePersisted(i *Instance, op string) error {
	if i == nil {
		return NewValidationError(op, fmt.Errorf("nil instance"))
	}
	if i.state != Persisted {
		return &InvalidStateError{Label: i.typ.name, State: i.state, Op: op}
	}
	return nil
}

// Collect ranges over seq and returns its instances, or the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var vs []T
	for v, err := range seq {
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	return vs, nil
}

// New returns an unsaved instance of the given type.
func New(typ *EntityType) *Instance {
	return &Instance{typ: typ, values: make(map[string]any, len(typ.attrs))}
}

// build prepares the insert row of an unsaved instance: values are checked,
// defaults applied and required attributes enforced.
func (t *EntityType) build(values Values) (dialect.Row, map[string]any, error) {
	var errs []error
	for _, name := range slices.Sorted(maps.Keys(values)) {
		if _, ok := t.Attribute(name); !ok {
			errs = append(errs, unknownAttr(t, name))
		}
	}
	var (
		row   = make(dialect.Row, len(t.attrs))
		attrs = make(map[string]any, len(t.attrs))
	)
	for _, d := range t.attrs {
		var (
			v   any
			err error
		)
		switch raw, ok := values[d.Name]; {
		case ok:
			v, err = d.Check(raw)
		case d.HasDefault():
			v, err = d.DefaultValue()
		case !d.Nullable:
			err = fmt.Errorf("value is required")
		}
		if err != nil {
			errs = append(errs, NewValidationError(t.name+"."+d.Name, err))
			continue
		}
		row[d.Column] = v
		attrs[d.Name] = v
	}
	if err := NewAggregateError(errs...); err != nil {
		return nil, nil, err
	}
	return row, attrs, nil
}

// changes prepares the update row of the named attributes.
func (t *EntityType) changes(values Values) (dialect.Row, map[string]any, error) {
	var (
		errs  []error
		row   = make(dialect.Row, len(values))
		attrs = make(map[string]any, len(values))
	)
	for _, name := range slices.Sorted(maps.Keys(values)) {
		d, ok := t.Attribute(name)
		if !ok {
			errs = append(errs, unknownAttr(t, name))
			continue
		}
		v, err := d.Check(values[name])
		if err != nil {
			errs = append(errs, NewValidationError(t.name+"."+name, err))
			continue
		}
		row[d.Column] = v
		attrs[name] = v
	}
	if err := NewAggregateError(errs...); err != nil {
		return nil, nil, err
	}
	return row, attrs, nil
}

// predicate translates a filter into a storage predicate.
func (t *EntityType) predicate(f Filter) (*dialect.Predicate, error) {
	p := dialect.Where()
	for _, name := range slices.Sorted(maps.Keys(f)) {
		d, ok := t.Attribute(name)
		if !ok {
			return nil, unknownAttr(t, name)
		}
		v := f[name]
		if v != nil {
			var err error
			if v, err = d.Check(v); err != nil {
				return nil, NewValidationError(t.name+"."+name, err)
			}
		}
		p = p.And(dialect.EQ(d.Column, v))
	}
	return p, nil
}

// load builds a persisted instance from a storage row.
func (t *EntityType) load(r dialect.Row) (*Instance, error) {
	id, ok := field.ToInt64(r[dialect.IDColumn])
	if !ok {
		return nil, fmt.Errorf("assoc: %s: invalid id %v (%T)", t.name, r[dialect.IDColumn], r[dialect.IDColumn])
	}
	inst := New(t)
	inst.id = id
	inst.state = Persisted
	for _, d := range t.attrs {
		v, err := d.Normalize(r[d.Column])
		if err != nil {
			return nil, fmt.Errorf("assoc: %s %d: %w", t.name, id, err)
		}
		inst.values[d.Name] = v
	}
	return inst, nil
}

func unknownAttr(t *EntityType, name string) error {
	return NewValidationError(t.name+"."+name, fmt.Errorf("unknown attribute of %s", t.name))
}
