package assoc

import (
	"context"
	"fmt"
	"iter"
	"maps"

	"github.com/syssam/assoc/dialect"
	"github.com/syssam/assoc/dialect/sqlschema"
	"github.com/syssam/assoc/schema/field"
)

// New returns an unsaved instance of the given type. Values are staged with
// Instance.Set and persisted with Save.
func (c *Client) New(typ *EntityType) *Instance {
	return New(typ)
}

// Save persists an unsaved instance. Saving a persisted instance is a nop.
func (c *Client) Save(ctx context.Context, inst *Instance) error {
	if inst == nil {
		return NewValidationError("instance", fmt.Errorf("nil instance"))
	}
	if err := c.checkType(inst.typ); err != nil {
		return err
	}
	switch inst.state {
	case Persisted:
		return nil
	case Destroyed:
		return &InvalidStateError{Label: inst.typ.name, State: inst.state, Op: "save"}
	}
	return c.insert(ctx, inst, Values(inst.values))
}

// Create validates the values, inserts a new row and returns the persisted
// instance.
func (c *Client) Create(ctx context.Context, typ *EntityType, values Values) (*Instance, error) {
	if err := c.checkType(typ); err != nil {
		return nil, err
	}
	inst := New(typ)
	if err := c.insert(ctx, inst, values); err != nil {
		return nil, err
	}
	return inst, nil
}

func (c *Client) insert(ctx context.Context, inst *Instance, values Values) error {
	typ := inst.typ
	row, attrs, err := typ.build(values)
	if err != nil {
		return err
	}
	id, err := c.drv.InsertRow(ctx, typ.table, row)
	if err != nil {
		return storageError(typ.name, "create", 0, err)
	}
	c.invalidate(ctx, typ.table)
	prev := inst.values
	inst.id, inst.state, inst.values = id, Persisted, attrs
	c.onRollback(func() {
		inst.id, inst.state, inst.values = 0, Unsaved, prev
	})
	c.log.DebugContext(ctx, "assoc: create", "entity", typ.name, "id", id)
	return nil
}

// BulkCreate validates every element before inserting any of them, and
// reports all invalid elements in an AggregateError. Rows are then inserted
// in order. On a storage failure, the instances created so far are returned
// with the error. Run it in WithTx for all-or-nothing semantics.
func (c *Client) BulkCreate(ctx context.Context, typ *EntityType, values []Values) ([]*Instance, error) {
	if err := c.checkType(typ); err != nil {
		return nil, err
	}
	var (
		errs  []error
		rows  = make([]dialect.Row, len(values))
		attrs = make([]map[string]any, len(values))
	)
	for i, v := range values {
		row, a, err := typ.build(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("element %d: %w", i, err))
			continue
		}
		rows[i], attrs[i] = row, a
	}
	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}
	created := make([]*Instance, 0, len(values))
	defer func() {
		if len(created) > 0 {
			c.invalidate(ctx, typ.table)
		}
	}()
	for i, row := range rows {
		id, err := c.drv.InsertRow(ctx, typ.table, row)
		if err != nil {
			return created, fmt.Errorf("element %d: %w", i, storageError(typ.name, "create", 0, err))
		}
		inst := &Instance{typ: typ, id: id, state: Persisted, values: attrs[i]}
		c.onRollback(func() { inst.id, inst.state = 0, Unsaved })
		created = append(created, inst)
	}
	c.log.DebugContext(ctx, "assoc: bulk create", "entity", typ.name, "count", len(created))
	return created, nil
}

// FindAll returns a lazy sequence of the instances matching the filter,
// ordered by id. Nothing is read until the sequence is ranged, and every
// range reads the storage again. A nil filter matches every instance.
//
//	for u, err := range client.FindAll(ctx, user, assoc.Filter{"username": "CoolUser"}) {
//		if err != nil {
//			return err
//		}
//		fmt.Println(u)
//	}
func (c *Client) FindAll(ctx context.Context, typ *EntityType, filter Filter) iter.Seq2[*Instance, error] {
	return func(yield func(*Instance, error) bool) {
		if err := c.checkType(typ); err != nil {
			yield(nil, err)
			return
		}
		p, err := typ.predicate(filter)
		if err != nil {
			yield(nil, err)
			return
		}
		c.scan(ctx, typ, p)(yield)
	}
}

// scan returns the sequence of instances of the rows matching p.
func (c *Client) scan(ctx context.Context, typ *EntityType, p *dialect.Predicate) iter.Seq2[*Instance, error] {
	return func(yield func(*Instance, error) bool) {
		rows, err := c.selectRows(ctx, typ.table, p)
		if err != nil {
			yield(nil, fmt.Errorf("assoc: query %s: %w", typ.name, err))
			return
		}
		for _, r := range rows {
			inst, err := typ.load(r)
			if !yield(inst, err) || err != nil {
				return
			}
		}
	}
}

// Get returns the instance with the given id.
func (c *Client) Get(ctx context.Context, typ *EntityType, id int64) (*Instance, error) {
	if err := c.checkType(typ); err != nil {
		return nil, err
	}
	for inst, err := range c.scan(ctx, typ, dialect.Where(dialect.IDIn(id))) {
		return inst, err
	}
	return nil, NewNotFoundError(typ.name, id)
}

// Count returns the number of instances matching the filter.
func (c *Client) Count(ctx context.Context, typ *EntityType, filter Filter) (int, error) {
	if err := c.checkType(typ); err != nil {
		return 0, err
	}
	p, err := typ.predicate(filter)
	if err != nil {
		return 0, err
	}
	rows, err := c.selectRows(ctx, typ.table, p)
	if err != nil {
		return 0, fmt.Errorf("assoc: query %s: %w", typ.name, err)
	}
	return len(rows), nil
}

// Update validates the named attributes, persists them and applies them to
// the instance. A rejected update leaves both the instance and the storage
// unchanged.
func (c *Client) Update(ctx context.Context, inst *Instance, values Values) (*Instance, error) {
	if err := requirePersisted(inst, "update"); err != nil {
		return nil, err
	}
	typ := inst.typ
	row, attrs, err := typ.changes(values)
	if err != nil {
		return nil, err
	}
	if len(row) == 0 {
		return inst, nil
	}
	if err := c.drv.UpdateRow(ctx, typ.table, inst.id, row); err != nil {
		return nil, storageError(typ.name, "update", inst.id, err)
	}
	c.invalidate(ctx, typ.table)
	prev := maps.Clone(inst.values)
	maps.Copy(inst.values, attrs)
	c.onRollback(func() { inst.values = prev })
	c.log.DebugContext(ctx, "assoc: update", "entity", typ.name, "id", inst.id, "fields", len(attrs))
	return inst, nil
}

// Destroy deletes the instance. Instances referencing it through a
// one-to-one or one-to-many association are handled by the association
// cascade action, and its many-to-many links are removed. The destroy runs
// in a transaction unless the client is already bound to one.
func (c *Client) Destroy(ctx context.Context, inst *Instance) error {
	if err := requirePersisted(inst, "destroy"); err != nil {
		return err
	}
	if err := c.checkType(inst.typ); err != nil {
		return err
	}
	err := c.WithTx(ctx, func(tx *Client) error {
		return tx.destroy(ctx, inst.typ, inst.id, make(map[*EntityType]map[int64]bool))
	})
	if err != nil {
		return err
	}
	inst.state = Destroyed
	c.onRollback(func() { inst.state = Persisted })
	c.log.DebugContext(ctx, "assoc: destroy", "entity", inst.typ.name, "id", inst.id)
	return nil
}

// destroy deletes a row and applies the cascade actions of its edges.
// visited guards against cascade cycles.
func (c *Client) destroy(ctx context.Context, typ *EntityType, id int64, visited map[*EntityType]map[int64]bool) error {
	if visited[typ][id] {
		return nil
	}
	if visited[typ] == nil {
		visited[typ] = make(map[int64]bool)
	}
	visited[typ][id] = true
	for _, e := range typ.Edges() {
		a := e.assoc
		switch {
		case a.kind == M2M:
			if err := c.unlinkAll(ctx, e, id); err != nil {
				return err
			}
		case !e.inverse:
			if err := c.cascade(ctx, e, id, visited); err != nil {
				return err
			}
		}
	}
	if err := c.drv.DeleteRow(ctx, typ.table, id); err != nil {
		return storageError(typ.name, "destroy", id, err)
	}
	c.invalidate(ctx, typ.table)
	return nil
}

// cascade applies the action of a forward one-to-one or one-to-many edge to
// the target rows referencing id.
func (c *Client) cascade(ctx context.Context, e *Edge, id int64, visited map[*EntityType]map[int64]bool) error {
	a := e.assoc
	rows, err := c.selectRows(ctx, a.target.table, dialect.Where(dialect.EQ(a.fk, id)))
	if err != nil {
		return fmt.Errorf("assoc: query %s: %w", a.target.name, err)
	}
	if len(rows) == 0 {
		return nil
	}
	switch a.OnDelete() {
	case sqlschema.Restrict:
		return NewConstraintError(fmt.Sprintf("destroy %s %d: %d %s instance(s) reference it through %s", a.source.name, id, len(rows), a.target.name, e), nil)
	case sqlschema.Cascade:
		for _, r := range rows {
			if err := c.destroy(ctx, a.target, rowID(r), visited); err != nil {
				return err
			}
		}
	default:
		for _, r := range rows {
			if err := c.setKey(ctx, a, rowID(r), nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// unlinkAll removes the join rows of the instance on a many-to-many edge.
func (c *Client) unlinkAll(ctx context.Context, e *Edge, id int64) error {
	ids, err := c.joined(ctx, e, id)
	if err != nil {
		return err
	}
	for _, other := range ids {
		if err := c.unlink(ctx, e, id, other); err != nil {
			return err
		}
	}
	return nil
}

func rowID(r dialect.Row) int64 {
	id, _ := field.ToInt64(r[dialect.IDColumn])
	return id
}
