package assoc

import (
	"context"
	"fmt"
	"iter"
	"slices"

	"github.com/syssam/assoc/dialect"
	"github.com/syssam/assoc/schema/field"
)

// Op is a navigation operation.
type Op uint8

// Navigation operations.
const (
	OpGet    Op = iota // read the related instances
	OpSet              // replace the related instances
	OpAdd              // link more instances, non-unique edges only
	OpRemove           // unlink instances, non-unique edges only
)

var opNames = [...]string{
	OpGet:    "get",
	OpSet:    "set",
	OpAdd:    "add",
	OpRemove: "remove",
}

// String returns the operation name.
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", o)
}

// Result is the result of a navigation operation. Get on a unique edge sets
// Instance, get on other edges sets Instances. Writes return an empty result.
type Result struct {
	Instance  *Instance
	Instances []*Instance
}

// Navigate runs op on the named edge of inst. It is the dispatcher behind
// the typed accessors and is driven only by the registry metadata.
//
//	res, err := client.Navigate(ctx, user, "likes", assoc.OpAdd, like1, like2)
func (c *Client) Navigate(ctx context.Context, inst *Instance, edge string, op Op, targets ...*Instance) (Result, error) {
	e, err := c.edgeOf(inst, edge, op)
	if err != nil {
		return Result{}, err
	}
	switch op {
	case OpGet:
		if len(targets) > 0 {
			return Result{}, NewValidationError(e.String(), fmt.Errorf("get takes no targets"))
		}
		if e.Unique() {
			one, err := c.one(ctx, e, inst.id)
			return Result{Instance: one}, err
		}
		all, err := Collect(c.related(ctx, e, inst.id))
		return Result{Instances: all}, err
	case OpSet:
		if e.Unique() && len(targets) > 1 {
			return Result{}, NewValidationError(e.String(), fmt.Errorf("expect at most one target, got %d", len(targets)))
		}
	case OpAdd, OpRemove:
		if e.Unique() {
			return Result{}, fmt.Errorf("%w: %s on unique edge %s", ErrUnsupportedOp, op, e)
		}
	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedOp, op)
	}
	ids, err := c.targetIDs(ctx, e, op, targets)
	if err != nil {
		return Result{}, err
	}
	err = c.WithTx(ctx, func(tx *Client) error {
		switch {
		case op == OpSet && e.Unique():
			return tx.setOne(ctx, e, inst.id, ids)
		case op == OpSet:
			return tx.setMany(ctx, e, inst.id, ids)
		case op == OpAdd:
			return tx.add(ctx, e, inst.id, ids)
		default:
			return tx.remove(ctx, e, inst.id, ids)
		}
	})
	if err != nil {
		return Result{}, err
	}
	c.log.DebugContext(ctx, "assoc: navigate", "edge", e.String(), "op", op.String(), "id", inst.id, "targets", ids)
	return Result{}, nil
}

// Related returns a lazy sequence of the instances related to inst through
// the named edge, ordered by id.
func (c *Client) Related(ctx context.Context, inst *Instance, edge string) iter.Seq2[*Instance, error] {
	return func(yield func(*Instance, error) bool) {
		e, err := c.edgeOf(inst, edge, OpGet)
		if err != nil {
			yield(nil, err)
			return
		}
		c.related(ctx, e, inst.id)(yield)
	}
}

// RelatedOne returns the instance related to inst through the named unique
// edge, or nil if there is none.
func (c *Client) RelatedOne(ctx context.Context, inst *Instance, edge string) (*Instance, error) {
	e, err := c.edgeOf(inst, edge, OpGet)
	if err != nil {
		return nil, err
	}
	if !e.Unique() {
		return nil, fmt.Errorf("%w: single get on edge %s", ErrUnsupportedOp, e)
	}
	return c.one(ctx, e, inst.id)
}

// SetRelated replaces the instances related to inst through the named edge.
// On unique edges, no target clears the link.
func (c *Client) SetRelated(ctx context.Context, inst *Instance, edge string, targets ...*Instance) error {
	_, err := c.Navigate(ctx, inst, edge, OpSet, targets...)
	return err
}

// AddRelated links the targets to inst through the named edge. Linking an
// instance that is already linked is a nop.
func (c *Client) AddRelated(ctx context.Context, inst *Instance, edge string, targets ...*Instance) error {
	_, err := c.Navigate(ctx, inst, edge, OpAdd, targets...)
	return err
}

// RemoveRelated unlinks the targets from inst through the named edge.
// Unlinking an instance that is not linked is a nop.
func (c *Client) RemoveRelated(ctx context.Context, inst *Instance, edge string, targets ...*Instance) error {
	_, err := c.Navigate(ctx, inst, edge, OpRemove, targets...)
	return err
}

// edgeOf resolves the edge of a persisted instance.
func (c *Client) edgeOf(inst *Instance, name string, op Op) (*Edge, error) {
	if err := requirePersisted(inst, op.String()+" "+name); err != nil {
		return nil, err
	}
	if err := c.checkType(inst.typ); err != nil {
		return nil, err
	}
	e, ok := inst.typ.Edge(name)
	if !ok {
		return nil, NewValidationError(inst.typ.name+"."+name, fmt.Errorf("unknown edge of %s", inst.typ.name))
	}
	return e, nil
}

// targetIDs checks the navigation targets and returns their distinct ids.
func (c *Client) targetIDs(ctx context.Context, e *Edge, op Op, targets []*Instance) ([]int64, error) {
	ids := make([]int64, 0, len(targets))
	for _, t := range targets {
		if t == nil {
			return nil, NewValidationError(e.String(), fmt.Errorf("nil %s target", op))
		}
		if t.typ != e.other {
			return nil, NewValidationError(e.String(), fmt.Errorf("expect %s target, got %s", e.other.name, t.typ.name))
		}
		if err := requirePersisted(t, op.String()+" "+e.String()); err != nil {
			return nil, err
		}
		if !slices.Contains(ids, t.id) {
			ids = append(ids, t.id)
		}
	}
	if len(ids) == 0 {
		return ids, nil
	}
	rows, err := c.selectRows(ctx, e.other.table, dialect.Where(dialect.IDIn(ids...)))
	if err != nil {
		return nil, fmt.Errorf("assoc: query %s: %w", e.other.name, err)
	}
	for _, id := range ids {
		if !slices.ContainsFunc(rows, func(r dialect.Row) bool { return rowID(r) == id }) {
			return nil, NewNotFoundError(e.other.name, id)
		}
	}
	return ids, nil
}

// related returns the sequence of instances linked to id through e.
func (c *Client) related(ctx context.Context, e *Edge, id int64) iter.Seq2[*Instance, error] {
	return func(yield func(*Instance, error) bool) {
		var p *dialect.Predicate
		switch {
		case e.ownsKey():
			ref, err := c.key(ctx, e, id)
			if err != nil {
				yield(nil, err)
				return
			}
			if ref == 0 {
				return
			}
			p = dialect.Where(dialect.IDIn(ref))
		case e.assoc.kind == M2M:
			ids, err := c.joined(ctx, e, id)
			if err != nil {
				yield(nil, err)
				return
			}
			if len(ids) == 0 {
				return
			}
			p = dialect.Where(dialect.IDIn(ids...))
		default:
			p = dialect.Where(dialect.EQ(e.assoc.fk, id))
		}
		c.scan(ctx, e.other, p)(yield)
	}
}

// one returns the single instance linked through a unique edge.
func (c *Client) one(ctx context.Context, e *Edge, id int64) (*Instance, error) {
	for inst, err := range c.related(ctx, e, id) {
		return inst, err
	}
	return nil, nil
}

// key returns the foreign-key value stored on the owner row of an edge that
// owns its key, 0 if unset.
func (c *Client) key(ctx context.Context, e *Edge, id int64) (int64, error) {
	rows, err := c.selectRows(ctx, e.owner.table, dialect.Where(dialect.IDIn(id)))
	if err != nil {
		return 0, fmt.Errorf("assoc: query %s: %w", e.owner.name, err)
	}
	if len(rows) == 0 {
		return 0, NewNotFoundError(e.owner.name, id)
	}
	ref, _ := toID(rows[0][e.assoc.fk])
	return ref, nil
}

// holders returns the ids of the target rows whose foreign key points at id.
func (c *Client) holders(ctx context.Context, a *Association, id int64) ([]int64, error) {
	rows, err := c.selectRows(ctx, a.target.table, dialect.Where(dialect.EQ(a.fk, id)))
	if err != nil {
		return nil, fmt.Errorf("assoc: query %s: %w", a.target.name, err)
	}
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = rowID(r)
	}
	return ids, nil
}

func (c *Client) setOne(ctx context.Context, e *Edge, id int64, ids []int64) error {
	a := e.assoc
	if !e.ownsKey() {
		// Forward one-to-one: the key lives on the target.
		current, err := c.holders(ctx, a, id)
		if err != nil {
			return err
		}
		for _, h := range current {
			if !slices.Contains(ids, h) {
				if err := c.setKey(ctx, a, h, nil); err != nil {
					return err
				}
			}
		}
		for _, t := range ids {
			if !slices.Contains(current, t) {
				if err := c.setKey(ctx, a, t, id); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if len(ids) == 0 {
		return c.setKey(ctx, a, id, nil)
	}
	ref := ids[0]
	if a.kind == O2O {
		// Keep the pair unique: any other holder of ref is cleared first.
		current, err := c.holders(ctx, a, ref)
		if err != nil {
			return err
		}
		for _, h := range current {
			if h != id {
				if err := c.setKey(ctx, a, h, nil); err != nil {
					return err
				}
			}
		}
	}
	return c.setKey(ctx, a, id, ref)
}

func (c *Client) setMany(ctx context.Context, e *Edge, id int64, ids []int64) error {
	current, err := c.current(ctx, e, id)
	if err != nil {
		return err
	}
	var stale []int64
	for _, cur := range current {
		if !slices.Contains(ids, cur) {
			stale = append(stale, cur)
		}
	}
	if err := c.removeIDs(ctx, e, id, stale); err != nil {
		return err
	}
	return c.addIDs(ctx, e, id, ids, current)
}

func (c *Client) add(ctx context.Context, e *Edge, id int64, ids []int64) error {
	current, err := c.current(ctx, e, id)
	if err != nil {
		return err
	}
	return c.addIDs(ctx, e, id, ids, current)
}

func (c *Client) remove(ctx context.Context, e *Edge, id int64, ids []int64) error {
	current, err := c.current(ctx, e, id)
	if err != nil {
		return err
	}
	var linked []int64
	for _, t := range ids {
		if slices.Contains(current, t) {
			linked = append(linked, t)
		}
	}
	return c.removeIDs(ctx, e, id, linked)
}

// current returns the ids linked to id through a non-unique edge.
func (c *Client) current(ctx context.Context, e *Edge, id int64) ([]int64, error) {
	if e.assoc.kind == M2M {
		return c.joined(ctx, e, id)
	}
	return c.holders(ctx, e.assoc, id)
}

// addIDs links the ids missing from current.
func (c *Client) addIDs(ctx context.Context, e *Edge, id int64, ids, current []int64) error {
	for _, t := range ids {
		if slices.Contains(current, t) {
			continue
		}
		var err error
		if e.assoc.kind == M2M {
			err = c.link(ctx, e, id, t)
		} else {
			err = c.setKey(ctx, e.assoc, t, id)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// removeIDs unlinks ids that are known to be linked.
func (c *Client) removeIDs(ctx context.Context, e *Edge, id int64, ids []int64) error {
	for _, t := range ids {
		var err error
		if e.assoc.kind == M2M {
			err = c.unlink(ctx, e, id, t)
		} else {
			err = c.setKey(ctx, e.assoc, t, nil)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// setKey sets the foreign key of a target row of a one-to-one or
// one-to-many association. A nil ref clears it.
func (c *Client) setKey(ctx context.Context, a *Association, id int64, ref any) error {
	if err := c.drv.UpdateRow(ctx, a.target.table, id, dialect.Row{a.fk: ref}); err != nil {
		return storageError(a.target.name, "update", id, err)
	}
	c.invalidate(ctx, a.target.table)
	return nil
}

// pair orders id and other as the (source, target) pair of the join table.
func (e *Edge) pair(id, other int64) (int64, int64) {
	if e.inverse {
		return other, id
	}
	return id, other
}

func (e *Edge) direction() dialect.Direction {
	if e.inverse {
		return dialect.Inverse
	}
	return dialect.Forward
}

func (c *Client) joined(ctx context.Context, e *Edge, id int64) ([]int64, error) {
	ids, err := c.drv.SelectJoined(ctx, e.assoc.join.Name, id, e.direction())
	if err != nil {
		return nil, fmt.Errorf("assoc: query %s: %w", e.assoc.join.Name, err)
	}
	return ids, nil
}

func (c *Client) link(ctx context.Context, e *Edge, id, other int64) error {
	src, dst := e.pair(id, other)
	if err := c.drv.InsertJoinRow(ctx, e.assoc.join.Name, src, dst); err != nil {
		return storageError(e.assoc.join.Name, "link", 0, err)
	}
	return nil
}

func (c *Client) unlink(ctx context.Context, e *Edge, id, other int64) error {
	src, dst := e.pair(id, other)
	if err := c.drv.DeleteJoinRow(ctx, e.assoc.join.Name, src, dst); err != nil {
		return storageError(e.assoc.join.Name, "unlink", 0, err)
	}
	return nil
}

func toID(v any) (int64, bool) {
	if v == nil {
		return 0, false
	}
	return field.ToInt64(v)
}
