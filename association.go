package assoc

import (
	"fmt"

	"github.com/syssam/assoc/dialect"
	"github.com/syssam/assoc/dialect/sqlschema"
)

// Kind is the cardinality of an association.
type Kind uint8

// Association kinds.
const (
	O2O Kind = iota + 1 // one-to-one, foreign key on the target
	O2M                 // one-to-many, foreign key on the target
	M2M                 // many-to-many, through a join table
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case O2O:
		return "O2O"
	case O2M:
		return "O2M"
	case M2M:
		return "M2M"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Association is a declared relationship between a source and a target
// entity type. It produces two edges: a forward edge navigated from the
// source and an inverse edge navigated from the target.
type Association struct {
	kind     Kind
	source   *EntityType
	target   *EntityType
	forward  *Edge
	inverse  *Edge
	fk       string
	onDelete sqlschema.CascadeAction
	join     *dialect.JoinTable
	joinName string
}

// Kind returns the association cardinality.
func (a *Association) Kind() Kind { return a.kind }

// Source returns the declaring entity type.
func (a *Association) Source() *EntityType { return a.source }

// Target returns the associated entity type.
func (a *Association) Target() *EntityType { return a.target }

// Forward returns the edge navigated from the source.
func (a *Association) Forward() *Edge { return a.forward }

// Inverse returns the edge navigated from the target.
func (a *Association) Inverse() *Edge { return a.inverse }

// ForeignKey returns the foreign-key column on the target table of one-to-one
// and one-to-many associations.
func (a *Association) ForeignKey() string { return a.fk }

// OnDelete returns the cascade action applied to the target rows when the
// source instance is destroyed.
func (a *Association) OnDelete() sqlschema.CascadeAction { return a.onDelete.OrDefault() }

// JoinTable returns the join table of many-to-many associations.
func (a *Association) JoinTable() *dialect.JoinTable { return a.join }

// String returns the declaration in the "Source.edge" form.
func (a *Association) String() string {
	return a.source.name + "." + a.forward.name
}

// Edge is a navigable side of an association.
type Edge struct {
	name    string
	owner   *EntityType
	other   *EntityType
	assoc   *Association
	inverse bool
}

// Name returns the edge name.
func (e *Edge) Name() string { return e.name }

// Owner returns the entity type the edge is navigated from.
func (e *Edge) Owner() *EntityType { return e.owner }

// Other returns the entity type the edge leads to.
func (e *Edge) Other() *EntityType { return e.other }

// Association returns the association the edge belongs to.
func (e *Edge) Association() *Association { return e.assoc }

// IsInverse reports if the edge is navigated from the association target.
func (e *Edge) IsInverse() bool { return e.inverse }

// Unique reports if the edge leads to at most one instance: both sides of a
// one-to-one and the inverse side of a one-to-many.
func (e *Edge) Unique() bool {
	return e.assoc.kind == O2O || e.assoc.kind == O2M && e.inverse
}

// ownsKey reports if the foreign key of the edge lives on the owner table.
func (e *Edge) ownsKey() bool {
	return e.assoc.kind != M2M && e.inverse
}

// String implements the fmt.Stringer interface.
func (e *Edge) String() string { return e.owner.name + "." + e.name }

// AssocOption configures an association declaration.
type AssocOption func(*assocConfig)

type assocConfig struct {
	fk       string
	table    string
	forward  string
	inverse  string
	onDelete sqlschema.CascadeAction
	columns  [2]string
}

// ForeignKey sets the foreign-key column added to the target table of a
// one-to-one or one-to-many association. Defaults to "<source>_id".
func ForeignKey(column string) AssocOption {
	return func(c *assocConfig) { c.fk = column }
}

// JoinTable sets the storage table of a many-to-many association. Defaults
// to the snake-case form of the join name.
func JoinTable(name string) AssocOption {
	return func(c *assocConfig) { c.table = name }
}

// EdgeNames sets the names of the forward and the inverse edges.
func EdgeNames(forward, inverse string) AssocOption {
	return func(c *assocConfig) {
		c.forward = forward
		c.inverse = inverse
	}
}

// OnDelete sets the action applied to the target instances of a one-to-one
// or one-to-many association when the source instance is destroyed.
func OnDelete(action sqlschema.CascadeAction) AssocOption {
	return func(c *assocConfig) { c.onDelete = action }
}

// JoinColumns sets the source and target columns of a many-to-many join
// table. Defaults to "<source>_id" and "<target>_id".
func JoinColumns(source, target string) AssocOption {
	return func(c *assocConfig) { c.columns = [2]string{source, target} }
}

// OneToOne declares that a source instance has at most one target instance.
// The foreign key is added to the target table with a unique constraint.
//
//	reg.OneToOne(user, profile) // user.profile, profile.user
func (r *Registry) OneToOne(source, target *EntityType, opts ...AssocOption) (*Association, error) {
	return r.declare(O2O, source, target, "", opts)
}

// OneToMany declares that a source instance has many target instances. The
// foreign key is added to the target table.
//
//	reg.OneToMany(user, post) // user.posts, post.user
func (r *Registry) OneToMany(source, target *EntityType, opts ...AssocOption) (*Association, error) {
	return r.declare(O2M, source, target, "", opts)
}

// ManyToMany declares a many-to-many association through the named join
// entity. Declaring the same join from the target side returns the existing
// association.
//
//	reg.ManyToMany(user, like, "UserLike") // user.likes, like.users
//	reg.ManyToMany(like, user, "UserLike") // same association
func (r *Registry) ManyToMany(source, target *EntityType, joinName string, opts ...AssocOption) (*Association, error) {
	if joinName == "" {
		return nil, NewConfigError(pairName(source, target), "missing join name")
	}
	return r.declare(M2M, source, target, joinName, opts)
}

func (r *Registry) declare(kind Kind, source, target *EntityType, joinName string, opts []AssocOption) (*Association, error) {
	name := pairName(source, target)
	if source == nil || target == nil || source.reg != r || target.reg != r {
		return nil, NewConfigError(name, "unknown entity type")
	}
	cfg := &assocConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	a := &Association{
		kind:     kind,
		source:   source,
		target:   target,
		onDelete: cfg.onDelete,
		joinName: joinName,
	}
	a.forward = &Edge{name: cfg.forward, owner: source, other: target, assoc: a}
	a.inverse = &Edge{name: cfg.inverse, owner: target, other: source, assoc: a, inverse: true}
	switch kind {
	case O2O:
		a.forward.name = defaultName(a.forward.name, lowerFirst(target.name))
		a.inverse.name = defaultName(a.inverse.name, lowerFirst(source.name))
	case O2M:
		a.forward.name = defaultName(a.forward.name, rules.Pluralize(lowerFirst(target.name)))
		a.inverse.name = defaultName(a.inverse.name, lowerFirst(source.name))
	case M2M:
		a.forward.name = defaultName(a.forward.name, rules.Pluralize(lowerFirst(target.name)))
		a.inverse.name = defaultName(a.inverse.name, rules.Pluralize(lowerFirst(source.name)))
	}
	if kind == M2M {
		if cfg.fk != "" || cfg.onDelete != "" {
			return nil, NewConfigError(name, "foreign-key options apply to one-to-one and one-to-many associations")
		}
		a.join = &dialect.JoinTable{
			Name:      defaultName(cfg.table, snake(joinName)),
			Columns:   cfg.columns,
			RefTables: [2]string{source.table, target.table},
		}
		a.join.Columns[0] = defaultName(a.join.Columns[0], snake(source.name)+"_id")
		a.join.Columns[1] = defaultName(a.join.Columns[1], snake(target.name)+"_id")
	} else {
		if cfg.table != "" || cfg.columns != [2]string{} {
			return nil, NewConfigError(name, "join options apply to many-to-many associations")
		}
		if !a.onDelete.OrDefault().Valid() {
			return nil, NewConfigError(name, "invalid on-delete action %q", cfg.onDelete)
		}
		a.fk = defaultName(cfg.fk, snake(source.name)+"_id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok, err := r.existing(a); err != nil || ok {
		return prev, err
	}
	if err := r.check(a); err != nil {
		return nil, err
	}
	r.assocs = append(r.assocs, a)
	source.edges = append(source.edges, a.forward)
	target.edges = append(target.edges, a.inverse)
	if a.kind == M2M {
		r.joins[a.joinName] = a
	}
	return a, nil
}

// existing looks up a previous declaration the new one repeats or conflicts
// with. Callers hold the registry lock.
func (r *Registry) existing(a *Association) (*Association, bool, error) {
	name := pairName(a.source, a.target)
	if a.kind == M2M {
		if prev, ok := r.joins[a.joinName]; ok {
			switch {
			case prev.source == a.source && prev.target == a.target, prev.source == a.target && prev.target == a.source:
				return prev, true, nil
			default:
				return nil, false, NewConfigError(name, "join %q is already used by %s", a.joinName, pairName(prev.source, prev.target))
			}
		}
	}
	for _, prev := range r.assocs {
		samePair := prev.source == a.source && prev.target == a.target
		reversed := prev.source == a.target && prev.target == a.source
		if !samePair && !reversed {
			continue
		}
		switch {
		case prev.kind != a.kind:
			return nil, false, NewConfigError(name, "conflicting cardinality: %s already declared as %s", pairName(prev.source, prev.target), prev.kind)
		case a.kind != M2M && reversed && a.source != a.target:
			return nil, false, NewConfigError(name, "%s is already declared from %s", prev.kind, prev.source.name)
		case a.kind != M2M && samePair && prev.fk == a.fk:
			if prev.forward.name == a.forward.name && prev.inverse.name == a.inverse.name && prev.onDelete.OrDefault() == a.onDelete.OrDefault() {
				return prev, true, nil
			}
			return nil, false, NewConfigError(name, "foreign key %q is already declared with different options", a.fk)
		}
	}
	return nil, false, nil
}

// check validates the new declaration against the registered edges and
// columns. Callers hold the registry lock.
func (r *Registry) check(a *Association) error {
	name := pairName(a.source, a.target)
	switch {
	case a.forward.name == "" || a.inverse.name == "":
		return NewConfigError(name, "empty edge name")
	case a.source == a.target && a.forward.name == a.inverse.name:
		return NewConfigError(name, "self-referential association requires distinct edge names")
	}
	for _, e := range []*Edge{a.forward, a.inverse} {
		if _, ok := e.owner.edge(e.name); ok {
			return NewConfigError(name, "edge %q already exists on %s", e.name, e.owner.name)
		}
		if _, ok := e.owner.Attribute(e.name); ok {
			return NewConfigError(name, "edge %q collides with an attribute of %s", e.name, e.owner.name)
		}
	}
	if a.kind == M2M {
		if a.join.Columns[0] == a.join.Columns[1] {
			return NewConfigError(name, "join columns must be distinct, got %q twice", a.join.Columns[0])
		}
		for _, t := range r.order {
			if t.table == a.join.Name {
				return NewConfigError(name, "join table %q collides with the table of %s", a.join.Name, t.name)
			}
		}
		for _, prev := range r.joins {
			if prev.join.Name == a.join.Name {
				return NewConfigError(name, "join table %q is already used by %s", a.join.Name, prev)
			}
		}
		return nil
	}
	if a.target.hasColumn(a.fk) {
		return NewConfigError(name, "foreign key %q collides with a column of %s", a.fk, a.target.name)
	}
	return nil
}

func pairName(source, target *EntityType) string {
	name := func(t *EntityType) string {
		if t == nil {
			return "<nil>"
		}
		return t.name
	}
	return name(source) + "->" + name(target)
}

func defaultName(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
