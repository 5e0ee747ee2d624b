package assoc

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/go-openapi/inflect"

	"github.com/syssam/assoc/dialect"
	"github.com/syssam/assoc/schema/field"
)

// Registry holds the entity types and the associations between them.
// Declarations are expected to happen at startup; lookups are safe for
// concurrent use.
type Registry struct {
	mu     sync.RWMutex
	types  map[string]*EntityType
	order  []*EntityType
	assocs []*Association
	joins  map[string]*Association
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]*EntityType),
		joins: make(map[string]*Association),
	}
}

// EntityType is a named entity definition with its attributes and the
// navigable edges added by associations.
type EntityType struct {
	name  string
	table string
	attrs []*field.Descriptor
	edges []*Edge
	reg   *Registry
}

// Define registers a named entity type with the given attributes.
//
//	user, err := reg.Define("User",
//		field.String("username"),
//		field.String("email"),
//	)
func (r *Registry) Define(name string, fields ...field.Field) (*EntityType, error) {
	if name == "" {
		return nil, NewValidationError("entity", errors.New("missing entity name"))
	}
	t := &EntityType{
		name:  name,
		table: snake(rules.Pluralize(name)),
		reg:   r,
	}
	var errs []error
	for _, f := range fields {
		// Descriptors are copied, builders may be reused across entities.
		d := *f.Descriptor()
		if err := d.Validate(); err != nil {
			errs = append(errs, NewValidationError(name+"."+d.Name, err))
			continue
		}
		if d.Column == "" {
			d.Column = snake(d.Name)
		}
		switch {
		case d.Name == dialect.IDColumn || d.Column == dialect.IDColumn:
			errs = append(errs, NewValidationError(name+"."+d.Name, errors.New(`"id" is reserved for the primary key`)))
			continue
		case slices.ContainsFunc(t.attrs, func(o *field.Descriptor) bool { return o.Name == d.Name || o.Column == d.Column }):
			errs = append(errs, NewValidationError(name+"."+d.Name, errors.New("duplicate attribute")))
			continue
		}
		t.attrs = append(t.attrs, &d)
	}
	if err := NewAggregateError(errs...); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[name]; ok {
		return nil, &DuplicateEntityError{Name: name}
	}
	if slices.ContainsFunc(r.order, func(o *EntityType) bool { return o.table == t.table }) {
		return nil, &DuplicateEntityError{Name: name}
	}
	r.types[name] = t
	r.order = append(r.order, t)
	return t, nil
}

// Type returns the entity type registered under the given name.
func (r *Registry) Type(name string) (*EntityType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// MustType is like Type but panics if the name is not registered.
func (r *Registry) MustType(name string) *EntityType {
	t, ok := r.Type(name)
	if !ok {
		panic(fmt.Sprintf("assoc: entity %q is not defined", name))
	}
	return t
}

// Types returns the entity types in definition order.
func (r *Registry) Types() []*EntityType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Associations returns the associations in declaration order.
func (r *Registry) Associations() []*Association {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.assocs)
}

// Name returns the entity name.
func (t *EntityType) Name() string { return t.name }

// Table returns the storage table of the entity.
func (t *EntityType) Table() string { return t.table }

// Registry returns the registry the type is defined in.
func (t *EntityType) Registry() *Registry { return t.reg }

// Attributes returns the attribute descriptors in definition order.
func (t *EntityType) Attributes() []*field.Descriptor {
	return slices.Clone(t.attrs)
}

// Attribute returns the attribute with the given name.
func (t *EntityType) Attribute(name string) (*field.Descriptor, bool) {
	for _, d := range t.attrs {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// Edges returns the navigable edges of the entity in declaration order.
func (t *EntityType) Edges() []*Edge {
	t.reg.mu.RLock()
	defer t.reg.mu.RUnlock()
	return slices.Clone(t.edges)
}

// Edge returns the edge with the given name.
func (t *EntityType) Edge(name string) (*Edge, bool) {
	t.reg.mu.RLock()
	defer t.reg.mu.RUnlock()
	return t.edge(name)
}

func (t *EntityType) edge(name string) (*Edge, bool) {
	for _, e := range t.edges {
		if e.name == name {
			return e, true
		}
	}
	return nil, false
}

// String implements the fmt.Stringer interface.
func (t *EntityType) String() string { return t.name }

// hasColumn reports if the entity table has the given column, attributes
// and foreign keys included. Callers hold the registry lock.
func (t *EntityType) hasColumn(column string) bool {
	if column == dialect.IDColumn || slices.ContainsFunc(t.attrs, func(d *field.Descriptor) bool { return d.Column == column }) {
		return true
	}
	for _, a := range t.reg.assocs {
		if a.kind != M2M && a.target == t && a.fk == column {
			return true
		}
	}
	return false
}

// rules holds the naming rules of tables and edges.
var rules = inflect.NewDefaultRuleset()

// snake converts the given name to snake case.
//
//	Username       => username
//	profilePicture => profile_picture
//	UserLike       => user_like
//	HTTPCode       => http_code
func snake(s string) string {
	var (
		j int
		b strings.Builder
	)
	for i := 0; i < len(s); i++ {
		r := rune(s[i])
		// Put '_' if it is not a start or end of a word, current letter is uppercase,
		// and previous is lowercase (cases like: "UserInfo"), or next letter is also
		// a lowercase and previous letter is not "_".
		if i > 0 && i < len(s)-1 && unicode.IsUpper(r) {
			if unicode.IsLower(rune(s[i-1])) ||
				j != i-1 && unicode.IsLower(rune(s[i+1])) && unicode.IsLetter(rune(s[i-1])) {
				j = i
				b.WriteString("_")
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// lowerFirst lowers the first letter of an entity name to form an edge name.
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
