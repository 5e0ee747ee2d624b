package gen

import (
	"errors"
	"fmt"
	"go/token"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/assoc"
	"github.com/syssam/assoc/schema/field"
)

// Graph holds the generation nodes of a registry.
type Graph struct {
	Config *Config
	// Nodes are the entity types in definition order.
	Nodes []*Type
}

// Type is an entity type with its generated names.
type Type struct {
	// Name is the Go identifier of the wrapper.
	Name   string
	Entity *assoc.EntityType
	Fields []*Field
	Edges  []*Edge
	// targeted is set if a non-unique edge leads to the type.
	targeted bool
}

// Field is an attribute with its getter name.
type Field struct {
	Name     string
	Getter   string
	Type     field.Type
	Nullable bool
}

// Edge is a navigable edge with its accessor names.
type Edge struct {
	Name     string
	Type     *Type
	Unique   bool
	Plural   string
	Singular string
	Inverse  bool
	Kind     assoc.Kind
}

// NewGraph builds the generation graph of the registry.
func NewGraph(reg *assoc.Registry, c *Config) (*Graph, error) {
	if c == nil {
		return nil, NewConfigError("Config", nil, "config is required")
	}
	g := &Graph{Config: c}
	nodes := make(map[*assoc.EntityType]*Type)
	for _, et := range reg.Types() {
		t := &Type{Name: pascal(et.Name()), Entity: et}
		for _, d := range et.Attributes() {
			t.Fields = append(t.Fields, &Field{
				Name:     d.Name,
				Getter:   pascal(d.Name),
				Type:     d.Type,
				Nullable: d.Nullable,
			})
		}
		nodes[et] = t
		g.Nodes = append(g.Nodes, t)
	}
	for _, t := range g.Nodes {
		for _, e := range t.Entity.Edges() {
			other := nodes[e.Other()]
			t.Edges = append(t.Edges, &Edge{
				Name:     e.Name(),
				Type:     other,
				Unique:   e.Unique(),
				Plural:   pascal(e.Name()),
				Singular: pascal(rules.Singularize(e.Name())),
				Inverse:  e.IsInverse(),
				Kind:     e.Association().Kind(),
			})
			if !e.Unique() {
				other.targeted = true
			}
		}
	}
	if err := g.check(); err != nil {
		return nil, err
	}
	return g, nil
}

// check reports identifiers that are invalid or collide in the generated
// package.
func (g *Graph) check() error {
	var (
		errs []error
		pkg  = map[string]string{"Registry": "", "Client": "", "NewClient": ""}
	)
	declare := func(names map[string]string, t, name, what string) {
		switch prev, ok := names[name]; {
		case !token.IsIdentifier(name):
			errs = append(errs, &SchemaError{Type: t, Name: name, Message: "invalid Go identifier for " + what})
		case ok:
			errs = append(errs, &SchemaError{Type: t, Name: name, Message: fmt.Sprintf("%s collides with %q", what, prev)})
		default:
			names[name] = what
		}
	}
	for _, t := range g.Nodes {
		declare(pkg, t.Name, t.Name, "type name")
		declare(pkg, t.Name, t.ClientName(), "client name")
		declare(pkg, t.Name, t.TypeVar(), "type var")
		methods := map[string]string{"Update": "", "Destroy": "", "Save": ""}
		for _, f := range t.Fields {
			declare(methods, t.Name, f.Getter, "getter of "+f.Name)
		}
		for _, e := range t.Edges {
			for _, m := range e.Methods() {
				declare(methods, t.Name, m, "accessor of "+e.Name)
			}
		}
	}
	return errors.Join(errs...)
}

// ClientName returns the name of the entity client, "UserClient".
func (t *Type) ClientName() string { return t.Name + "Client" }

// TypeVar returns the name of the entity type variable, "UserType".
func (t *Type) TypeVar() string { return t.Name + "Type" }

// Receiver returns the receiver name of the wrapper methods.
func (t *Type) Receiver() string {
	r := []rune(t.Name)
	return string(unicode.ToLower(r[0]))
}

func (t *Type) ctor() string      { return "new" + t.Name }
func (t *Type) ctorSlice() string { return "new" + rules.Pluralize(t.Name) }
func (t *Type) instances() string { return lowerFirst(t.Name) + "Instances" }

// GoType returns the Go type of the attribute getter.
func (f *Field) GoType() string {
	switch f.Type {
	case field.TypeInt:
		return "int64"
	case field.TypeFloat:
		return "float64"
	case field.TypeBool:
		return "bool"
	default:
		return "string"
	}
}

// Methods returns the accessor names generated for the edge.
func (e *Edge) Methods() []string {
	if e.Unique {
		return []string{"Get" + e.Plural, "Set" + e.Plural}
	}
	return []string{"Get" + e.Plural, "Add" + e.Singular, "Remove" + e.Singular, "Set" + e.Plural}
}

// rules holds the naming rules of the accessors.
var rules = inflect.NewDefaultRuleset()

// pascal converts the given name to pascal case.
//
//	username        => Username
//	profilePicture  => ProfilePicture
//	reaction_type   => ReactionType
func pascal(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	caser := cases.Title(language.Und, cases.NoLower)
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, "")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
