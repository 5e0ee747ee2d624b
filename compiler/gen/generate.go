package gen

import (
	"bytes"
	"go/token"
	"os"
	"path"
	"path/filepath"

	"github.com/dave/jennifer/jen"
	"golang.org/x/tools/imports"

	"github.com/syssam/assoc"
)

const (
	assocPkg   = "github.com/syssam/assoc"
	dialectPkg = "github.com/syssam/assoc/dialect"
)

// Generate builds the generation graph of reg and writes the typed wrappers
// to the configured target.
//
//	err := gen.Generate(reg,
//		gen.WithSchema("github.com/syssam/assoc/social/schema"),
//		gen.WithTarget("social_gen.go"),
//	)
func Generate(reg *assoc.Registry, opts ...Option) error {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return err
	}
	g, err := NewGraph(reg, cfg)
	if err != nil {
		return err
	}
	return NewGenerator(g).Write()
}

// Generator renders the typed wrappers of a graph with jennifer.
type Generator struct {
	graph *Graph
}

// NewGenerator returns a generator of the graph.
func NewGenerator(g *Graph) *Generator {
	return &Generator{graph: g}
}

// Bytes renders the generated file and formats it with goimports.
func (g *Generator) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	target := g.graph.Config.Target
	if err := g.File().Render(&buf); err != nil {
		return nil, &GenerationError{File: target, Cause: err}
	}
	out, err := imports.Process(target, buf.Bytes(), nil)
	if err != nil {
		return nil, &GenerationError{File: target, Cause: err}
	}
	return out, nil
}

// Write writes the generated file to the configured target.
func (g *Generator) Write() error {
	out, err := g.Bytes()
	if err != nil {
		return err
	}
	target := g.graph.Config.Target
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &GenerationError{File: target, Cause: err}
		}
	}
	if err := os.WriteFile(target, out, 0o644); err != nil {
		return &GenerationError{File: target, Cause: err}
	}
	return nil
}

// File returns the jennifer file of the typed wrappers.
func (g *Generator) File() *jen.File {
	cfg := g.graph.Config
	f := jen.NewFile(cfg.Package)
	f.ImportName(assocPkg, "assoc")
	f.ImportName(dialectPkg, "dialect")
	if name := path.Base(cfg.Schema); token.IsIdentifier(name) {
		f.ImportName(cfg.Schema, name)
	}
	if cfg.Header != "" {
		f.HeaderComment(cfg.Header)
	}
	g.genRegistry(f)
	g.genClient(f)
	for _, t := range g.graph.Nodes {
		g.genEntityClient(f, t)
		g.genEntity(f, t)
		for _, e := range t.Edges {
			g.genEdge(f, t, e)
		}
	}
	return f
}

// genRegistry generates the registry and the entity type variables.
func (g *Generator) genRegistry(f *jen.File) {
	cfg := g.graph.Config
	f.Comment("Registry is the registry of the generated entity types.")
	f.Var().Id("Registry").Op("=").Func().Params().Op("*").Qual(assocPkg, "Registry").Block(
		jen.List(jen.Id("reg"), jen.Err()).Op(":=").Qual(cfg.Schema, cfg.SchemaFunc).Call(),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Panic(jen.Err()),
		),
		jen.Return(jen.Id("reg")),
	).Call()

	f.Comment("Entity types of the registry.")
	f.Var().DefsFunc(func(grp *jen.Group) {
		for _, t := range g.graph.Nodes {
			grp.Id(t.TypeVar()).Op("=").Id("Registry").Dot("MustType").Call(jen.Lit(t.Entity.Name()))
		}
	})
}

// genClient generates the client holding the entity clients.
func (g *Generator) genClient(f *jen.File) {
	f.Comment("Client is the client of the generated entity types.")
	f.Type().Id("Client").StructFunc(func(grp *jen.Group) {
		grp.Op("*").Qual(assocPkg, "Client")
		for _, t := range g.graph.Nodes {
			grp.Comment(t.Name + " is the client for interacting with the " + t.Name + " instances.")
			grp.Id(t.Name).Op("*").Id(t.ClientName())
		}
	})

	f.Comment("NewClient returns a client that stores the generated entity types through drv.")
	f.Func().Id("NewClient").Params(
		jen.Id("drv").Qual(dialectPkg, "Driver"),
		jen.Id("opts").Op("...").Qual(assocPkg, "Option"),
	).Op("*").Id("Client").Block(
		jen.Return(jen.Id("newClient").Call(
			jen.Qual(assocPkg, "NewClient").Call(jen.Id("Registry"), jen.Id("drv"), jen.Id("opts").Op("...")),
		)),
	)

	f.Line()
	f.Func().Id("newClient").Params(jen.Id("c").Op("*").Qual(assocPkg, "Client")).Op("*").Id("Client").Block(
		jen.Return(jen.Op("&").Id("Client").Values(jen.DictFunc(func(d jen.Dict) {
			d[jen.Id("Client")] = jen.Id("c")
			for _, t := range g.graph.Nodes {
				d[jen.Id(t.Name)] = jen.Op("&").Id(t.ClientName()).Values(jen.Dict{jen.Id("client"): jen.Id("c")})
			}
		}))),
	)

	f.Comment("WithTx runs fn within a transaction. The client passed to fn and the")
	f.Comment("instances it returns are bound to the transaction.")
	f.Func().Params(jen.Id("c").Op("*").Id("Client")).Id("WithTx").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("fn").Func().Params(jen.Id("tx").Op("*").Id("Client")).Error(),
	).Error().Block(
		jen.Return(jen.Id("c").Dot("Client").Dot("WithTx").Call(
			jen.Id("ctx"),
			jen.Func().Params(jen.Id("tx").Op("*").Qual(assocPkg, "Client")).Error().Block(
				jen.Return(jen.Id("fn").Call(jen.Id("newClient").Call(jen.Id("tx")))),
			),
		)),
	)
}

// genEntityClient generates the per-entity client.
func (g *Generator) genEntityClient(f *jen.File, t *Type) {
	var (
		name   = t.ClientName()
		recv   = jen.Id("c").Op("*").Id(name)
		ptr    = jen.Op("*").Id(t.Name)
		client = jen.Id("c").Dot("client")
	)
	f.Commentf("%s is a client for the %s entity.", name, t.Name)
	f.Type().Id(name).Struct(
		jen.Id("client").Op("*").Qual(assocPkg, "Client"),
	)

	f.Commentf("New returns an unsaved %s. Stage its attributes with Set and persist it with Save.", t.Name)
	f.Func().Params(recv.Clone()).Id("New").Params().Add(ptr.Clone()).Block(
		jen.Return(jen.Id(t.ctor()).Call(client.Clone(), client.Clone().Dot("New").Call(jen.Id(t.TypeVar())))),
	)

	f.Commentf("Create creates a %s with the given attribute values.", t.Name)
	f.Func().Params(recv.Clone()).Id("Create").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("values").Qual(assocPkg, "Values"),
	).Params(ptr.Clone(), jen.Error()).Block(
		jen.List(jen.Id("inst"), jen.Err()).Op(":=").Add(client.Clone()).Dot("Create").Call(jen.Id("ctx"), jen.Id(t.TypeVar()), jen.Id("values")),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.Return(jen.Id(t.ctor()).Call(client.Clone(), jen.Id("inst")), jen.Nil()),
	)

	f.Commentf("BulkCreate creates a %s for each element of values. On a storage failure,", t.Name)
	f.Comment("the instances created so far are returned with the error.")
	f.Func().Params(recv.Clone()).Id("BulkCreate").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("values").Index().Qual(assocPkg, "Values"),
	).Params(jen.Index().Add(ptr.Clone()), jen.Error()).Block(
		jen.List(jen.Id("insts"), jen.Err()).Op(":=").Add(client.Clone()).Dot("BulkCreate").Call(jen.Id("ctx"), jen.Id(t.TypeVar()), jen.Id("values")),
		jen.Return(jen.Id(t.ctorSlice()).Call(client.Clone(), jen.Id("insts")), jen.Err()),
	)

	f.Commentf("FindAll returns a lazy sequence of the %s instances matching the filter.", t.Name)
	f.Func().Params(recv.Clone()).Id("FindAll").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("filter").Qual(assocPkg, "Filter"),
	).Qual("iter", "Seq2").Types(ptr.Clone(), jen.Error()).Block(
		jen.Return(jen.Func().Params(
			jen.Id("yield").Func().Params(ptr.Clone(), jen.Error()).Bool(),
		).Block(
			jen.For(
				jen.List(jen.Id("inst"), jen.Err()).Op(":=").Range().Add(client.Clone()).Dot("FindAll").Call(jen.Id("ctx"), jen.Id(t.TypeVar()), jen.Id("filter")),
			).Block(
				jen.If(jen.Op("!").Id("yield").Call(jen.Id(t.ctor()).Call(client.Clone(), jen.Id("inst")), jen.Err())).Block(
					jen.Return(),
				),
			),
		)),
	)

	f.Commentf("Get returns the %s with the given id.", t.Name)
	f.Func().Params(recv.Clone()).Id("Get").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("id").Int64(),
	).Params(ptr.Clone(), jen.Error()).Block(
		jen.List(jen.Id("inst"), jen.Err()).Op(":=").Add(client.Clone()).Dot("Get").Call(jen.Id("ctx"), jen.Id(t.TypeVar()), jen.Id("id")),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.Return(jen.Id(t.ctor()).Call(client.Clone(), jen.Id("inst")), jen.Nil()),
	)

	f.Commentf("Count returns the number of %s instances matching the filter.", t.Name)
	f.Func().Params(recv.Clone()).Id("Count").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("filter").Qual(assocPkg, "Filter"),
	).Params(jen.Int(), jen.Error()).Block(
		jen.Return(client.Clone().Dot("Count").Call(jen.Id("ctx"), jen.Id(t.TypeVar()), jen.Id("filter"))),
	)
}

// genEntity generates the wrapper type with its constructors, attribute
// getters and instance methods.
func (g *Generator) genEntity(f *jen.File, t *Type) {
	var (
		r    = t.Receiver()
		recv = jen.Id(r).Op("*").Id(t.Name)
		ptr  = jen.Op("*").Id(t.Name)
	)
	f.Commentf("%s is a typed %s instance bound to the client that loaded it.", t.Name, t.Entity.Name())
	f.Type().Id(t.Name).Struct(
		jen.Op("*").Qual(assocPkg, "Instance"),
		jen.Id("client").Op("*").Qual(assocPkg, "Client"),
	)

	f.Line()
	f.Func().Id(t.ctor()).Params(
		jen.Id("c").Op("*").Qual(assocPkg, "Client"),
		jen.Id("inst").Op("*").Qual(assocPkg, "Instance"),
	).Add(ptr.Clone()).Block(
		jen.If(jen.Id("inst").Op("==").Nil()).Block(jen.Return(jen.Nil())),
		jen.Return(jen.Op("&").Id(t.Name).Values(jen.Dict{
			jen.Id("Instance"): jen.Id("inst"),
			jen.Id("client"):   jen.Id("c"),
		})),
	)

	f.Line()
	f.Func().Id(t.ctorSlice()).Params(
		jen.Id("c").Op("*").Qual(assocPkg, "Client"),
		jen.Id("insts").Index().Op("*").Qual(assocPkg, "Instance"),
	).Index().Add(ptr.Clone()).Block(
		jen.Id("out").Op(":=").Make(jen.Index().Add(ptr.Clone()), jen.Len(jen.Id("insts"))),
		jen.For(jen.List(jen.Id("i"), jen.Id("inst")).Op(":=").Range().Id("insts")).Block(
			jen.Id("out").Index(jen.Id("i")).Op("=").Id(t.ctor()).Call(jen.Id("c"), jen.Id("inst")),
		),
		jen.Return(jen.Id("out")),
	)

	if t.targeted {
		f.Line()
		f.Func().Id(t.instances()).Params(
			jen.Id("vs").Index().Add(ptr.Clone()),
		).Index().Op("*").Qual(assocPkg, "Instance").Block(
			jen.Id("insts").Op(":=").Make(jen.Index().Op("*").Qual(assocPkg, "Instance"), jen.Len(jen.Id("vs"))),
			jen.For(jen.List(jen.Id("i"), jen.Id("v")).Op(":=").Range().Id("vs")).Block(
				jen.If(jen.Id("v").Op("!=").Nil()).Block(
					jen.Id("insts").Index(jen.Id("i")).Op("=").Id("v").Dot("Instance"),
				),
			),
			jen.Return(jen.Id("insts")),
		)
	}

	for _, fd := range t.Fields {
		f.Commentf("%s returns the value of the %q attribute.", fd.Getter, fd.Name)
		f.Func().Params(recv.Clone()).Id(fd.Getter).Params().Id(fd.GoType()).Block(
			jen.List(jen.Id("v"), jen.Id("_")).Op(":=").Id(r).Dot("Instance").Dot("Get").Call(jen.Lit(fd.Name)).Assert(jen.Id(fd.GoType())),
			jen.Return(jen.Id("v")),
		)
	}

	f.Commentf("Save inserts the unsaved %s.", t.Name)
	f.Func().Params(recv.Clone()).Id("Save").Params(jen.Id("ctx").Qual("context", "Context")).Error().Block(
		jen.Return(jen.Id(r).Dot("client").Dot("Save").Call(jen.Id("ctx"), jen.Id(r).Dot("Instance"))),
	)

	f.Commentf("Update changes the given attributes of the %s in storage and in memory.", t.Name)
	f.Func().Params(recv.Clone()).Id("Update").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("values").Qual(assocPkg, "Values"),
	).Error().Block(
		jen.List(jen.Id("_"), jen.Err()).Op(":=").Id(r).Dot("client").Dot("Update").Call(jen.Id("ctx"), jen.Id(r).Dot("Instance"), jen.Id("values")),
		jen.Return(jen.Err()),
	)

	f.Commentf("Destroy deletes the %s and applies the delete policies of its edges.", t.Name)
	f.Func().Params(recv.Clone()).Id("Destroy").Params(jen.Id("ctx").Qual("context", "Context")).Error().Block(
		jen.Return(jen.Id(r).Dot("client").Dot("Destroy").Call(jen.Id("ctx"), jen.Id(r).Dot("Instance"))),
	)
}

// genEdge generates the accessors of an edge.
func (g *Generator) genEdge(f *jen.File, t *Type, e *Edge) {
	var (
		r     = t.Receiver()
		recv  = jen.Id(r).Op("*").Id(t.Name)
		other = jen.Op("*").Id(e.Type.Name)
		self  = jen.Id(r).Dot("Instance")
		cl    = jen.Id(r).Dot("client")
		ctx   = jen.Id("ctx").Qual("context", "Context")
		name  = jen.Lit(e.Name)
	)
	if e.Unique {
		f.Commentf("Get%s returns the %s linked through the %q edge, or nil if there is none.", e.Plural, e.Type.Name, e.Name)
		f.Func().Params(recv.Clone()).Id("Get"+e.Plural).Params(ctx.Clone()).Params(other.Clone(), jen.Error()).Block(
			jen.List(jen.Id("inst"), jen.Err()).Op(":=").Add(cl.Clone()).Dot("RelatedOne").Call(jen.Id("ctx"), self.Clone(), name.Clone()),
			jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
			jen.Return(jen.Id(e.Type.ctor()).Call(cl.Clone(), jen.Id("inst")), jen.Nil()),
		)

		f.Commentf("Set%s links the %s through the %q edge. A nil target clears the link.", e.Plural, e.Type.Name, e.Name)
		f.Func().Params(recv.Clone()).Id("Set"+e.Plural).Params(ctx.Clone(), jen.Id("target").Add(other.Clone())).Error().Block(
			jen.If(jen.Id("target").Op("==").Nil()).Block(
				jen.Return(cl.Clone().Dot("SetRelated").Call(jen.Id("ctx"), self.Clone(), name.Clone())),
			),
			jen.Return(cl.Clone().Dot("SetRelated").Call(jen.Id("ctx"), self.Clone(), name.Clone(), jen.Id("target").Dot("Instance"))),
		)
		return
	}
	targets := jen.Id(e.Type.instances()).Call(jen.Id("targets")).Op("...")

	f.Commentf("Get%s returns the %s instances linked through the %q edge.", e.Plural, e.Type.Name, e.Name)
	f.Func().Params(recv.Clone()).Id("Get"+e.Plural).Params(ctx.Clone()).Params(jen.Index().Add(other.Clone()), jen.Error()).Block(
		jen.List(jen.Id("insts"), jen.Err()).Op(":=").Qual(assocPkg, "Collect").Call(
			cl.Clone().Dot("Related").Call(jen.Id("ctx"), self.Clone(), name.Clone()),
		),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.Return(jen.Id(e.Type.ctorSlice()).Call(cl.Clone(), jen.Id("insts")), jen.Nil()),
	)

	f.Commentf("Add%s links the given %s instances through the %q edge.", e.Singular, e.Type.Name, e.Name)
	f.Func().Params(recv.Clone()).Id("Add"+e.Singular).Params(ctx.Clone(), jen.Id("targets").Op("...").Add(other.Clone())).Error().Block(
		jen.Return(cl.Clone().Dot("AddRelated").Call(jen.Id("ctx"), self.Clone(), name.Clone(), targets.Clone())),
	)

	f.Commentf("Remove%s unlinks the given %s instances from the %q edge.", e.Singular, e.Type.Name, e.Name)
	f.Func().Params(recv.Clone()).Id("Remove"+e.Singular).Params(ctx.Clone(), jen.Id("targets").Op("...").Add(other.Clone())).Error().Block(
		jen.Return(cl.Clone().Dot("RemoveRelated").Call(jen.Id("ctx"), self.Clone(), name.Clone(), targets.Clone())),
	)

	f.Commentf("Set%s replaces the %s instances linked through the %q edge.", e.Plural, e.Type.Name, e.Name)
	f.Func().Params(recv.Clone()).Id("Set"+e.Plural).Params(ctx.Clone(), jen.Id("targets").Op("...").Add(other.Clone())).Error().Block(
		jen.Return(cl.Clone().Dot("SetRelated").Call(jen.Id("ctx"), self.Clone(), name.Clone(), targets.Clone())),
	)
}
