package gen

import (
	"path"
	"strings"
)

// Config holds the generation configuration.
type Config struct {
	// Package is the name of the generated package, for example "social".
	Package string
	// Schema is the import path of the package that builds the registry.
	Schema string
	// SchemaFunc is the function of the Schema package that returns the
	// registry and an error. Defaults to "New".
	SchemaFunc string
	// Header is the comment written at the top of the generated file.
	Header string
	// Target is the path of the generated file.
	Target string
}

// Option configures code generation.
type Option func(*Config) error

// NewConfig returns a configuration with the defaults applied.
//
//	cfg, err := gen.NewConfig(
//		gen.WithSchema("github.com/syssam/assoc/social/schema"),
//		gen.WithTarget("social_gen.go"),
//	)
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		SchemaFunc: "New",
		Header:     "Code generated by assocgen. DO NOT EDIT.",
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.Schema == "" {
		return nil, NewConfigError("Schema", nil, "schema package is required")
	}
	if c.Package == "" {
		// The schema package is expected to live under the generated one.
		c.Package = path.Base(path.Dir(c.Schema))
	}
	if c.Target == "" {
		c.Target = c.Package + "_gen.go"
	}
	return c, nil
}

// WithPackage sets the generated package name.
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" || strings.ContainsAny(pkg, "/. ") {
			return NewConfigError("Package", pkg, "expect a package name")
		}
		c.Package = pkg
		return nil
	}
}

// WithSchema sets the schema package import path.
// For example: "<project>/social/schema".
func WithSchema(schema string) Option {
	return func(c *Config) error {
		if schema == "" {
			return NewConfigError("Schema", nil, "schema cannot be empty")
		}
		c.Schema = schema
		return nil
	}
}

// WithSchemaFunc sets the registry constructor of the schema package.
func WithSchemaFunc(name string) Option {
	return func(c *Config) error {
		if name == "" {
			return NewConfigError("SchemaFunc", nil, "schema func cannot be empty")
		}
		c.SchemaFunc = name
		return nil
	}
}

// WithHeader sets the file header comment.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithTarget sets the path of the generated file.
func WithTarget(target string) Option {
	return func(c *Config) error {
		if target == "" {
			return NewConfigError("Target", nil, "target cannot be empty")
		}
		c.Target = target
		return nil
	}
}
