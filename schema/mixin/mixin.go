// Package mixin provides reusable sets of attributes for entity definitions.
//
//	post, err := reg.Define("Post", mixin.Append(mixin.CreateTime{},
//		field.String("title"),
//		field.String("body"),
//	)...)
//
// Custom mixins embed Schema and override Fields:
//
//	type Audit struct{ mixin.Schema }
//
//	func (Audit) Fields() []field.Field {
//		return []field.Field{
//			field.String("createdBy").Optional(),
//		}
//	}
package mixin

import "github.com/syssam/assoc/schema/field"

// Mixin is a reusable set of attributes.
type Mixin interface {
	Fields() []field.Field
}

// Schema is the default implementation of Mixin. It declares no attributes.
type Schema struct{}

// Fields of the mixin.
func (Schema) Fields() []field.Field { return nil }

var _ Mixin = (*Schema)(nil)

// CreateTime adds a createdAt timestamp set on create.
type CreateTime struct{ Schema }

// Fields of the create time mixin.
func (CreateTime) Fields() []field.Field {
	return []field.Field{
		field.Time("createdAt").DefaultFunc(field.Now),
	}
}

// UpdateTime adds an updatedAt timestamp. The default applies on create,
// later updates set it explicitly.
type UpdateTime struct{ Schema }

// Fields of the update time mixin.
func (UpdateTime) Fields() []field.Field {
	return []field.Field{
		field.Time("updatedAt").DefaultFunc(field.Now),
	}
}

// Time composes CreateTime and UpdateTime.
type Time struct{ Schema }

// Fields of the time mixin.
func (Time) Fields() []field.Field {
	return append(CreateTime{}.Fields(), UpdateTime{}.Fields()...)
}

// ExternalID adds a unique uuid attribute generated on create, for
// referencing instances outside the storage without exposing the integer
// primary key.
type ExternalID struct{ Schema }

// Fields of the external id mixin.
func (ExternalID) Fields() []field.Field {
	return []field.Field{
		field.UUID("uuid").Unique().DefaultFunc(field.NewUUID),
	}
}

// Append returns fields followed by the attributes of the mixins.
func Append(m Mixin, fields ...field.Field) []field.Field {
	return Compose([]Mixin{m}, fields...)
}

// Compose returns fields followed by the attributes of every mixin, in
// order.
func Compose(mixins []Mixin, fields ...field.Field) []field.Field {
	out := make([]field.Field, 0, len(fields))
	out = append(out, fields...)
	for _, m := range mixins {
		out = append(out, m.Fields()...)
	}
	return out
}
