package field

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// A Type represents an attribute type.
type Type uint8

// List of attribute types.
const (
	TypeInvalid Type = iota
	TypeString
	TypeInt
	TypeFloat
	TypeBool
	TypeDate
	TypeTime
	TypeUUID
	endTypes
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeString:  "string",
	TypeInt:     "integer",
	TypeFloat:   "float",
	TypeBool:    "boolean",
	TypeDate:    "date",
	TypeTime:    "timestamp",
	TypeUUID:    "uuid",
}

// String returns the type name.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// Valid reports if the given type if known type.
func (t Type) Valid() bool {
	return t > TypeInvalid && t < endTypes
}

// DateLayout is the layout of date attributes.
const DateLayout = "2006-01-02"

// timeLayouts are the accepted layouts for timestamp attributes.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
}

// ErrTypeMismatch is wrapped by Check errors for values of the wrong kind.
var ErrTypeMismatch = errors.New("type mismatch")

// Descriptor for attribute descriptors.
type Descriptor struct {
	Name        string     // attribute name.
	Type        Type       // attribute type.
	Column      string     // storage key, empty means derived from Name.
	Nullable    bool       // nullable attribute.
	Unique      bool       // unique constraint in storage.
	Default     any        // default value on create.
	DefaultFunc func() any // default value generator, wins over Default.
	Comment     string     // attribute comment.
	Err         error      // error set by the builder.
}

// Field is implemented by the attribute builders.
type Field interface {
	Descriptor() *Descriptor
}

// Builder is the builder for all attribute types.
type Builder struct {
	desc *Descriptor
}

// String returns a new Field with type string.
func String(name string) *Builder { return newBuilder(name, TypeString) }

// Int returns a new Field with type integer. Values are kept as int64.
func Int(name string) *Builder { return newBuilder(name, TypeInt) }

// Float returns a new Field with type float. Values are kept as float64.
func Float(name string) *Builder { return newBuilder(name, TypeFloat) }

// Bool returns a new Field with type boolean.
func Bool(name string) *Builder { return newBuilder(name, TypeBool) }

// Date returns a new Field with type date. Values are "2006-01-02" strings.
func Date(name string) *Builder { return newBuilder(name, TypeDate) }

// Time returns a new Field with type timestamp. Values are strings in one of
// the RFC 3339 or date-only layouts.
func Time(name string) *Builder { return newBuilder(name, TypeTime) }

// UUID returns a new Field with type uuid. Values are canonical UUID strings.
func UUID(name string) *Builder { return newBuilder(name, TypeUUID) }

func newBuilder(name string, t Type) *Builder {
	return &Builder{desc: &Descriptor{Name: name, Type: t}}
}

// Optional indicates that this attribute is nullable and may be omitted on
// create.
func (b *Builder) Optional() *Builder {
	b.desc.Nullable = true
	return b
}

// Unique makes the attribute unique within all rows of the entity.
func (b *Builder) Unique() *Builder {
	b.desc.Unique = true
	return b
}

// Default sets the default value of the attribute. The value is checked
// against the attribute type when the entity is defined.
func (b *Builder) Default(v any) *Builder {
	b.desc.Default = v
	return b
}

// DefaultFunc sets a function that generates the default value on each
// create. For example:
//
//	field.Time("createdAt").DefaultFunc(field.Now)
func (b *Builder) DefaultFunc(fn func() any) *Builder {
	if fn == nil {
		b.desc.Err = fmt.Errorf("field %q: nil default func", b.desc.Name)
		return b
	}
	b.desc.DefaultFunc = fn
	return b
}

// StorageKey sets the storage column name of the attribute.
func (b *Builder) StorageKey(column string) *Builder {
	b.desc.Column = column
	return b
}

// Comment sets the comment of the attribute.
func (b *Builder) Comment(c string) *Builder {
	b.desc.Comment = c
	return b
}

// Descriptor implements the Field interface by returning its descriptor.
func (b *Builder) Descriptor() *Descriptor {
	return b.desc
}

// Now is a DefaultFunc for timestamp attributes returning the current UTC time.
func Now() any {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// NewUUID is a DefaultFunc for uuid attributes.
func NewUUID() any {
	return uuid.NewString()
}

// Validate reports descriptor errors.
func (d *Descriptor) Validate() error {
	switch {
	case d.Err != nil:
		return d.Err
	case d.Name == "":
		return errors.New("missing attribute name")
	case !d.Type.Valid():
		return fmt.Errorf("attribute %q: invalid type %d", d.Name, d.Type)
	case d.Default != nil:
		if _, err := d.Check(d.Default); err != nil {
			return fmt.Errorf("attribute %q: invalid default: %w", d.Name, err)
		}
	}
	return nil
}

// HasDefault reports if the attribute has a default value.
func (d *Descriptor) HasDefault() bool {
	return d.Default != nil || d.DefaultFunc != nil
}

// DefaultValue returns the checked default value of the attribute.
func (d *Descriptor) DefaultValue() (any, error) {
	v := d.Default
	if d.DefaultFunc != nil {
		v = d.DefaultFunc()
	}
	return d.Check(v)
}

// Check type checks v against the attribute type and returns it in its
// canonical form: string for string, date, timestamp and uuid attributes,
// int64 for integers, float64 for floats and bool for booleans. A nil value
// is accepted only by nullable attributes.
func (d *Descriptor) Check(v any) (any, error) {
	if v == nil {
		if d.Nullable {
			return nil, nil
		}
		return nil, errors.New("value is required")
	}
	switch d.Type {
	case TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case TypeInt:
		if n, ok := toInt64(v); ok {
			return n, nil
		}
	case TypeFloat:
		switch f := v.(type) {
		case float64:
			return f, nil
		case float32:
			return float64(f), nil
		}
		if n, ok := toInt64(v); ok {
			return float64(n), nil
		}
	case TypeBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case TypeDate:
		switch s := v.(type) {
		case time.Time:
			return s.Format(DateLayout), nil
		case string:
			if _, err := time.Parse(DateLayout, s); err != nil {
				return nil, fmt.Errorf("invalid date %q: %w", s, err)
			}
			return s, nil
		}
	case TypeTime:
		switch s := v.(type) {
		case time.Time:
			return s.UTC().Format(time.RFC3339Nano), nil
		case string:
			if !isTimestamp(s) {
				return nil, fmt.Errorf("invalid timestamp %q", s)
			}
			return s, nil
		}
	case TypeUUID:
		switch s := v.(type) {
		case uuid.UUID:
			return s.String(), nil
		case string:
			id, err := uuid.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("invalid uuid %q: %w", s, err)
			}
			return id.String(), nil
		}
	}
	return nil, fmt.Errorf("%w: expect %s, got %T", ErrTypeMismatch, d.Type, v)
}

// Normalize converts a raw storage value into the canonical Go type of the
// attribute. Drivers return []byte for text columns, integers for booleans
// and narrow integer types after decoding, which Check would reject.
func (d *Descriptor) Normalize(v any) (any, error) {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	if v == nil {
		return nil, nil
	}
	switch d.Type {
	case TypeBool:
		if n, ok := toInt64(v); ok {
			return n != 0, nil
		}
	case TypeInt:
		if s, ok := v.(string); ok {
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("attribute %q: %w", d.Name, err)
			}
			return n, nil
		}
	case TypeFloat:
		if s, ok := v.(string); ok {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("attribute %q: %w", d.Name, err)
			}
			return f, nil
		}
	case TypeString, TypeDate, TypeTime, TypeUUID:
		// Stored strings are trusted as written.
		if s, ok := v.(string); ok {
			return s, nil
		}
	}
	return d.Check(v)
}

func isTimestamp(s string) bool {
	for _, layout := range timeLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// ToInt64 converts integer values of any width to int64.
func ToInt64(v any) (int64, bool) {
	if b, ok := v.([]byte); ok {
		n, err := strconv.ParseInt(string(b), 10, 64)
		return n, err == nil
	}
	return toInt64(v)
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return uintToInt64(uint64(n))
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return uintToInt64(n)
	}
	return 0, false
}

func uintToInt64(n uint64) (int64, bool) {
	if n > math.MaxInt64 {
		return 0, false
	}
	return int64(n), true
}
