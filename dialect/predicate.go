package dialect

import (
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/assoc/schema/field"
)

// Op is a predicate operator.
type Op uint8

// Predicate operators.
const (
	OpEQ Op = iota
	OpIsNull
	OpIn
)

// Cond is a single column condition.
type Cond struct {
	Column string
	Op     Op
	// Value holds the operand of OpEQ, or a []any of operands for OpIn.
	Value any
}

// Predicate is a conjunction of conditions. A nil or empty predicate
// matches every row.
type Predicate struct {
	Conds []Cond
}

// Where returns a predicate of the given conditions.
func Where(conds ...Cond) *Predicate {
	return &Predicate{Conds: conds}
}

// EQ returns a condition that checks the column equals v. A nil v is
// translated to an IS NULL check.
func EQ(column string, v any) Cond {
	if v == nil {
		return IsNull(column)
	}
	return Cond{Column: column, Op: OpEQ, Value: v}
}

// IsNull returns a condition that checks the column is NULL.
func IsNull(column string) Cond {
	return Cond{Column: column, Op: OpIsNull}
}

// In returns a condition that checks the column is one of vs.
func In(column string, vs ...any) Cond {
	return Cond{Column: column, Op: OpIn, Value: vs}
}

// IDIn returns a condition that checks the primary key is one of ids.
func IDIn(ids ...int64) Cond {
	vs := make([]any, len(ids))
	for i, id := range ids {
		vs[i] = id
	}
	return In(IDColumn, vs...)
}

// And returns a new predicate with the extra conditions appended.
func (p *Predicate) And(conds ...Cond) *Predicate {
	if p == nil {
		return Where(conds...)
	}
	return &Predicate{Conds: append(slices.Clone(p.Conds), conds...)}
}

// Empty reports if the predicate matches every row.
func (p *Predicate) Empty() bool {
	return p == nil || len(p.Conds) == 0
}

// Match reports if the row satisfies the predicate. It is used by drivers
// that filter in process.
func (p *Predicate) Match(r Row) bool {
	if p.Empty() {
		return true
	}
	for _, c := range p.Conds {
		v := r[c.Column]
		switch c.Op {
		case OpIsNull:
			if v != nil {
				return false
			}
		case OpEQ:
			if v == nil || !equal(v, c.Value) {
				return false
			}
		case OpIn:
			vs, _ := c.Value.([]any)
			if v == nil || !slices.ContainsFunc(vs, func(x any) bool { return equal(v, x) }) {
				return false
			}
		}
	}
	return true
}

// String returns a stable textual form of the predicate, used for cache keys.
func (p *Predicate) String() string {
	if p.Empty() {
		return ""
	}
	parts := make([]string, 0, len(p.Conds))
	for _, c := range p.Conds {
		switch c.Op {
		case OpIsNull:
			parts = append(parts, c.Column+" IS NULL")
		case OpEQ:
			parts = append(parts, fmt.Sprintf("%s=%#v", c.Column, c.Value))
		case OpIn:
			parts = append(parts, fmt.Sprintf("%s IN %#v", c.Column, c.Value))
		}
	}
	return strings.Join(parts, " AND ")
}

func equal(a, b any) bool {
	if bs, ok := a.([]byte); ok {
		a = string(bs)
	}
	if bs, ok := b.([]byte); ok {
		b = string(bs)
	}
	if x, ok := field.ToInt64(a); ok {
		y, ok := field.ToInt64(b)
		return ok && x == y
	}
	return a == b
}
