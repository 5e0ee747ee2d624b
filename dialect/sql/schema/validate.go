// Package schema validates table layouts against the identifier rules of the
// SQL dialects before they are created.
package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/syssam/assoc/dialect"
)

// validIdentifierRe validates SQL identifiers (alphanumeric and underscores).
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// maxIdentifier holds the identifier length limits of the dialects.
var maxIdentifier = map[string]int{
	dialect.MySQL:    64,
	dialect.Postgres: 63,
}

// ValidationError represents a schema validation error.
type ValidationError struct {
	Table   string
	Column  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the results of schema validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Err returns the validation errors joined, or nil.
func (r *ValidationResult) Err() error {
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	if len(r.Errors) > 0 {
		sb.WriteString("Errors:\n")
		for _, e := range r.Errors {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			sb.WriteString("\n")
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString("Warnings:\n")
		for _, w := range r.Warnings {
			sb.WriteString("  - ")
			sb.WriteString(w.Error())
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (r *ValidationResult) merge(o *ValidationResult) {
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

func identifier(d, table, column, name string, result *ValidationResult) {
	if !validIdentifierRe.MatchString(name) {
		result.Errors = append(result.Errors, &ValidationError{
			Table:   table,
			Column:  column,
			Message: fmt.Sprintf("invalid identifier %q", name),
		})
		return
	}
	if limit, ok := maxIdentifier[d]; ok && len(name) > limit {
		result.Errors = append(result.Errors, &ValidationError{
			Table:   table,
			Column:  column,
			Message: fmt.Sprintf("identifier %q exceeds %d characters of %s", name, limit, d),
		})
	}
}

// ValidateTable validates a single entity table definition.
func ValidateTable(d string, t *dialect.Table) *ValidationResult {
	result := &ValidationResult{}
	identifier(d, t.Name, "", t.Name, result)

	colNames := map[string]bool{dialect.IDColumn: true}
	for _, c := range t.Columns {
		identifier(d, t.Name, c.Name, c.Name, result)
		if colNames[c.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Column:  c.Name,
				Message: "duplicate column name",
			})
		}
		colNames[c.Name] = true
		if !c.Type.Valid() {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Column:  c.Name,
				Message: fmt.Sprintf("invalid column type %d", c.Type),
			})
		}
	}

	for _, fk := range t.ForeignKeys {
		if !colNames[fk.Column] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Message: fmt.Sprintf("foreign key references non-existent column %q", fk.Column),
			})
		}
		if !fk.OnDelete.OrDefault().Valid() {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Column:  fk.Column,
				Message: fmt.Sprintf("invalid ON DELETE action %q", fk.OnDelete),
			})
		}
	}
	if len(t.Columns) == 0 {
		result.Warnings = append(result.Warnings, &ValidationError{
			Table:   t.Name,
			Message: "table has no columns besides the primary key",
		})
	}
	return result
}

// ValidateJoinTable validates a join table definition.
func ValidateJoinTable(d string, t *dialect.JoinTable) *ValidationResult {
	result := &ValidationResult{}
	identifier(d, t.Name, "", t.Name, result)
	for _, c := range t.Columns {
		identifier(d, t.Name, c, c, result)
	}
	if t.Columns[0] == t.Columns[1] {
		result.Errors = append(result.Errors, &ValidationError{
			Table:   t.Name,
			Column:  t.Columns[0],
			Message: "duplicate column name",
		})
	}
	return result
}

// ValidateSchema validates the tables and join tables of a layout, and the
// references between them.
func ValidateSchema(d string, tables []*dialect.Table, joins []*dialect.JoinTable) *ValidationResult {
	result := &ValidationResult{}

	tableNames := make(map[string]bool)
	for _, t := range tables {
		if tableNames[t.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Message: "duplicate table name",
			})
		}
		tableNames[t.Name] = true
		result.merge(ValidateTable(d, t))
	}
	for _, t := range joins {
		if tableNames[t.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Message: "duplicate table name",
			})
		}
		tableNames[t.Name] = true
		result.merge(ValidateJoinTable(d, t))
	}

	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			if !tableNames[fk.RefTable] {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   t.Name,
					Message: fmt.Sprintf("foreign key references non-existent table %q", fk.RefTable),
				})
			}
		}
	}
	for _, t := range joins {
		for _, ref := range t.RefTables {
			if !tableNames[ref] {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   t.Name,
					Message: fmt.Sprintf("join table references non-existent table %q", ref),
				})
			}
		}
	}
	return result
}
