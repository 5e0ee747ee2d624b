package assoc

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a requested instance does not exist.
	ErrNotFound = errors.New("assoc: instance not found")

	// ErrTxStarted is returned when attempting to start a new transaction
	// within an existing transaction.
	ErrTxStarted = errors.New("assoc: cannot start a transaction within a transaction")

	// ErrUnsupportedOp is returned when a navigation operation does not apply
	// to the edge cardinality, like adding to a one-to-one edge.
	ErrUnsupportedOp = errors.New("assoc: unsupported operation")
)

// NotFoundError represents an error when an instance is not found.
type NotFoundError struct {
	label string
	id    any
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("assoc: %s not found (id=%v)", e.label, e.id)
	}
	return fmt.Sprintf("assoc: %s not found", e.label)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the entity name.
func (e *NotFoundError) Label() string {
	return e.label
}

// ID returns the ID that was searched for, if available.
func (e *NotFoundError) ID() any {
	return e.id
}

// NewNotFoundError returns a new NotFoundError for the given entity type.
func NewNotFoundError(label string, id any) *NotFoundError {
	return &NotFoundError{label: label, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// ConstraintError represents a storage constraint violation: a duplicate
// unique value, a dangling reference or a restricted destroy.
type ConstraintError struct {
	msg  string
	wrap error
}

// Error returns the error string.
func (e ConstraintError) Error() string {
	return fmt.Sprintf("assoc: constraint failed: %s", e.msg)
}

// Unwrap returns the underlying error.
func (e ConstraintError) Unwrap() error {
	return e.wrap
}

// NewConstraintError returns a new ConstraintError with the given message.
func NewConstraintError(msg string, wrap error) error {
	return ConstraintError{msg: msg, wrap: wrap}
}

// IsConstraintError returns true if the error is a ConstraintError.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var e ConstraintError
	return errors.As(err, &e)
}

// ValidationError represents a validation error for attribute values or
// navigation targets.
type ValidationError struct {
	Name string // Attribute, edge or entity name
	Err  error  // Underlying validation error
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("assoc: validator failed for %q: %s", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError returns a new ValidationError for the given name.
func NewValidationError(name string, err error) *ValidationError {
	return &ValidationError{Name: name, Err: err}
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}

// DuplicateEntityError is returned when an entity name is defined twice.
type DuplicateEntityError struct {
	Name string
}

// Error returns the error string.
func (e *DuplicateEntityError) Error() string {
	return fmt.Sprintf("assoc: entity %q is already defined", e.Name)
}

// IsDuplicateEntity returns true if the error is a DuplicateEntityError.
func IsDuplicateEntity(err error) bool {
	if err == nil {
		return false
	}
	var e *DuplicateEntityError
	return errors.As(err, &e)
}

// ConfigError is returned when an association declaration is invalid or
// conflicts with an earlier one.
type ConfigError struct {
	Assoc string // Declaration, like "User.posts"
	msg   string
}

// Error returns the error string.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("assoc: invalid association %s: %s", e.Assoc, e.msg)
}

// NewConfigError returns a new ConfigError.
func NewConfigError(assoc, format string, args ...any) *ConfigError {
	return &ConfigError{Assoc: assoc, msg: fmt.Sprintf(format, args...)}
}

// IsConfigError returns true if the error is a ConfigError.
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConfigError
	return errors.As(err, &e)
}

// InvalidStateError is returned when an operation requires a persisted
// instance and gets an unsaved or destroyed one.
type InvalidStateError struct {
	Label string // Entity name
	State State  // Actual state
	Op    string // Operation that was attempted
}

// Error returns the error string.
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("assoc: %s: %s instance is %s", e.Op, e.Label, e.State)
}

// IsInvalidState returns true if the error is an InvalidStateError.
func IsInvalidState(err error) bool {
	if err == nil {
		return false
	}
	var e *InvalidStateError
	return errors.As(err, &e)
}

// RollbackError wraps an error that occurred during a transaction rollback.
type RollbackError struct {
	Err error // Original error that triggered rollback
}

// Error returns the error string.
func (e *RollbackError) Error() string {
	return fmt.Sprintf("assoc: rollback failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *RollbackError) Unwrap() error {
	return e.Err
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "assoc: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("assoc: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}

// MutationError wraps a storage error of a write with its context.
type MutationError struct {
	Entity string // Entity type being mutated
	Op     string // Operation (e.g., "create", "update", "destroy")
	Err    error  // Underlying error
}

// Error returns the error string.
func (e *MutationError) Error() string {
	return fmt.Sprintf("assoc: %s %s: %v", e.Op, e.Entity, e.Err)
}

// Unwrap returns the underlying error.
func (e *MutationError) Unwrap() error {
	return e.Err
}

// IsMutationError returns true if the error is a MutationError.
func IsMutationError(err error) bool {
	if err == nil {
		return false
	}
	var e *MutationError
	return errors.As(err, &e)
}
