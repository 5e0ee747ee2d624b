package assoc_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/assoc"
)

func TestNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		assert.Equal(t, "assoc: User not found", assoc.NewNotFoundError("User", nil).Error())
		assert.Equal(t, "assoc: User not found (id=7)", assoc.NewNotFoundError("User", int64(7)).Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := assoc.NewNotFoundError("Post", 1)
		assert.True(t, errors.Is(err, assoc.ErrNotFound))
		assert.Equal(t, "Post", err.Label())
		assert.Equal(t, 1, err.ID())
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := assoc.NewNotFoundError("Comment", nil)
		assert.True(t, assoc.IsNotFound(err))

		// Wrapped error
		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, assoc.IsNotFound(wrapped))

		// Sentinel error
		assert.True(t, assoc.IsNotFound(assoc.ErrNotFound))

		// Non-matching error
		assert.False(t, assoc.IsNotFound(errors.New("other error")))
		assert.False(t, assoc.IsNotFound(nil))
	})
}

func TestConstraintError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := assoc.NewConstraintError("UNIQUE constraint failed", nil)
		assert.Equal(t, "assoc: constraint failed: UNIQUE constraint failed", err.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		underlying := errors.New("db error")
		err := assoc.NewConstraintError("constraint violated", underlying)
		assert.True(t, errors.Is(err, underlying))
	})

	t.Run("IsConstraintError", func(t *testing.T) {
		err := assoc.NewConstraintError("check failed", nil)
		assert.True(t, assoc.IsConstraintError(err))

		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, assoc.IsConstraintError(wrapped))

		assert.False(t, assoc.IsConstraintError(errors.New("other error")))
		assert.False(t, assoc.IsConstraintError(nil))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := assoc.NewValidationError("User.email", errors.New("invalid format"))
		assert.Equal(t, `assoc: validator failed for "User.email": invalid format`, err.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		underlying := errors.New("too short")
		err := assoc.NewValidationError("name", underlying)
		assert.True(t, errors.Is(err, underlying))
	})

	t.Run("IsValidationError", func(t *testing.T) {
		err := assoc.NewValidationError("age", errors.New("must be positive"))
		assert.True(t, assoc.IsValidationError(err))

		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, assoc.IsValidationError(wrapped))

		// Inside an aggregate.
		agg := assoc.NewAggregateError(err, errors.New("other"))
		assert.True(t, assoc.IsValidationError(agg))

		assert.False(t, assoc.IsValidationError(errors.New("other error")))
		assert.False(t, assoc.IsValidationError(nil))
	})
}

func TestRegistrationErrors(t *testing.T) {
	t.Run("DuplicateEntity", func(t *testing.T) {
		err := &assoc.DuplicateEntityError{Name: "User"}
		assert.Equal(t, `assoc: entity "User" is already defined`, err.Error())
		assert.True(t, assoc.IsDuplicateEntity(fmt.Errorf("define: %w", err)))
		assert.False(t, assoc.IsDuplicateEntity(nil))
	})

	t.Run("Config", func(t *testing.T) {
		err := assoc.NewConfigError("User->Post", "edge %q already exists on %s", "posts", "User")
		assert.Equal(t, `assoc: invalid association User->Post: edge "posts" already exists on User`, err.Error())
		assert.True(t, assoc.IsConfigError(err))
		assert.False(t, assoc.IsConfigError(errors.New("other error")))
	})
}

func TestInvalidStateError(t *testing.T) {
	err := &assoc.InvalidStateError{Label: "Like", State: assoc.Destroyed, Op: "update"}
	assert.Equal(t, "assoc: update: Like instance is destroyed", err.Error())
	assert.True(t, assoc.IsInvalidState(fmt.Errorf("wrapper: %w", err)))
	assert.False(t, assoc.IsInvalidState(nil))
}

func TestRollbackError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := &assoc.RollbackError{Err: errors.New("connection lost")}
		assert.Equal(t, "assoc: rollback failed: connection lost", err.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		underlying := errors.New("timeout")
		err := &assoc.RollbackError{Err: underlying}
		assert.True(t, errors.Is(err, underlying))
	})
}

func TestMutationError(t *testing.T) {
	underlying := errors.New("disk full")
	err := &assoc.MutationError{Entity: "Post", Op: "create", Err: underlying}
	assert.Equal(t, "assoc: create Post: disk full", err.Error())
	assert.True(t, errors.Is(err, underlying))
	assert.True(t, assoc.IsMutationError(err))
}

func TestAggregateError(t *testing.T) {
	t.Run("NoErrors", func(t *testing.T) {
		assert.Nil(t, assoc.NewAggregateError())
		assert.Nil(t, assoc.NewAggregateError(nil, nil, nil))
	})

	t.Run("SingleError", func(t *testing.T) {
		single := errors.New("single error")
		assert.Equal(t, single, assoc.NewAggregateError(nil, single, nil))
	})

	t.Run("MultipleErrors", func(t *testing.T) {
		err1 := errors.New("error 1")
		err2 := errors.New("error 2")
		err := assoc.NewAggregateError(err1, err2)

		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "multiple errors")
		assert.Contains(t, err.Error(), "error 1")
		assert.Contains(t, err.Error(), "error 2")
		assert.ErrorIs(t, err, err2)
	})
}

func TestSentinelErrors(t *testing.T) {
	assert.Contains(t, assoc.ErrNotFound.Error(), "not found")
	assert.Contains(t, assoc.ErrTxStarted.Error(), "transaction")
	assert.Contains(t, assoc.ErrUnsupportedOp.Error(), "unsupported")
}

func BenchmarkErrors(b *testing.B) {
	b.Run("IsNotFound", func(b *testing.B) {
		err := fmt.Errorf("wrapped: %w", assoc.NewNotFoundError("User", 1))
		for i := 0; i < b.N; i++ {
			_ = assoc.IsNotFound(err)
		}
	})

	b.Run("IsConstraintError", func(b *testing.B) {
		err := assoc.NewConstraintError("unique", nil)
		for i := 0; i < b.N; i++ {
			_ = assoc.IsConstraintError(err)
		}
	})
}
