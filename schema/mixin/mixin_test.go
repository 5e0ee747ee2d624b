package mixin_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/assoc/schema/field"
	"github.com/syssam/assoc/schema/mixin"
)

func names(fields []field.Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Descriptor().Name
	}
	return out
}

func TestCreateTime(t *testing.T) {
	t.Parallel()
	fields := mixin.CreateTime{}.Fields()
	require.Len(t, fields, 1)

	desc := fields[0].Descriptor()
	assert.Equal(t, "createdAt", desc.Name)
	assert.Equal(t, field.TypeTime, desc.Type)
	assert.False(t, desc.Nullable)
	require.True(t, desc.HasDefault())

	v, err := desc.DefaultValue()
	require.NoError(t, err)
	_, err = desc.Check(v)
	require.NoError(t, err)
}

func TestTime(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"createdAt", "updatedAt"}, names(mixin.Time{}.Fields()))
	assert.Empty(t, mixin.Schema{}.Fields())
}

func TestExternalID(t *testing.T) {
	t.Parallel()
	fields := mixin.ExternalID{}.Fields()
	require.Len(t, fields, 1)

	desc := fields[0].Descriptor()
	assert.True(t, desc.Unique)
	a, err := desc.DefaultValue()
	require.NoError(t, err)
	b, err := desc.DefaultValue()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	v, err := desc.Check(a)
	require.NoError(t, err)
	_, err = uuid.Parse(v.(string))
	require.NoError(t, err)
}

func TestCompose(t *testing.T) {
	t.Parallel()

	t.Run("Append", func(t *testing.T) {
		t.Parallel()
		fields := mixin.Append(mixin.CreateTime{}, field.String("title"), field.String("body"))
		assert.Equal(t, []string{"title", "body", "createdAt"}, names(fields))
	})

	t.Run("Order", func(t *testing.T) {
		t.Parallel()
		fields := mixin.Compose([]mixin.Mixin{mixin.ExternalID{}, mixin.Time{}}, field.String("name"))
		assert.Equal(t, []string{"name", "uuid", "createdAt", "updatedAt"}, names(fields))
	})

	t.Run("Empty", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, mixin.Compose(nil))
	})
}
