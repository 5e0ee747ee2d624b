package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/assoc/dialect"
	"github.com/syssam/assoc/dialect/sqlschema"
	"github.com/syssam/assoc/schema/field"
)

var (
	users = &dialect.Table{
		Name: "users",
		Columns: []*dialect.Column{
			{Name: "username", Type: field.TypeString, Unique: true},
		},
	}
	posts = &dialect.Table{
		Name: "posts",
		Columns: []*dialect.Column{
			{Name: "title", Type: field.TypeString},
			{Name: "user_id", Type: field.TypeInt, Nullable: true},
		},
		ForeignKeys: []*dialect.ForeignKey{
			{Column: "user_id", RefTable: "users", OnDelete: sqlschema.SetNull},
		},
	}
	follows = &dialect.JoinTable{
		Name:      "user_follow",
		Columns:   [2]string{"user_id", "follow_id"},
		RefTables: [2]string{"users", "users"},
	}
)

func setup(t *testing.T) *Driver {
	t.Helper()
	ctx := context.Background()
	drv := New()
	require.NoError(t, drv.CreateTable(ctx, users))
	require.NoError(t, drv.CreateTable(ctx, posts))
	require.NoError(t, drv.CreateJoinTable(ctx, follows))
	return drv
}

func TestInsertSelect(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	drv := setup(t)

	a, err := drv.InsertRow(ctx, "users", dialect.Row{"username": "a"})
	require.NoError(t, err)
	b, err := drv.InsertRow(ctx, "users", dialect.Row{"username": "b"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), a)
	assert.Equal(t, int64(2), b)

	rows, err := drv.SelectRows(ctx, "users", nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0]["username"])
	assert.Equal(t, int64(2), rows[1][dialect.IDColumn])

	rows, err = drv.SelectRows(ctx, "users", dialect.Where(dialect.EQ("username", "b")))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, b, rows[0][dialect.IDColumn])

	// Returned rows are copies.
	rows[0]["username"] = "changed"
	rows, err = drv.SelectRows(ctx, "users", dialect.Where(dialect.IDIn(b)))
	require.NoError(t, err)
	assert.Equal(t, "b", rows[0]["username"])
}

func TestInsertErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	drv := setup(t)

	_, err := drv.InsertRow(ctx, "users", dialect.Row{"username": "a"})
	require.NoError(t, err)
	_, err = drv.InsertRow(ctx, "users", dialect.Row{"username": "a"})
	assert.ErrorIs(t, err, dialect.ErrConstraint)

	_, err = drv.InsertRow(ctx, "users", dialect.Row{"nickname": "a"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, dialect.ErrConstraint)

	_, err = drv.InsertRow(ctx, "posts", dialect.Row{"title": "t", "user_id": int64(42)})
	assert.ErrorIs(t, err, dialect.ErrConstraint)

	_, err = drv.InsertRow(ctx, "missing", dialect.Row{})
	assert.Error(t, err)
}

func TestUpdateDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	drv := setup(t)

	a, err := drv.InsertRow(ctx, "users", dialect.Row{"username": "a"})
	require.NoError(t, err)
	b, err := drv.InsertRow(ctx, "users", dialect.Row{"username": "b"})
	require.NoError(t, err)

	require.NoError(t, drv.UpdateRow(ctx, "users", a, dialect.Row{"username": "c"}))
	assert.ErrorIs(t, drv.UpdateRow(ctx, "users", b, dialect.Row{"username": "c"}), dialect.ErrConstraint)
	assert.ErrorIs(t, drv.UpdateRow(ctx, "users", 99, dialect.Row{"username": "d"}), dialect.ErrNotFound)
	// Updating a row to its own unique value is fine.
	require.NoError(t, drv.UpdateRow(ctx, "users", a, dialect.Row{"username": "c"}))

	require.NoError(t, drv.DeleteRow(ctx, "users", b))
	assert.ErrorIs(t, drv.DeleteRow(ctx, "users", b), dialect.ErrNotFound)
}

func TestDeleteCascadeActions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		action sqlschema.CascadeAction
		check  func(*testing.T, *Driver, error)
	}{
		{
			action: sqlschema.SetNull,
			check: func(t *testing.T, drv *Driver, err error) {
				require.NoError(t, err)
				rows, err := drv.SelectRows(ctx, "posts", nil)
				require.NoError(t, err)
				require.Len(t, rows, 1)
				assert.Nil(t, rows[0]["user_id"])
			},
		},
		{
			action: sqlschema.Cascade,
			check: func(t *testing.T, drv *Driver, err error) {
				require.NoError(t, err)
				rows, err := drv.SelectRows(ctx, "posts", nil)
				require.NoError(t, err)
				assert.Empty(t, rows)
			},
		},
		{
			action: sqlschema.Restrict,
			check: func(t *testing.T, drv *Driver, err error) {
				assert.ErrorIs(t, err, dialect.ErrConstraint)
				rows, err := drv.SelectRows(ctx, "users", nil)
				require.NoError(t, err)
				assert.Len(t, rows, 1)
			},
		},
	}
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			t.Parallel()
			drv := New()
			require.NoError(t, drv.CreateTable(ctx, users))
			require.NoError(t, drv.CreateTable(ctx, &dialect.Table{
				Name:    "posts",
				Columns: posts.Columns,
				ForeignKeys: []*dialect.ForeignKey{
					{Column: "user_id", RefTable: "users", OnDelete: tt.action},
				},
			}))
			uid, err := drv.InsertRow(ctx, "users", dialect.Row{"username": "a"})
			require.NoError(t, err)
			_, err = drv.InsertRow(ctx, "posts", dialect.Row{"title": "t", "user_id": uid})
			require.NoError(t, err)
			tt.check(t, drv, drv.DeleteRow(ctx, "users", uid))
		})
	}
}

func TestJoinRows(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	drv := setup(t)

	var ids []int64
	for _, name := range []string{"a", "b", "c"} {
		id, err := drv.InsertRow(ctx, "users", dialect.Row{"username": name})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, drv.InsertJoinRow(ctx, "user_follow", ids[0], ids[2]))
	require.NoError(t, drv.InsertJoinRow(ctx, "user_follow", ids[0], ids[1]))
	require.NoError(t, drv.InsertJoinRow(ctx, "user_follow", ids[2], ids[1]))
	assert.ErrorIs(t, drv.InsertJoinRow(ctx, "user_follow", ids[0], ids[1]), dialect.ErrConstraint)
	assert.ErrorIs(t, drv.InsertJoinRow(ctx, "user_follow", ids[0], 99), dialect.ErrConstraint)

	got, err := drv.SelectJoined(ctx, "user_follow", ids[0], dialect.Forward)
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[1], ids[2]}, got)
	got, err = drv.SelectJoined(ctx, "user_follow", ids[1], dialect.Inverse)
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[0], ids[2]}, got)

	require.NoError(t, drv.DeleteJoinRow(ctx, "user_follow", ids[0], ids[1]))
	require.NoError(t, drv.DeleteJoinRow(ctx, "user_follow", ids[0], ids[1]))
	got, err = drv.SelectJoined(ctx, "user_follow", ids[0], dialect.Forward)
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[2]}, got)

	// Deleting a row removes its pairs.
	require.NoError(t, drv.DeleteRow(ctx, "users", ids[2]))
	got, err = drv.SelectJoined(ctx, "user_follow", ids[1], dialect.Inverse)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTx(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("Commit", func(t *testing.T) {
		t.Parallel()
		drv := setup(t)
		tx, err := drv.Tx(ctx)
		require.NoError(t, err)
		_, err = tx.InsertRow(ctx, "users", dialect.Row{"username": "a"})
		require.NoError(t, err)

		rows, err := drv.SelectRows(ctx, "users", nil)
		require.NoError(t, err)
		assert.Empty(t, rows, "uncommitted rows are not visible")

		require.NoError(t, tx.Commit())
		rows, err = drv.SelectRows(ctx, "users", nil)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
		assert.Error(t, tx.Commit())
	})

	t.Run("Rollback", func(t *testing.T) {
		t.Parallel()
		drv := setup(t)
		tx, err := drv.Tx(ctx)
		require.NoError(t, err)
		_, err = tx.InsertRow(ctx, "users", dialect.Row{"username": "a"})
		require.NoError(t, err)
		require.NoError(t, tx.Rollback())
		_, err = tx.InsertRow(ctx, "users", dialect.Row{"username": "b"})
		assert.Error(t, err)

		rows, err := drv.SelectRows(ctx, "users", nil)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("Conflict", func(t *testing.T) {
		t.Parallel()
		drv := setup(t)
		tx, err := drv.Tx(ctx)
		require.NoError(t, err)
		_, err = drv.InsertRow(ctx, "users", dialect.Row{"username": "outside"})
		require.NoError(t, err)
		_, err = tx.InsertRow(ctx, "users", dialect.Row{"username": "inside"})
		require.NoError(t, err)
		assert.ErrorIs(t, tx.Commit(), ErrConflict)

		rows, err := drv.SelectRows(ctx, "users", nil)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "outside", rows[0]["username"])
	})

	t.Run("DisjointTables", func(t *testing.T) {
		t.Parallel()
		drv := setup(t)
		for _, name := range []string{"a", "b"} {
			_, err := drv.InsertRow(ctx, "users", dialect.Row{"username": name})
			require.NoError(t, err)
		}
		tx, err := drv.Tx(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.InsertJoinRow(ctx, "user_follow", 1, 2))
		_, err = drv.InsertRow(ctx, "posts", dialect.Row{"title": "outside"})
		require.NoError(t, err)
		require.NoError(t, tx.Commit(), "posts is not used by the transaction")

		ids, err := drv.SelectJoined(ctx, "user_follow", 1, dialect.Forward)
		require.NoError(t, err)
		assert.Equal(t, []int64{2}, ids)
		rows, err := drv.SelectRows(ctx, "posts", nil)
		require.NoError(t, err)
		assert.Len(t, rows, 1, "the outside write is kept")
	})

	t.Run("ReadConflict", func(t *testing.T) {
		t.Parallel()
		drv := setup(t)
		for _, name := range []string{"a", "b"} {
			_, err := drv.InsertRow(ctx, "users", dialect.Row{"username": name})
			require.NoError(t, err)
		}
		tx, err := drv.Tx(ctx)
		require.NoError(t, err)
		require.NoError(t, tx.InsertJoinRow(ctx, "user_follow", 1, 2))
		require.NoError(t, drv.DeleteRow(ctx, "users", 2))
		assert.ErrorIs(t, tx.Commit(), ErrConflict, "the pair references a deleted user")

		ids, err := drv.SelectJoined(ctx, "user_follow", 1, dialect.Forward)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("Nested", func(t *testing.T) {
		t.Parallel()
		drv := setup(t)
		tx, err := drv.Tx(ctx)
		require.NoError(t, err)
		_, err = tx.Tx(ctx)
		assert.Error(t, err)
		require.NoError(t, tx.Rollback())
	})
}

func TestClose(t *testing.T) {
	t.Parallel()
	drv := setup(t)
	require.NoError(t, drv.Close())
	_, err := drv.SelectRows(context.Background(), "users", nil)
	assert.Error(t, err)
	assert.Equal(t, dialect.Memory, drv.Dialect())
}
