package assoc_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/assoc"
	"github.com/syssam/assoc/dialect"
	"github.com/syssam/assoc/dialect/memory"
	"github.com/syssam/assoc/schema/field"
)

func TestCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newModel(t)
	c := m.client(t)

	u, err := c.Create(ctx, m.user, assoc.Values{"username": "CoolUser", "email": "cool@user.com"})
	require.NoError(t, err)
	assert.Equal(t, assoc.Persisted, u.State())
	assert.NotZero(t, u.ID())
	assert.Equal(t, "CoolUser", u.Get("username"))

	l, err := c.Create(ctx, m.like, assoc.Values{"reactionType": "😍"})
	require.NoError(t, err)
	assert.Equal(t, "😍", l.Get("reactionType"))
	created, ok := l.Get("createdAt").(string)
	require.True(t, ok)
	_, err = time.Parse(time.RFC3339Nano, created)
	assert.NoError(t, err, "createdAt defaults to the current time")

	got, err := c.Get(ctx, m.like, l.ID())
	require.NoError(t, err)
	assert.Equal(t, l.Values(), got.Values())

	p, err := c.Create(ctx, m.profile, assoc.Values{
		"bio":            "Some bio",
		"profilePicture": "pic.png",
		"birthday":       time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "1990-05-17", p.Get("birthday"))
}

func TestCreateValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newModel(t)
	c := m.client(t)

	tests := []struct {
		name   string
		values assoc.Values
	}{
		{"WrongType", assoc.Values{"username": 42, "email": "a@b.c"}},
		{"Missing", assoc.Values{"username": "a"}},
		{"Unknown", assoc.Values{"username": "a", "email": "a@b.c", "age": 3}},
		{"NilRequired", assoc.Values{"username": nil, "email": "a@b.c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Create(ctx, m.user, tt.values)
			assert.True(t, assoc.IsValidationError(err), "got %v", err)
		})
	}
	n, err := c.Count(ctx, m.user, nil)
	require.NoError(t, err)
	assert.Zero(t, n, "rejected creates are not persisted")

	_, err = c.Create(ctx, m.profile, assoc.Values{"bio": "b", "profilePicture": "p", "birthday": "17/05/1990"})
	assert.True(t, assoc.IsValidationError(err))

	other, err := assoc.NewRegistry().Define("User", field.String("username"))
	require.NoError(t, err)
	_, err = c.Create(ctx, other, assoc.Values{"username": "x"})
	assert.True(t, assoc.IsValidationError(err))
}

func TestCreateConstraint(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	reg := assoc.NewRegistry()
	tag, err := reg.Define("Tag", field.String("name").Unique())
	require.NoError(t, err)
	c := assoc.NewClient(reg, memory.New())
	require.NoError(t, c.Sync(ctx))

	_, err = c.Create(ctx, tag, assoc.Values{"name": "go"})
	require.NoError(t, err)
	_, err = c.Create(ctx, tag, assoc.Values{"name": "go"})
	assert.True(t, assoc.IsConstraintError(err), "got %v", err)
	assert.ErrorIs(t, err, dialect.ErrConstraint)
}

func TestSave(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newModel(t)
	c := m.client(t)

	u := c.New(m.user)
	assert.Equal(t, assoc.Unsaved, u.State())
	require.NoError(t, u.Set("username", "saved"))
	assert.True(t, assoc.IsValidationError(u.Set("username", 1)))
	assert.True(t, assoc.IsValidationError(u.Set("nickname", "x")))

	// email is missing.
	assert.True(t, assoc.IsValidationError(c.Save(ctx, u)))
	assert.Equal(t, assoc.Unsaved, u.State())

	require.NoError(t, u.Set("email", "saved@example.com"))
	require.NoError(t, c.Save(ctx, u))
	assert.Equal(t, assoc.Persisted, u.State())
	assert.NotZero(t, u.ID())
	require.NoError(t, c.Save(ctx, u), "saving a persisted instance is a nop")
	assert.True(t, assoc.IsInvalidState(u.Set("username", "again")))
}

func TestBulkCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newModel(t)
	c := m.client(t)

	likes, err := c.BulkCreate(ctx, m.like, []assoc.Values{
		{"reactionType": "😍"},
		{"reactionType": "😂"},
	})
	require.NoError(t, err)
	require.Len(t, likes, 2)
	assert.Less(t, likes[0].ID(), likes[1].ID())

	t.Run("ValidateFirst", func(t *testing.T) {
		_, err := c.BulkCreate(ctx, m.like, []assoc.Values{
			{"reactionType": "👍"},
			{"reactionType": 1},
			{"reaction": "x"},
		})
		var agg *assoc.AggregateError
		require.ErrorAs(t, err, &agg)
		assert.Len(t, agg.Errors, 2)
		assert.True(t, assoc.IsValidationError(err))
		n, err := c.Count(ctx, m.like, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, n, "nothing is inserted when an element is invalid")
	})

	t.Run("PartialSuccess", func(t *testing.T) {
		reg := assoc.NewRegistry()
		tag, err := reg.Define("Tag", field.String("name").Unique())
		require.NoError(t, err)
		c := assoc.NewClient(reg, memory.New())
		require.NoError(t, c.Sync(ctx))

		created, err := c.BulkCreate(ctx, tag, []assoc.Values{{"name": "a"}, {"name": "b"}, {"name": "a"}, {"name": "c"}})
		assert.True(t, assoc.IsConstraintError(err))
		assert.Len(t, created, 2)
		n, err := c.Count(ctx, tag, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("Atomic", func(t *testing.T) {
		reg := assoc.NewRegistry()
		tag, err := reg.Define("Tag", field.String("name").Unique())
		require.NoError(t, err)
		c := assoc.NewClient(reg, memory.New())
		require.NoError(t, c.Sync(ctx))

		var created []*assoc.Instance
		err = c.WithTx(ctx, func(tx *assoc.Client) error {
			created, err = tx.BulkCreate(ctx, tag, []assoc.Values{{"name": "a"}, {"name": "a"}})
			return err
		})
		assert.True(t, assoc.IsConstraintError(err))
		require.Len(t, created, 1)
		assert.Equal(t, assoc.Unsaved, created[0].State(), "rolled back instances are unsaved again")
		n, err := c.Count(ctx, tag, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestFindAll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newModel(t)
	c := m.client(t)

	a := mustCreate(t, c, m.user, assoc.Values{"username": "a", "email": "same@example.com"})
	b := mustCreate(t, c, m.user, assoc.Values{"username": "b", "email": "same@example.com"})
	mustCreate(t, c, m.user, assoc.Values{"username": "c", "email": "other@example.com"})

	all, err := assoc.Collect(c.FindAll(ctx, m.user, nil))
	require.NoError(t, err)
	assert.Len(t, all, 3)

	same, err := assoc.Collect(c.FindAll(ctx, m.user, assoc.Filter{"email": "same@example.com"}))
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID(), b.ID()}, ids(same))

	t.Run("Lazy", func(t *testing.T) {
		seq := c.FindAll(ctx, m.user, assoc.Filter{"username": "d"})
		mustCreate(t, c, m.user, assoc.Values{"username": "d", "email": "d@example.com"})
		got, err := assoc.Collect(seq)
		require.NoError(t, err)
		assert.Len(t, got, 1, "rows are read when the sequence is ranged")

		mustCreate(t, c, m.user, assoc.Values{"username": "d", "email": "d2@example.com"})
		got, err = assoc.Collect(seq)
		require.NoError(t, err)
		assert.Len(t, got, 2, "every range reads again")
	})

	t.Run("Break", func(t *testing.T) {
		var n int
		for _, err := range c.FindAll(ctx, m.user, nil) {
			require.NoError(t, err)
			n++
			break
		}
		assert.Equal(t, 1, n)
	})

	t.Run("UnknownAttribute", func(t *testing.T) {
		_, err := assoc.Collect(c.FindAll(ctx, m.user, assoc.Filter{"age": 3}))
		assert.True(t, assoc.IsValidationError(err))
	})

	t.Run("NullFilter", func(t *testing.T) {
		reg := assoc.NewRegistry()
		note, err := reg.Define("Note", field.String("text").Optional())
		require.NoError(t, err)
		c := assoc.NewClient(reg, memory.New())
		require.NoError(t, c.Sync(ctx))
		mustCreate(t, c, note, assoc.Values{})
		mustCreate(t, c, note, assoc.Values{"text": "x"})
		n, err := c.Count(ctx, note, assoc.Filter{"text": nil})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestGetNotFound(t *testing.T) {
	t.Parallel()
	m := newModel(t)
	c := m.client(t)
	_, err := c.Get(context.Background(), m.post, 42)
	assert.True(t, assoc.IsNotFound(err))
	assert.ErrorIs(t, err, assoc.ErrNotFound)
}

func TestUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newModel(t)
	c := m.client(t)

	p := mustCreate(t, c, m.post, assoc.Values{"title": "Post", "body": "Body"})
	got, err := c.Update(ctx, p, assoc.Values{"title": "New title"})
	require.NoError(t, err)
	assert.Same(t, p, got)
	assert.Equal(t, "New title", p.Get("title"))
	assert.Equal(t, "Body", p.Get("body"))

	stored, err := c.Get(ctx, m.post, p.ID())
	require.NoError(t, err)
	assert.Equal(t, "New title", stored.Get("title"))

	t.Run("Rejected", func(t *testing.T) {
		_, err := c.Update(ctx, p, assoc.Values{"title": "Other", "body": 3})
		assert.True(t, assoc.IsValidationError(err))
		assert.Equal(t, "New title", p.Get("title"), "memory is unchanged")
		stored, err := c.Get(ctx, m.post, p.ID())
		require.NoError(t, err)
		assert.Equal(t, "New title", stored.Get("title"), "storage is unchanged")
	})

	t.Run("StorageFailure", func(t *testing.T) {
		reg := assoc.NewRegistry()
		tag, err := reg.Define("Tag", field.String("name").Unique())
		require.NoError(t, err)
		c := assoc.NewClient(reg, memory.New())
		require.NoError(t, c.Sync(ctx))
		mustCreate(t, c, tag, assoc.Values{"name": "a"})
		b := mustCreate(t, c, tag, assoc.Values{"name": "b"})
		_, err = c.Update(ctx, b, assoc.Values{"name": "a"})
		assert.True(t, assoc.IsConstraintError(err))
		assert.Equal(t, "b", b.Get("name"))
	})

	t.Run("Unsaved", func(t *testing.T) {
		_, err := c.Update(ctx, c.New(m.post), assoc.Values{"title": "x"})
		assert.True(t, assoc.IsInvalidState(err))
	})
}

func TestDestroy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newModel(t)
	c := m.client(t)

	u := mustCreate(t, c, m.user, assoc.Values{"username": "u", "email": "u@example.com"})
	p := mustCreate(t, c, m.post, assoc.Values{"title": "t", "body": "b"})
	cm := mustCreate(t, c, m.comment, assoc.Values{"body": "c"})
	l := mustCreate(t, c, m.like, assoc.Values{"reactionType": "👍"})
	require.NoError(t, c.AddRelated(ctx, u, "posts", p))
	require.NoError(t, c.AddRelated(ctx, p, "comments", cm))
	require.NoError(t, c.AddRelated(ctx, u, "likes", l))

	require.NoError(t, c.Destroy(ctx, u))
	assert.Equal(t, assoc.Destroyed, u.State())
	_, err := c.Get(ctx, m.user, u.ID())
	assert.True(t, assoc.IsNotFound(err))

	// Posts are unlinked by default.
	owner, err := c.RelatedOne(ctx, p, "user")
	require.NoError(t, err)
	assert.Nil(t, owner)
	users, err := assoc.Collect(c.Related(ctx, l, "users"))
	require.NoError(t, err)
	assert.Empty(t, users)

	// Comments cascade with their post.
	require.NoError(t, c.Destroy(ctx, p))
	n, err := c.Count(ctx, m.comment, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	t.Run("Twice", func(t *testing.T) {
		assert.True(t, assoc.IsInvalidState(c.Destroy(ctx, u)))
		_, err := c.Update(ctx, u, assoc.Values{"username": "x"})
		assert.True(t, assoc.IsInvalidState(err))
	})

	t.Run("Missing", func(t *testing.T) {
		other := mustCreate(t, c, m.like, assoc.Values{"reactionType": "x"})
		require.NoError(t, c.Driver().DeleteRow(ctx, m.like.Table(), other.ID()))
		err := c.Destroy(ctx, other)
		assert.True(t, assoc.IsNotFound(err))
		assert.Equal(t, assoc.Persisted, other.State())
	})
}

func TestDestroyRestrict(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newModel(t, assoc.OnDelete("RESTRICT"))
	c := m.client(t)

	u := mustCreate(t, c, m.user, assoc.Values{"username": "u", "email": "u@example.com"})
	p := mustCreate(t, c, m.post, assoc.Values{"title": "t", "body": "b"})
	l := mustCreate(t, c, m.like, assoc.Values{"reactionType": "👍"})
	require.NoError(t, c.AddRelated(ctx, u, "posts", p))
	require.NoError(t, c.AddRelated(ctx, u, "likes", l))

	err := c.Destroy(ctx, u)
	assert.True(t, assoc.IsConstraintError(err), "got %v", err)
	assert.Equal(t, assoc.Persisted, u.State())
	likes, err := assoc.Collect(c.Related(ctx, u, "likes"))
	require.NoError(t, err)
	assert.Len(t, likes, 1, "a refused destroy changes nothing")

	require.NoError(t, c.RemoveRelated(ctx, u, "posts", p))
	require.NoError(t, c.Destroy(ctx, u))
}

func TestStorageErrorsPropagate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newModel(t)
	drv := memory.New()
	c := assoc.NewClient(m.reg, drv)
	// Tables were never created.
	_, err := c.Create(ctx, m.user, assoc.Values{"username": "u", "email": "e"})
	require.Error(t, err)
	assert.True(t, assoc.IsMutationError(err))
	assert.False(t, assoc.IsConstraintError(err))

	require.NoError(t, drv.Close())
	_, err = assoc.Collect(c.FindAll(ctx, m.user, nil))
	require.Error(t, err)
	assert.False(t, errors.Is(err, assoc.ErrNotFound))
}
