package assoc_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/assoc"
	"github.com/syssam/assoc/dialect/memory"
	"github.com/syssam/assoc/dialect/sqlschema"
	"github.com/syssam/assoc/schema/field"
)

// model is the social data model used by the tests.
type model struct {
	reg *assoc.Registry

	user, profile, post, comment, like *assoc.EntityType
}

func newModel(t testing.TB, opts ...assoc.AssocOption) *model {
	t.Helper()
	m := &model{reg: assoc.NewRegistry()}
	var err error
	m.user, err = m.reg.Define("User",
		field.String("username"),
		field.String("email"),
	)
	require.NoError(t, err)
	m.profile, err = m.reg.Define("Profile",
		field.String("bio"),
		field.String("profilePicture"),
		field.Date("birthday"),
	)
	require.NoError(t, err)
	m.post, err = m.reg.Define("Post",
		field.String("title"),
		field.String("body"),
		field.Time("createdAt").DefaultFunc(field.Now),
	)
	require.NoError(t, err)
	m.comment, err = m.reg.Define("Comment",
		field.String("body"),
		field.Time("createdAt").DefaultFunc(field.Now),
	)
	require.NoError(t, err)
	m.like, err = m.reg.Define("Like",
		field.String("reactionType"),
		field.Time("createdAt").DefaultFunc(field.Now),
	)
	require.NoError(t, err)

	_, err = m.reg.OneToOne(m.user, m.profile)
	require.NoError(t, err)
	_, err = m.reg.OneToMany(m.user, m.post, opts...)
	require.NoError(t, err)
	_, err = m.reg.OneToMany(m.post, m.comment, assoc.OnDelete(sqlschema.Cascade))
	require.NoError(t, err)
	_, err = m.reg.ManyToMany(m.user, m.like, "UserLike")
	require.NoError(t, err)
	_, err = m.reg.ManyToMany(m.like, m.user, "UserLike")
	require.NoError(t, err)
	return m
}

// client returns a synchronized client over a fresh memory driver.
func (m *model) client(t testing.TB, opts ...assoc.Option) *assoc.Client {
	t.Helper()
	c := assoc.NewClient(m.reg, memory.New(), opts...)
	require.NoError(t, c.Sync(context.Background()))
	t.Cleanup(func() { c.Close() })
	return c
}

func mustCreate(t testing.TB, c *assoc.Client, typ *assoc.EntityType, v assoc.Values) *assoc.Instance {
	t.Helper()
	inst, err := c.Create(context.Background(), typ, v)
	require.NoError(t, err)
	return inst
}

func ids(insts []*assoc.Instance) []int64 {
	out := make([]int64, len(insts))
	for i, inst := range insts {
		out[i] = inst.ID()
	}
	return out
}
