// Package assoc is the association-resolution core of a small object
// relational mapper.
//
// Entity types are defined in a Registry, associations are declared between
// them, and a Client bound to a dialect.Driver persists instances and
// navigates their edges:
//
//	reg := assoc.NewRegistry()
//	user, _ := reg.Define("User", field.String("username"), field.String("email"))
//	post, _ := reg.Define("Post", field.String("title"), field.Time("createdAt").DefaultFunc(field.Now))
//	reg.OneToMany(user, post) // user.posts, post.user
//
//	client := assoc.NewClient(reg, memory.New())
//	if err := client.Sync(ctx); err != nil {
//		return err
//	}
//	u, err := client.Create(ctx, user, assoc.Values{"username": "CoolUser", "email": "cool@example.com"})
//	if err != nil {
//		return err
//	}
//	p, err := client.Create(ctx, post, assoc.Values{"title": "hello"})
//	if err != nil {
//		return err
//	}
//	err = client.AddRelated(ctx, u, "posts", p)
//
// # Associations
//
// One-to-one and one-to-many associations add a foreign-key column to the
// target table, unique for one-to-one. Many-to-many associations go through
// a join table whose primary key is the pair of its two columns. Each
// association has a forward edge on the source and an inverse edge on the
// target, and every edge supports the get and set operations. Non-unique
// edges also support add and remove.
//
// # Errors
//
// Failures are reported with the typed errors of this package, which work
// with errors.Is and errors.As:
//
//	_, err := client.Create(ctx, user, assoc.Values{"username": 1})
//	if assoc.IsValidationError(err) {
//		// ...
//	}
package assoc
