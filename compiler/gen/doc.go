// Package gen generates typed wrappers for the entity types of an
// assoc.Registry.
//
// The generated file holds a Client with one entity client per type, and a
// wrapper per type with attribute getters and the accessors of its edges:
//
//	user.GetProfile(ctx)         // unique edge
//	user.SetProfile(ctx, p)      // nil clears the link
//	user.GetPosts(ctx)           // non-unique edge
//	user.AddPost(ctx, p1, p2)
//	user.RemovePost(ctx, p1)
//	user.SetPosts(ctx, p2)
//
// Every accessor dispatches to assoc.Client with the edge name, so the
// wrappers carry no association logic of their own.
//
// The code is built with jennifer and formatted with goimports. Names are
// derived from the registry with the inflect rules and title casing:
//
//	edge "likes"          => GetLikes, AddLike, RemoveLike, SetLikes
//	attr "profilePicture" => ProfilePicture()
//
// A generator program imports the schema package and calls Generate:
//
//	reg, err := schema.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := gen.Generate(reg, gen.WithSchema("example.com/app/social/schema")); err != nil {
//		log.Fatal(err)
//	}
package gen
