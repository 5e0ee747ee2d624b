// Package schema declares the entity types and associations of the social
// model: users with a profile, posts with comments, and likes shared by many
// users.
package schema

import (
	"github.com/syssam/assoc"
	"github.com/syssam/assoc/schema/field"
	"github.com/syssam/assoc/schema/mixin"
)

// New returns the registry of the social model.
func New() (*assoc.Registry, error) {
	reg := assoc.NewRegistry()
	user, err := reg.Define("User",
		field.String("username"),
		field.String("email"),
	)
	if err != nil {
		return nil, err
	}
	profile, err := reg.Define("Profile",
		field.String("bio"),
		field.String("profilePicture"),
		field.Date("birthday"),
	)
	if err != nil {
		return nil, err
	}
	post, err := reg.Define("Post", mixin.Append(mixin.CreateTime{},
		field.String("title"),
		field.String("body"),
	)...)
	if err != nil {
		return nil, err
	}
	comment, err := reg.Define("Comment", mixin.Append(mixin.CreateTime{},
		field.String("body"),
	)...)
	if err != nil {
		return nil, err
	}
	like, err := reg.Define("Like", mixin.Append(mixin.CreateTime{},
		field.String("reactionType"),
	)...)
	if err != nil {
		return nil, err
	}

	// User.hasOne(Profile) and Profile.belongsTo(User).
	if _, err := reg.OneToOne(user, profile); err != nil {
		return nil, err
	}
	// User.hasMany(Post) and Post.belongsTo(User).
	if _, err := reg.OneToMany(user, post); err != nil {
		return nil, err
	}
	// Post.hasMany(Comment) and Comment.belongsTo(Post).
	if _, err := reg.OneToMany(post, comment); err != nil {
		return nil, err
	}
	// The join is declared from both sides, the second declaration resolves
	// to the first one.
	if _, err := reg.ManyToMany(user, like, "UserLike"); err != nil {
		return nil, err
	}
	if _, err := reg.ManyToMany(like, user, "UserLike"); err != nil {
		return nil, err
	}
	return reg, nil
}
