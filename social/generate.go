// Package social is the typed client of the social model declared in
// package schema: users, profiles, posts, comments and likes.
package social

//go:generate go run ./internal/assocgen
