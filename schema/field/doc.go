// Package field provides fluent builders for declaring entity attributes.
//
// Attribute names are the names callers use when creating, updating and
// filtering instances. The storage column defaults to the snake_case form:
//
//	field.String("profilePicture")   // column: profile_picture
//	field.Time("createdAt")          // column: created_at
//
// # Field Types
//
//	field.String("username")
//	field.Int("age")
//	field.Float("score")
//	field.Bool("active")
//	field.Date("birthday")      // "2006-01-02" strings
//	field.Time("createdAt")     // RFC 3339 or date-only strings
//	field.UUID("token")         // canonical UUID strings
//
// # Field Options
//
//	field.String("email").
//	    Unique().              // Unique constraint in storage
//	    Optional().            // Nullable, may be omitted on create
//	    Default("unknown").    // Value used when omitted
//	    StorageKey("mail")     // Custom column name
//
// Dates and timestamps are kept as the strings the caller supplied. A
// time.Time value is accepted and formatted on the way in.
package field
