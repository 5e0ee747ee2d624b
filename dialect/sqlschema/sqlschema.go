// Package sqlschema holds the storage-level options of associations.
//
// # Cascade Actions
//
// The OnDelete option of a one-to-one or one-to-many association controls
// what happens to dependent rows when the referenced row is destroyed:
//
//	sqlschema.SetNull    - Clear the dependents' foreign key (default)
//	sqlschema.Cascade    - Destroy the dependents
//	sqlschema.Restrict   - Refuse the destroy while dependents exist
//
// For example:
//
//	reg.OneToMany(user, post, assoc.OnDelete(sqlschema.Cascade))
package sqlschema

// CascadeAction defines cascade behavior for foreign key constraints.
type CascadeAction string

const (
	SetNull  CascadeAction = "SET NULL"
	Cascade  CascadeAction = "CASCADE"
	Restrict CascadeAction = "RESTRICT"
)

// Valid reports if the action is one of the known actions.
func (a CascadeAction) Valid() bool {
	switch a {
	case SetNull, Cascade, Restrict:
		return true
	}
	return false
}

// OrDefault returns the action, or SetNull if it was not set.
func (a CascadeAction) OrDefault() CascadeAction {
	if a == "" {
		return SetNull
	}
	return a
}
