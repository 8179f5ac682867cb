/*
Package directory resolves opaque user identifiers to profile data.

The user store belongs to the external account service; this core consumes it
read-only through the Directory interface. The Postgres implementation lives
in internal/app/db.
*/
package directory

import "context"

// Profile is the directory's view of a user: identity plus pass-through
// metadata. The role carries no meaning inside the messaging core.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Directory looks up user profiles. Unknown identifiers fail with the
// UserNotFound business error.
type Directory interface {
	Lookup(ctx context.Context, userID string) (Profile, error)
}
