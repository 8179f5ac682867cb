/*
Package group manages chat group membership: creation, member addition,
renaming, and listing. Membership is a set — adding an existing member is a
no-op — and the creator is always the sole initial member.
*/
package group

import (
	"context"
	"time"
)

// Group is a mutable membership container. There is no delete or leave
// operation; groups behave as company-wide channels once created.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Members   []string  `json:"members"`
	CreatedAt time.Time `json:"createdAt"`
}

// Contains reports whether userID is a member of the group.
func (g Group) Contains(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// Store is the persistence boundary for groups. The Postgres implementation
// lives in internal/app/db. Lookups for unknown identifiers fail with the
// GroupNotFound business error.
type Store interface {
	Insert(ctx context.Context, name string, members []string) (Group, error)
	Get(ctx context.Context, id string) (Group, error)
	UpdateMembers(ctx context.Context, id string, members []string) (Group, error)
	UpdateName(ctx context.Context, id, name string) (Group, error)
	List(ctx context.Context) ([]Group, error)
}
