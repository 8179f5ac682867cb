package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"crmchat/internal/app/group"
	"crmchat/internal/pkg/errs"
)

// GroupStore is the Postgres implementation of group.Store.
type GroupStore struct {
	pool *pgxpool.Pool
}

// NewGroupStore constructs a GroupStore over the shared pool.
func NewGroupStore(pool *pgxpool.Pool) *GroupStore {
	return &GroupStore{pool: pool}
}

const insertGroupSQL = `
INSERT INTO groups (name, members)
VALUES ($1, $2)
RETURNING id::text, name, members, created_at`

// Insert creates a new group row.
func (s *GroupStore) Insert(ctx context.Context, name string, members []string) (group.Group, error) {
	var g group.Group

	err := s.pool.QueryRow(ctx, insertGroupSQL, name, members).
		Scan(&g.ID, &g.Name, &g.Members, &g.CreatedAt)
	if err != nil {
		return group.Group{}, fmt.Errorf("failed to insert group: %w", err)
	}

	return g, nil
}

const getGroupSQL = `
SELECT id::text, name, members, created_at
FROM groups
WHERE id = $1::uuid`

// Get fetches one group by identifier. A malformed or unknown identifier
// yields the GroupNotFound business error.
func (s *GroupStore) Get(ctx context.Context, id string) (group.Group, error) {
	if uuid.Validate(id) != nil {
		return group.Group{}, errs.NewError(errs.ErrGroupNotFound)
	}

	var g group.Group

	err := s.pool.QueryRow(ctx, getGroupSQL, id).
		Scan(&g.ID, &g.Name, &g.Members, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return group.Group{}, errs.NewError(errs.ErrGroupNotFound)
	}
	if err != nil {
		return group.Group{}, fmt.Errorf("failed to fetch group: %w", err)
	}

	return g, nil
}

const updateGroupMembersSQL = `
UPDATE groups
SET members = $2
WHERE id = $1::uuid
RETURNING id::text, name, members, created_at`

// UpdateMembers replaces the member set of an existing group.
func (s *GroupStore) UpdateMembers(ctx context.Context, id string, members []string) (group.Group, error) {
	if uuid.Validate(id) != nil {
		return group.Group{}, errs.NewError(errs.ErrGroupNotFound)
	}

	var g group.Group

	err := s.pool.QueryRow(ctx, updateGroupMembersSQL, id, members).
		Scan(&g.ID, &g.Name, &g.Members, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return group.Group{}, errs.NewError(errs.ErrGroupNotFound)
	}
	if err != nil {
		return group.Group{}, fmt.Errorf("failed to update group members: %w", err)
	}

	return g, nil
}

const updateGroupNameSQL = `
UPDATE groups
SET name = $2
WHERE id = $1::uuid
RETURNING id::text, name, members, created_at`

// UpdateName renames an existing group.
func (s *GroupStore) UpdateName(ctx context.Context, id, name string) (group.Group, error) {
	if uuid.Validate(id) != nil {
		return group.Group{}, errs.NewError(errs.ErrGroupNotFound)
	}

	var g group.Group

	err := s.pool.QueryRow(ctx, updateGroupNameSQL, id, name).
		Scan(&g.ID, &g.Name, &g.Members, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return group.Group{}, errs.NewError(errs.ErrGroupNotFound)
	}
	if err != nil {
		return group.Group{}, fmt.Errorf("failed to rename group: %w", err)
	}

	return g, nil
}

const listGroupsSQL = `
SELECT id::text, name, members, created_at
FROM groups
ORDER BY created_at ASC`

// List returns every group in the system.
func (s *GroupStore) List(ctx context.Context) ([]group.Group, error) {
	rows, err := s.pool.Query(ctx, listGroupsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (group.Group, error) {
		var g group.Group
		err := row.Scan(&g.ID, &g.Name, &g.Members, &g.CreatedAt)
		return g, err
	})
}
