package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"crmchat/internal/app/directory"
	"crmchat/internal/pkg/errs"
)

// UserDirectory is the Postgres implementation of directory.Directory. It
// reads the account service's users table and never writes to it.
type UserDirectory struct {
	pool *pgxpool.Pool
}

// NewUserDirectory constructs a UserDirectory over the shared pool.
func NewUserDirectory(pool *pgxpool.Pool) *UserDirectory {
	return &UserDirectory{pool: pool}
}

const lookupUserSQL = `
SELECT id, name, email, role
FROM users
WHERE id = $1`

// Lookup resolves a user identifier to its profile.
func (d *UserDirectory) Lookup(ctx context.Context, userID string) (directory.Profile, error) {
	var p directory.Profile

	err := d.pool.QueryRow(ctx, lookupUserSQL, userID).
		Scan(&p.ID, &p.Name, &p.Email, &p.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return directory.Profile{}, errs.NewError(errs.ErrUserNotFound)
	}
	if err != nil {
		return directory.Profile{}, fmt.Errorf("failed to look up user: %w", err)
	}

	return p, nil
}
