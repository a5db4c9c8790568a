package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"awareness_bell/internal/models"
)

// OwnerSQLite keeps control-API accounts in the owners table.
type OwnerSQLite struct {
	db *sql.DB
}

func NewOwnerSQLite(db *sql.DB) *OwnerSQLite {
	return &OwnerSQLite{db: db}
}

var _ Owners = (*OwnerSQLite)(nil)

const (
	insertOwnerSQL           = `INSERT INTO owners (username, password_hash) VALUES (?, ?)`
	selectOwnerByUsernameSQL = `SELECT id, username, password_hash FROM owners WHERE username = ?`
	countOwnersSQL           = `SELECT COUNT(*) FROM owners`
)

// Create inserts a new owner and returns its ID.
func (r *OwnerSQLite) Create(ctx context.Context, username, passwordHash string) (int, error) {
	res, err := r.db.ExecContext(ctx, insertOwnerSQL, username, passwordHash)
	if err != nil {
		return 0, fmt.Errorf("insert owner %q: %w", username, err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id for owner %q: %w", username, err)
	}
	return int(lastID), nil
}

// GetByUsername returns (nil, nil) when no owner has that name.
func (r *OwnerSQLite) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRowContext(ctx, selectOwnerByUsernameSQL, username).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select owner %q: %w", username, err)
	}
	return &u, nil
}

// Count reports how many owners exist.
func (r *OwnerSQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countOwnersSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count owners: %w", err)
	}
	return n, nil
}
