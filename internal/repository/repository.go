package repository

import (
	"context"
	"database/sql"
	"time"

	"awareness_bell/internal/models"
)

// Owners stores the accounts allowed to drive the control API.
type Owners interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Count(ctx context.Context) (int, error)
}

// EventRepo is the append-only bell history.
type EventRepo interface {
	Append(ctx context.Context, e models.BellEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.BellEvent, error)
}

type Repository struct {
	EventRepo EventRepo
	Owners    Owners
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		EventRepo: NewEventSQLite(db),
		Owners:    NewOwnerSQLite(db),
	}
}
