// Package store defines the credential store contract shared by the
// MongoDB and SQLite backends.
package store

import (
	"context"
	"errors"

	"github.com/folio-dev/folio/internal/models"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateKey is returned when the unique identifier index rejects an insert.
	ErrDuplicateKey = errors.New("duplicate identifier")

	// ErrDatabaseUnavailable is returned when the backend cannot be reached.
	ErrDatabaseUnavailable = errors.New("database unavailable")
)

// UserStore persists user records. Implementations must enforce uniqueness
// of User.Email and report violations as ErrDuplicateKey.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// Store is a UserStore with a connection lifecycle.
type Store interface {
	UserStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
