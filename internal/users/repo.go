package users

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no user matches the given id.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned when a user id already exists.
	ErrDuplicate = errors.New("user already exists")
	// ErrInvalidInput is returned when a record misses a required field.
	ErrInvalidInput = errors.New("invalid user")
)

// Repo defines persistence operations for users.
type Repo interface {
	Create(ctx context.Context, user User) (User, error)
	CreateMany(ctx context.Context, users []User) ([]User, error)
	UpdateByID(ctx context.Context, id string, upd Update) (User, error)
	DeleteByID(ctx context.Context, id string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	GetByIDs(ctx context.Context, ids []string) ([]User, error)
	GetMany(ctx context.Context, filter Filter, page Page) ([]User, error)
	Count(ctx context.Context, filter Filter) (int, error)
	Search(ctx context.Context, term string, page Page) ([]User, error)
	SearchCount(ctx context.Context, term string) (int, error)
}
