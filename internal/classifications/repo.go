package classifications

import (
	"context"
	"errors"
)

var (
	// ErrDuplicate is returned when a batch contains or collides with an
	// existing (id, user) pair.
	ErrDuplicate = errors.New("duplicate classification for user")
	// ErrInvalidInput is returned when a record misses a required field or
	// its layer is out of range.
	ErrInvalidInput = errors.New("invalid classification")
)

// Repo persists classifications keyed by (classification id, user).
//
// CreateMany rejects the whole batch on any constraint violation and returns
// the inserted rows with their store-assigned modification dates.
// GetByUser returns an empty slice, never nil, when nothing is stored.
// DeleteByUser is idempotent.
type Repo interface {
	CreateMany(ctx context.Context, records []Classification) ([]Classification, error)
	GetByUser(ctx context.Context, userID string) ([]Classification, error)
	DeleteByUser(ctx context.Context, userID string) error
}
