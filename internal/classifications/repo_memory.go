package classifications

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryRepo implements Repo in process memory. Used when no database is
// configured and throughout the test suite.
type MemoryRepo struct {
	mu   sync.RWMutex
	rows map[string]map[int]Classification // userID -> classification id -> row
	now  func() time.Time
}

// NewMemoryRepo builds an empty in-memory store.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		rows: make(map[string]map[int]Classification),
		now:  time.Now,
	}
}

// CreateMany validates the whole batch before touching state, so a rejected
// batch leaves no partial insert behind.
func (r *MemoryRepo) CreateMany(ctx context.Context, records []Classification) ([]Classification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		if rec.UserID == "" {
			return nil, fmt.Errorf("%w: user is required", ErrInvalidInput)
		}
		if rec.Layer < MinLayer || rec.Layer > MaxLayer {
			return nil, fmt.Errorf("%w: layer %d out of range", ErrInvalidInput, rec.Layer)
		}
		key := fmt.Sprintf("%d/%s", rec.ID, rec.UserID)
		if _, dup := seen[key]; dup {
			return nil, ErrDuplicate
		}
		if _, exists := r.rows[rec.UserID][rec.ID]; exists {
			return nil, ErrDuplicate
		}
		seen[key] = struct{}{}
	}

	stamp := r.now().UTC()
	out := make([]Classification, 0, len(records))
	for _, rec := range records {
		rec.ModificationDate = stamp
		if r.rows[rec.UserID] == nil {
			r.rows[rec.UserID] = make(map[int]Classification)
		}
		r.rows[rec.UserID][rec.ID] = rec
		out = append(out, rec)
	}
	return out, nil
}

// GetByUser returns the user's stored rows ordered by classification id.
func (r *MemoryRepo) GetByUser(ctx context.Context, userID string) ([]Classification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Classification, 0, len(r.rows[userID]))
	for _, rec := range r.rows[userID] {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteByUser removes all rows for the user. No error when nothing exists.
func (r *MemoryRepo) DeleteByUser(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, userID)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
