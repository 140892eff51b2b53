package users

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepo implements Repo in process memory for dev mode and tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	users map[string]User
	now   func() time.Time
}

// NewMemoryRepo builds an empty in-memory user store.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users: make(map[string]User),
		now:   time.Now,
	}
}

func (r *MemoryRepo) Create(ctx context.Context, user User) (User, error) {
	created, err := r.CreateMany(ctx, []User{user})
	if err != nil {
		return User{}, err
	}
	return created[0], nil
}

// CreateMany validates the whole batch up front; a rejected batch inserts nothing.
func (r *MemoryRepo) CreateMany(ctx context.Context, batch []User) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(batch))
	for _, user := range batch {
		if user.ID == "" || user.FirstName == "" || user.LastName == "" || user.Mail == "" {
			return nil, ErrInvalidInput
		}
		if _, dup := seen[user.ID]; dup {
			return nil, ErrDuplicate
		}
		if _, exists := r.users[user.ID]; exists {
			return nil, ErrDuplicate
		}
		seen[user.ID] = struct{}{}
	}

	now := r.now().UTC()
	out := make([]User, 0, len(batch))
	for _, user := range batch {
		user.CreatedAt = now
		user.UpdatedAt = now
		r.users[user.ID] = user
		out = append(out, user)
	}
	return out, nil
}

func (r *MemoryRepo) UpdateByID(ctx context.Context, id string, upd Update) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	if upd.FirstName == "" || upd.LastName == "" || upd.Mail == "" {
		return User{}, ErrInvalidInput
	}
	user.FirstName = upd.FirstName
	user.LastName = upd.LastName
	user.Mail = upd.Mail
	user.UpdatedAt = r.now().UTC()
	r.users[id] = user
	return user, nil
}

func (r *MemoryRepo) DeleteByID(ctx context.Context, id string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	delete(r.users, id)
	return user, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

// GetByIDs returns the users that exist; unknown ids are skipped.
func (r *MemoryRepo) GetByIDs(ctx context.Context, ids []string) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]User, 0, len(ids))
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (r *MemoryRepo) GetMany(ctx context.Context, filter Filter, page Page) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	matched := r.matchFilter(filter)
	r.mu.RUnlock()

	return paginate(sortUsers(matched, page), page.Normalize()), nil
}

func (r *MemoryRepo) Count(ctx context.Context, filter Filter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matchFilter(filter)), nil
}

// Search matches the term as a case-insensitive substring of id, names or mail.
func (r *MemoryRepo) Search(ctx context.Context, term string, page Page) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	matched := r.matchTerm(term)
	r.mu.RUnlock()

	return paginate(sortUsers(matched, page), page.Normalize()), nil
}

func (r *MemoryRepo) SearchCount(ctx context.Context, term string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matchTerm(term)), nil
}

func (r *MemoryRepo) matchFilter(filter Filter) []User {
	out := make([]User, 0)
	for _, user := range r.users {
		if filter.FirstName != "" && user.FirstName != filter.FirstName {
			continue
		}
		if filter.LastName != "" && user.LastName != filter.LastName {
			continue
		}
		if filter.Mail != "" && user.Mail != filter.Mail {
			continue
		}
		out = append(out, user)
	}
	return out
}

func (r *MemoryRepo) matchTerm(term string) []User {
	term = strings.ToLower(term)
	out := make([]User, 0)
	for _, user := range r.users {
		haystack := strings.ToLower(user.ID + " " + user.FirstName + " " + user.LastName + " " + user.Mail)
		if strings.Contains(haystack, term) {
			out = append(out, user)
		}
	}
	return out
}

func sortUsers(list []User, page Page) []User {
	less := func(a, b User) bool { return a.ID < b.ID }
	switch page.SortBy {
	case "firstName":
		less = func(a, b User) bool { return a.FirstName < b.FirstName }
	case "lastName":
		less = func(a, b User) bool { return a.LastName < b.LastName }
	case "mail":
		less = func(a, b User) bool { return a.Mail < b.Mail }
	case "createdAt":
		less = func(a, b User) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
	sort.Slice(list, func(i, j int) bool {
		if page.SortDesc {
			return less(list[j], list[i])
		}
		return less(list[i], list[j])
	})
	return list
}

func paginate(list []User, page Page) []User {
	if page.Offset >= len(list) {
		return []User{}
	}
	end := page.Offset + page.Limit
	if end > len(list) {
		end = len(list)
	}
	return list[page.Offset:end]
}

var _ Repo = (*MemoryRepo)(nil)
