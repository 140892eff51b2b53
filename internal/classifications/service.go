package classifications

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/singleflight"

	"user-backend/internal/shared/metrics"
)

const defaultExpirationDays = 3

const millisPerDay = 24 * 60 * 60 * 1000

// Service is the authoritative read path for a user's classifications. It
// refreshes the store from the external source whenever the stored set is
// absent or stale, and it is the only writer of classification rows.
type Service struct {
	repo           Repo
	source         Source
	expirationDays int
	group          singleflight.Group
	now            func() time.Time
}

// NewService wires the refresh engine. expirationDays falls back to the
// default of 3 when non-positive.
func NewService(repo Repo, source Source, expirationDays int) *Service {
	if expirationDays <= 0 {
		expirationDays = defaultExpirationDays
	}
	return &Service{
		repo:           repo,
		source:         source,
		expirationDays: expirationDays,
		now:            time.Now,
	}
}

// GetUserClassifications returns the user's current classification set,
// refreshing it first when absent or stale. The result is never nil: an
// unknown user, a user with no classifications and an unreachable source all
// look the same to callers, an empty set. Store errors propagate unmodified.
func (s *Service) GetUserClassifications(ctx context.Context, userID string) ([]Classification, error) {
	stored, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.State(stored) == StateFresh {
		return stored, nil
	}
	return s.UpdateUserClassifications(ctx, userID)
}

// State classifies a stored set as absent, fresh or stale.
func (s *Service) State(records []Classification) State {
	if len(records) == 0 {
		return StateAbsent
	}
	if s.HasExpiredClassification(records) {
		return StateStale
	}
	return StateFresh
}

// HasExpiredClassification reports whether any record exceeds the expiration
// threshold. The day difference is the ceiling of the absolute millisecond
// difference over 86,400,000, so any positive fraction past a full day counts
// as another day. An empty set is not expired; absence is a separate state.
func (s *Service) HasExpiredClassification(records []Classification) bool {
	now := s.now()
	for _, rec := range records {
		diff := now.Sub(rec.ModificationDate)
		if diff < 0 {
			diff = -diff
		}
		days := math.Ceil(float64(diff.Milliseconds()) / float64(millisPerDay))
		if days > float64(s.expirationDays) {
			return true
		}
	}
	return false
}

// UpdateUserClassifications replaces the user's stored set with a fresh fetch
// from the source. A source reporting no data leaves the store untouched and
// yields an empty set. Otherwise all prior rows are deleted and the fetched
// rows inserted in one batch; an empty fetch still clears stale data.
// Concurrent refreshes for the same user collapse into one fetch+replace.
func (s *Service) UpdateUserClassifications(ctx context.Context, userID string) ([]Classification, error) {
	result, err, _ := s.group.Do(userID, func() (any, error) {
		return s.refresh(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return result.([]Classification), nil
}

func (s *Service) refresh(ctx context.Context, userID string) ([]Classification, error) {
	metrics.IncRefresh()
	start := time.Now()

	fetched, ok := s.source.FetchUserClassifications(ctx, userID)
	if !ok {
		metrics.IncRefreshAbsent()
		return []Classification{}, nil
	}

	// Delete-then-insert is the replace semantic. The pair is not wrapped in
	// a transaction, so callers may observe an empty window if the insert
	// fails; the store's uniqueness constraint is the backstop for races.
	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		metrics.IncRefreshFailed()
		return nil, err
	}

	created, err := s.repo.CreateMany(ctx, fetched)
	if err != nil {
		metrics.IncRefreshFailed()
		return nil, err
	}
	if created == nil {
		created = []Classification{}
	}

	metrics.ObserveRefreshDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
	return created, nil
}
