package users

import (
	"context"

	"user-backend/internal/shared/telemetry"
)

// Publisher emits domain events for sibling services.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// ChannelCreator provisions a channel for a newly created user on the
// sibling channels service.
type ChannelCreator interface {
	CreateUserChannel(ctx context.Context, id, name string) error
}

// Service contains business logic for users. Events and Channels are
// optional; when nil the corresponding side effects are skipped.
type Service struct {
	Repo     Repo
	Events   Publisher
	Channels ChannelCreator
}

// Create persists a user, provisions their channel and announces the event.
// Channel and event failures are logged, not propagated: the user row is the
// source of truth.
func (s *Service) Create(ctx context.Context, user User) (User, error) {
	created, err := s.Repo.Create(ctx, user)
	if err != nil {
		return User{}, err
	}

	if s.Channels != nil {
		if err := s.Channels.CreateUserChannel(ctx, created.ID, created.FirstName+" "+created.LastName); err != nil {
			telemetry.Warn("users.channel_create_failed", map[string]any{
				"user_id": created.ID,
				"error":   err.Error(),
			})
		}
	}
	s.publish(ctx, "user.create", created)
	return created, nil
}

// CreateMany persists a batch of users and announces one event per user.
func (s *Service) CreateMany(ctx context.Context, batch []User) ([]User, error) {
	created, err := s.Repo.CreateMany(ctx, batch)
	if err != nil {
		return nil, err
	}
	for _, user := range created {
		s.publish(ctx, "user.create", user)
	}
	return created, nil
}

// UpdateByID replaces the user's mutable fields.
func (s *Service) UpdateByID(ctx context.Context, id string, upd Update) (User, error) {
	updated, err := s.Repo.UpdateByID(ctx, id, upd)
	if err != nil {
		return User{}, err
	}
	s.publish(ctx, "user.update", updated)
	return updated, nil
}

// DeleteByID removes the user and returns the deleted record.
func (s *Service) DeleteByID(ctx context.Context, id string) (User, error) {
	deleted, err := s.Repo.DeleteByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	s.publish(ctx, "user.delete", deleted)
	return deleted, nil
}

// GetByID fetches one user.
func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	return s.Repo.GetByID(ctx, id)
}

// GetByIDs fetches the users that exist among the given ids.
func (s *Service) GetByIDs(ctx context.Context, ids []string) ([]User, error) {
	return s.Repo.GetByIDs(ctx, ids)
}

// GetMany lists users matching the filter.
func (s *Service) GetMany(ctx context.Context, filter Filter, page Page) ([]User, error) {
	return s.Repo.GetMany(ctx, filter, page)
}

// Count counts users matching the filter.
func (s *Service) Count(ctx context.Context, filter Filter) (int, error) {
	return s.Repo.Count(ctx, filter)
}

// Search lists users matching the term.
func (s *Service) Search(ctx context.Context, term string, page Page) ([]User, error) {
	return s.Repo.Search(ctx, term, page)
}

// SearchCount counts users matching the term.
func (s *Service) SearchCount(ctx context.Context, term string) (int, error) {
	return s.Repo.SearchCount(ctx, term)
}

func (s *Service) publish(ctx context.Context, routingKey string, user User) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Publish(ctx, routingKey, user); err != nil {
		telemetry.Warn("users.event_publish_failed", map[string]any{
			"routing_key": routingKey,
			"user_id":     user.ID,
			"error":       err.Error(),
		})
	}
}
