package users

import (
	"context"
	"errors"
	"testing"
)

type capturedEvent struct {
	routingKey string
	payload    any
}

type fakePublisher struct {
	events []capturedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, routingKey string, payload any) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, capturedEvent{routingKey: routingKey, payload: payload})
	return nil
}

type fakeChannels struct {
	calls []string
	err   error
}

func (f *fakeChannels) CreateUserChannel(_ context.Context, id, name string) error {
	f.calls = append(f.calls, id+"/"+name)
	return f.err
}

func TestServiceCreatePublishesAndProvisionsChannel(t *testing.T) {
	pub := &fakePublisher{}
	channels := &fakeChannels{}
	svc := &Service{Repo: NewMemoryRepo(), Events: pub, Channels: channels}

	created, err := svc.Create(context.Background(), User{
		ID: "u-1", FirstName: "Ada", LastName: "Lovelace", Mail: "ada@example.org",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != "u-1" {
		t.Fatalf("unexpected user %+v", created)
	}
	if len(pub.events) != 1 || pub.events[0].routingKey != "user.create" {
		t.Fatalf("expected one user.create event, got %+v", pub.events)
	}
	if len(channels.calls) != 1 || channels.calls[0] != "u-1/Ada Lovelace" {
		t.Fatalf("expected channel provisioning call, got %+v", channels.calls)
	}
}

func TestServiceCreateToleratesSideEffectFailures(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	channels := &fakeChannels{err: errors.New("channels down")}
	svc := &Service{Repo: NewMemoryRepo(), Events: pub, Channels: channels}

	if _, err := svc.Create(context.Background(), User{
		ID: "u-1", FirstName: "Ada", LastName: "Lovelace", Mail: "ada@example.org",
	}); err != nil {
		t.Fatalf("side effect failures must not fail the create: %v", err)
	}

	if _, err := svc.GetByID(context.Background(), "u-1"); err != nil {
		t.Fatalf("user must be persisted regardless: %v", err)
	}
}

func TestServiceCreateFailureSkipsSideEffects(t *testing.T) {
	pub := &fakePublisher{}
	channels := &fakeChannels{}
	repo := NewMemoryRepo()
	seedUsers(t, repo, User{ID: "u-1", FirstName: "Ada", LastName: "Lovelace", Mail: "ada@example.org"})
	svc := &Service{Repo: repo, Events: pub, Channels: channels}

	_, err := svc.Create(context.Background(), User{
		ID: "u-1", FirstName: "Grace", LastName: "Hopper", Mail: "grace@example.org",
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if len(pub.events) != 0 || len(channels.calls) != 0 {
		t.Fatalf("no side effects expected on failure")
	}
}

func TestServiceCreateManyPublishesPerUser(t *testing.T) {
	pub := &fakePublisher{}
	svc := &Service{Repo: NewMemoryRepo(), Events: pub}

	created, err := svc.CreateMany(context.Background(), []User{
		{ID: "u-1", FirstName: "Ada", LastName: "Lovelace", Mail: "ada@example.org"},
		{ID: "u-2", FirstName: "Grace", LastName: "Hopper", Mail: "grace@example.org"},
	})
	if err != nil {
		t.Fatalf("CreateMany: %v", err)
	}
	if len(created) != 2 || len(pub.events) != 2 {
		t.Fatalf("expected 2 users and 2 events, got %d/%d", len(created), len(pub.events))
	}
}

func TestServiceUpdateAndDeleteEvents(t *testing.T) {
	pub := &fakePublisher{}
	repo := NewMemoryRepo()
	seedUsers(t, repo, User{ID: "u-1", FirstName: "Ada", LastName: "Lovelace", Mail: "ada@example.org"})
	svc := &Service{Repo: repo, Events: pub}

	if _, err := svc.UpdateByID(context.Background(), "u-1", Update{
		FirstName: "Augusta", LastName: "King", Mail: "augusta@example.org",
	}); err != nil {
		t.Fatalf("UpdateByID: %v", err)
	}
	if _, err := svc.DeleteByID(context.Background(), "u-1"); err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}

	if len(pub.events) != 2 || pub.events[0].routingKey != "user.update" || pub.events[1].routingKey != "user.delete" {
		t.Fatalf("unexpected events %+v", pub.events)
	}
}

func TestServiceWorksWithoutOptionalDeps(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}

	if _, err := svc.Create(context.Background(), User{
		ID: "u-1", FirstName: "Ada", LastName: "Lovelace", Mail: "ada@example.org",
	}); err != nil {
		t.Fatalf("Create without events/channels: %v", err)
	}
}
