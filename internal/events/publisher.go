// Package events publishes user domain events to a message broker so sibling
// services can react to profile changes.
package events

import "context"

// Publisher emits domain events keyed by routing key.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close() error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

// Publish implements Publisher.
func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

// Close implements Publisher.
func (NoopPublisher) Close() error { return nil }
