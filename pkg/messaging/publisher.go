// Package messaging defines the broker independent contract used to publish product events.
package messaging

import (
	"context"
)

const (
	// ProductsSubjectPrefix groups every product lifecycle subject.
	ProductsSubjectPrefix = "products."

	ProductsCreatedSubject = ProductsSubjectPrefix + "created"
	ProductsUpdatedSubject = ProductsSubjectPrefix + "updated"
	ProductsDeletedSubject = ProductsSubjectPrefix + "deleted"
)

// Event is a message routed by its subject. Brokers map the subject onto
// their own addressing: a JetStream subject or a topic exchange routing key.
type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// PublisherFunc adapts a plain function to Publisher.
type PublisherFunc func(ctx context.Context, event Event) error

func (f PublisherFunc) Publish(ctx context.Context, event Event) error { return f(ctx, event) }

// NopPublisher discards every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
