// Package messaging defines queues carrying engine notifications.
package messaging

import (
	"context"
	"errors"
)

// ErrFull is returned by non blocking queues when no buffer space is left
var ErrFull = errors.New("messaging: queue full")

// Publisher publishes payloads
type Publisher[T any] interface {
	// Publish adds a new message with payload to the queue
	Publish(ctx context.Context, t *T) error
}

// Queue represents an abstract message queue for any payload type
type Queue[T any] interface {
	Publisher[T]

	// Consume retrieves a single message from the queue
	Consume(ctx context.Context) (Message[T], error)
}

// Message represents a message retrieved from a queue
type Message[T any] interface {
	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error

	// Nack indicates failure in processing this message
	Nack(err error) error
}
