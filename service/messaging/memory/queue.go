// Package memory provides a buffered in-process queue.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/viant/approvalflow/internal/idgen"
	"github.com/viant/approvalflow/service/messaging"
)

// Config for memory queue implementation
type Config struct {
	MaxRetries int
	RetryDelay time.Duration
	// Buffer is the queue capacity
	Buffer int
	// Block makes Publish wait for capacity instead of failing with messaging.ErrFull
	Block bool
}

// DefaultConfig returns a standard configuration for memory queue
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		RetryDelay: 100 * time.Millisecond,
		Buffer:     1024,
	}
}

// Message is a queued payload
type Message[T any] struct {
	id       string
	payload  T
	queue    *Queue[T]
	attempts int
	mu       sync.Mutex
	done     bool
}

// ID returns message id
func (m *Message[T]) ID() string { return m.id }

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.payload
}

func (m *Message[T]) finish() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done {
		return fmt.Errorf("message %s already processed", m.id)
	}
	m.done = true
	return nil
}

// Ack acknowledges the message as processed successfully
func (m *Message[T]) Ack() error {
	return m.finish()
}

// Nack redelivers the message after RetryDelay, or moves it to the dead
// letter list once MaxRetries is exhausted
func (m *Message[T]) Nack(_ error) error {
	if err := m.finish(); err != nil {
		return err
	}
	if m.attempts >= m.queue.config.MaxRetries {
		m.queue.deadLetter(m)
		return nil
	}
	retry := &Message[T]{id: m.id, payload: m.payload, queue: m.queue, attempts: m.attempts + 1}
	time.AfterFunc(m.queue.config.RetryDelay, func() {
		if err := m.queue.enqueue(context.Background(), retry, true); err != nil {
			m.queue.deadLetter(retry)
		}
	})
	return nil
}

// Queue implements an in-memory messaging.Queue
type Queue[T any] struct {
	messages chan *Message[T]
	config   Config
	dlqMu    sync.Mutex
	dlq      []*Message[T]
}

// Publish adds a new item to the queue
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	if t == nil {
		return fmt.Errorf("nil payload")
	}
	return q.enqueue(ctx, &Message[T]{id: idgen.New(), payload: *t, queue: q}, q.config.Block)
}

func (q *Queue[T]) enqueue(ctx context.Context, msg *Message[T], block bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !block {
		select {
		case q.messages <- msg:
			return nil
		default:
			return messaging.ErrFull
		}
	}
	select {
	case q.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue[T]) deadLetter(msg *Message[T]) {
	q.dlqMu.Lock()
	defer q.dlqMu.Unlock()
	q.dlq = append(q.dlq, msg)
}

// Consume retrieves a single item from the queue
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	select {
	case msg := <-q.messages:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Size returns the current number of messages in the queue
func (q *Queue[T]) Size() int {
	return len(q.messages)
}

// DeadLetters returns payloads that exhausted retries
func (q *Queue[T]) DeadLetters() []T {
	q.dlqMu.Lock()
	defer q.dlqMu.Unlock()
	ret := make([]T, len(q.dlq))
	for i, msg := range q.dlq {
		ret[i] = msg.payload
	}
	return ret
}

// NewQueue creates a new in-memory queue
func NewQueue[T any](config Config) *Queue[T] {
	if config.Buffer <= 0 {
		config.Buffer = DefaultConfig().Buffer
	}
	return &Queue[T]{
		messages: make(chan *Message[T], config.Buffer),
		config:   config,
	}
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
