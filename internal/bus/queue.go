package bus

import (
	"context"
	"sync"

	"github.com/goalbot/goalbot/internal/biz/domain"
)

// Queue is an unbounded FIFO message queue with exactly one long-lived
// consumer. Enqueue never blocks the producer.
type Queue struct {
	mu     sync.Mutex
	items  []*domain.Message
	notify chan struct{}
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{notify: make(chan struct{}, 1)}
}

// Enqueue appends the message and returns immediately
func (q *Queue) Enqueue(msg *domain.Message) {
	q.mu.Lock()
	q.items = append(q.items, msg)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Dequeue blocks until a message is available or the context is done.
// Messages come out in enqueue order.
func (q *Queue) Dequeue(ctx context.Context) (*domain.Message, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			msg := q.items[0]
			q.items = q.items[1:]
			remaining := len(q.items)
			q.mu.Unlock()
			if remaining > 0 {
				// Keep the consumer awake for the backlog.
				select {
				case q.notify <- struct{}{}:
				default:
				}
			}
			return msg, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.notify:
		}
	}
}

// Len returns the number of queued messages
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
