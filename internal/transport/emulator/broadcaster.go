// Package emulator implements the local-development transport: outbound
// messages fan out to every currently-listening SSE subscriber.
package emulator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/goalbot/goalbot/internal/biz/domain"
)

// Broadcaster fans one published event out to all current subscribers.
// A subscriber too slow to keep up misses that event rather than blocking
// the sender worker.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan string]struct{}
}

// NewBroadcaster creates an empty broadcaster
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan string]struct{})}
}

// Subscribe registers a listener. The returned cancel func must be called
// when the listener goes away.
func (b *Broadcaster) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 16)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every current subscriber
func (b *Broadcaster) Publish(event string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribers returns the current listener count
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Deliver implements the sender worker's transport contract. A reply with a
// transcript attachment is JSON-wrapped so the emulator UI can render both.
func (b *Broadcaster) Deliver(_ context.Context, msg *domain.Message) error {
	event := msg.Body
	if len(msg.Attachments) > 0 {
		wrapped, err := json.Marshal(map[string]any{
			"message":     msg.Body,
			"attachments": msg.Attachments,
		})
		if err != nil {
			return fmt.Errorf("failed to encode emulator event: %w", err)
		}
		event = string(wrapped)
	}
	b.Publish(event)
	return nil
}

// WriteEvent writes one SSE frame. Multi-line payloads are re-wrapped so
// every physical line is prefixed "data: ".
func WriteEvent(w io.Writer, event string) error {
	for _, line := range strings.Split(event, "\n") {
		if _, err := fmt.Fprintf(w, "data: %s\n", line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, "\n")
	return err
}
