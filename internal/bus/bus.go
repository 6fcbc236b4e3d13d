// Package bus is the in-process message bus: an inbound and an outbound FIFO
// queue, each drained by a single dedicated worker. The queues are not
// persisted across restarts and make no exactly-once guarantee.
package bus

import (
	"time"

	"github.com/goalbot/goalbot/internal/biz/domain"
)

// TimeoutReplyBody is the synthesized reply returned by Submit when the
// router does not answer within the deadline, so the HTTP layer always gets
// a usable response.
const TimeoutReplyBody = "Sorry, that took too long to process. Please try again."

// Bus bundles the two directional queues. One instance is constructed at
// process start and passed by injection to every component that needs it.
type Bus struct {
	Inbound  *Queue
	Outbound *Queue
}

// New creates a bus with empty queues
func New() *Bus {
	return &Bus{Inbound: NewQueue(), Outbound: NewQueue()}
}

// EnqueueInbound hands a message to the router worker without blocking
func (b *Bus) EnqueueInbound(msg *domain.Message) {
	b.Inbound.Enqueue(msg)
}

// EnqueueOutbound hands a message to the sender worker without blocking
func (b *Bus) EnqueueOutbound(msg *domain.Message) {
	b.Outbound.Enqueue(msg)
}

// Submit enqueues the message with a private one-shot reply channel and
// blocks the caller until the router answers or the timeout elapses. On
// timeout it returns a synthesized reply rather than an error.
func (b *Bus) Submit(msg *domain.Message, timeout time.Duration) *domain.Message {
	replyCh := make(chan *domain.Message, 1)
	b.Inbound.Enqueue(msg.WithReplyChannel(replyCh))

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case reply := <-replyCh:
		return reply
	case <-timer.C:
		return msg.Reply(TimeoutReplyBody)
	}
}

// Stop injects a poison pill into both queues. Each worker observes it,
// exits its loop and does not forward it.
func (b *Bus) Stop() {
	b.Inbound.Enqueue(domain.StopMessage())
	b.Outbound.Enqueue(domain.StopMessage())
}
