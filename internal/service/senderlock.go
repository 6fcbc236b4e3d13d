package service

import "sync"

// senderLocks serializes message processing per sender so two messages from
// the same phone number never interleave state reads and writes, while
// messages from different senders proceed concurrently.
type senderLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSenderLocks() *senderLocks {
	return &senderLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the per-sender mutex, creating it on first use, and returns
// the unlock func.
func (s *senderLocks) Lock(sender string) func() {
	s.mu.Lock()
	m, ok := s.locks[sender]
	if !ok {
		m = &sync.Mutex{}
		s.locks[sender] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}
