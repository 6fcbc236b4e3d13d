package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/goalbot/goalbot/internal/biz/domain"
	"github.com/goalbot/goalbot/internal/biz/repo"
	"github.com/goalbot/goalbot/internal/bus"
)

// Sender is the outbound worker. It drains the outbound queue and delivers
// each message over the transport matching its client type. Delivery failure
// is logged and the message dropped; retry policy lives inside the transports
// themselves.
type Sender struct {
	bus        *bus.Bus
	transports map[domain.ClientType]repo.Transport
	log        zerolog.Logger
	done       chan struct{}
}

// NewSender wires the outbound worker with one transport per client type
func NewSender(b *bus.Bus, transports map[domain.ClientType]repo.Transport, log zerolog.Logger) *Sender {
	return &Sender{
		bus:        b,
		transports: transports,
		log:        log.With().Str("component", "sender").Logger(),
		done:       make(chan struct{}),
	}
}

// Start launches the worker goroutine
func (s *Sender) Start(ctx context.Context) {
	go s.run(ctx)
}

// Wait blocks until the worker has exited
func (s *Sender) Wait() {
	<-s.done
}

func (s *Sender) run(ctx context.Context) {
	defer close(s.done)
	s.log.Info().Msg("sender worker started")
	for {
		msg, err := s.bus.Outbound.Dequeue(ctx)
		if err != nil {
			s.log.Info().Msg("sender worker stopped: context cancelled")
			return
		}
		if msg.IsStop() {
			s.log.Info().Msg("sender worker stopped")
			return
		}
		s.send(ctx, msg)
	}
}

func (s *Sender) send(ctx context.Context, msg *domain.Message) {
	transport, ok := s.transports[msg.ClientType]
	if !ok {
		s.log.Error().Str("client_type", string(msg.ClientType)).Str("recipient", msg.Sender).Msg("no transport for client type, dropping message")
		return
	}
	if err := transport.Deliver(ctx, msg); err != nil {
		s.log.Error().Err(err).Str("client_type", string(msg.ClientType)).Str("recipient", msg.Sender).Msg("failed to deliver message")
		return
	}
	s.log.Debug().Str("client_type", string(msg.ClientType)).Str("recipient", msg.Sender).Msg("message delivered")
}
