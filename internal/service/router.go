// Package service hosts the long-running workers: the inbound router, the
// outbound sender and the reminder scheduler.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/goalbot/goalbot/internal/biz/domain"
	"github.com/goalbot/goalbot/internal/biz/repo"
	"github.com/goalbot/goalbot/internal/bus"
)

const (
	replyProcessingError = "Sorry, something went wrong while processing your message. Please try again."
	replyUnsupportedType = "Sorry, I can only handle chat, audio and contact messages right now."
)

// ChatDispatcher runs the command chain for one chat turn
type ChatDispatcher interface {
	Dispatch(ctx context.Context, user *domain.User, text string) (string, error)
}

// Router is the inbound worker. It drains the inbound queue, resolves the
// sending user, runs the matching processor and routes the reply either to
// the message's one-shot reply channel or onto the outbound queue.
//
// Messages from different senders are processed concurrently; messages from
// the same sender are serialized so multi-turn conversation state never sees
// interleaved writes.
type Router struct {
	bus        *bus.Bus
	users      repo.UserRepo
	dispatcher ChatDispatcher
	audio      repo.AudioProcessor
	vcard      repo.VCardProcessor
	timezones  repo.TimezoneResolver
	locks      *senderLocks
	log        zerolog.Logger

	done chan struct{}
	wg   sync.WaitGroup
}

// NewRouter wires the inbound worker
func NewRouter(b *bus.Bus, users repo.UserRepo, dispatcher ChatDispatcher, audio repo.AudioProcessor, vcard repo.VCardProcessor, timezones repo.TimezoneResolver, log zerolog.Logger) *Router {
	return &Router{
		bus:        b,
		users:      users,
		dispatcher: dispatcher,
		audio:      audio,
		vcard:      vcard,
		timezones:  timezones,
		locks:      newSenderLocks(),
		log:        log.With().Str("component", "router").Logger(),
		done:       make(chan struct{}),
	}
}

// Start launches the worker goroutine. It runs until the bus delivers the
// poison pill.
func (r *Router) Start(ctx context.Context) {
	go r.run(ctx)
}

// Wait blocks until the worker has exited and all in-flight messages are done
func (r *Router) Wait() {
	<-r.done
	r.wg.Wait()
}

func (r *Router) run(ctx context.Context) {
	defer close(r.done)
	r.log.Info().Msg("router worker started")
	for {
		msg, err := r.bus.Inbound.Dequeue(ctx)
		if err != nil {
			r.log.Info().Msg("router worker stopped: context cancelled")
			return
		}
		if msg.IsStop() {
			r.log.Info().Msg("router worker stopped")
			return
		}
		r.wg.Add(1)
		go func(msg *domain.Message) {
			defer r.wg.Done()
			unlock := r.locks.Lock(msg.Sender)
			defer unlock()
			r.process(ctx, msg)
		}(msg)
	}
}

// process handles one inbound message end to end. A panic in a handler is
// converted into the apology reply so one bad message never kills the worker.
func (r *Router) process(ctx context.Context, msg *domain.Message) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Interface("panic", rec).Str("sender", msg.Sender).Msg("recovered panic while processing message")
			r.deliver(msg, msg.Reply(replyProcessingError))
		}
	}()

	reply, err := r.handle(ctx, msg)
	if err != nil {
		r.log.Error().Err(err).Str("sender", msg.Sender).Str("type", string(msg.Type)).Msg("failed to process message")
		r.deliver(msg, msg.Reply(replyProcessingError))
		return
	}
	r.deliver(msg, reply)
}

func (r *Router) handle(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	user, err := r.resolveUser(ctx, msg)
	if err != nil {
		return nil, err
	}

	switch msg.Type {
	case domain.MsgTypeChat:
		out, err := r.dispatcher.Dispatch(ctx, user, msg.Body)
		if err != nil {
			return nil, err
		}
		return msg.Reply(out), nil
	case domain.MsgTypeAudio, domain.MsgTypePTT:
		out, attachments, err := r.audio.Process(ctx, user, msg)
		if err != nil {
			return nil, err
		}
		if attachments != nil {
			return msg.ReplyWithAttachments(out, attachments), nil
		}
		return msg.Reply(out), nil
	case domain.MsgTypeVCard:
		out, err := r.vcard.Process(ctx, user, msg)
		if err != nil {
			return nil, err
		}
		return msg.Reply(out), nil
	default:
		return msg.Reply(replyUnsupportedType), nil
	}
}

// resolveUser loads the sender's user record, creating it on first contact
// with a timezone derived from the phone prefix. The record's client type
// follows the channel of the latest message so replies and reminders go back
// the same way.
func (r *Router) resolveUser(ctx context.Context, msg *domain.Message) (*domain.User, error) {
	user, err := r.users.GetByPhone(ctx, msg.Sender)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", msg.Sender, err)
	}
	if user == nil {
		user = &domain.User{
			Phone:      msg.Sender,
			Timezone:   r.timezones.Resolve(msg.Sender),
			ClientType: msg.ClientType,
		}
		if err := r.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", msg.Sender, err)
		}
		r.log.Info().Str("phone", user.Phone).Str("timezone", user.Timezone).Msg("created user")
		return user, nil
	}
	if msg.ClientType != "" && user.ClientType != msg.ClientType {
		if err := r.users.SetClientType(ctx, user.ID, msg.ClientType); err != nil {
			return nil, fmt.Errorf("failed to update client type for user %s: %w", msg.Sender, err)
		}
		user.ClientType = msg.ClientType
	}
	return user, nil
}

// deliver hands the reply to the waiting synchronous caller when there is
// one, otherwise enqueues it for the sender worker. The reply channel is
// buffered, so the send never blocks; the default arm only covers a caller
// that already timed out and abandoned the channel.
func (r *Router) deliver(msg, reply *domain.Message) {
	if msg.ReplyCh != nil {
		select {
		case msg.ReplyCh <- reply:
		default:
			r.bus.EnqueueOutbound(reply)
		}
		return
	}
	r.bus.EnqueueOutbound(reply)
}
