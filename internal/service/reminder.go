package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/goalbot/goalbot/internal/biz/domain"
	"github.com/goalbot/goalbot/internal/biz/repo"
	"github.com/goalbot/goalbot/internal/bus"
)

// tickInterval is how often the scheduler scans for due reminders. One scan
// per minute pairs with the exact hour:minute due check, so each reminder
// fires at most once per day.
const tickInterval = 60 * time.Second

// ReminderScheduler is a background loop that scans all goals with a
// configured reminder time each tick and enqueues a notification for every
// goal whose owner's local wall-clock time matches the configured
// hour:minute. It writes straight to the outbound queue, bypassing the
// inbound side.
//
// Because the due check is an exact-minute match on a periodic poll, a tick
// that lands late skips that day's reminder for the affected goal instead of
// firing it late. There is no catch-up or backfill.
type ReminderScheduler struct {
	bus     *bus.Bus
	users   repo.UserRepo
	goals   repo.GoalRepo
	ratings repo.RatingRepo
	log     zerolog.Logger

	// now is swappable in tests
	now func() time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewReminderScheduler wires the scheduler
func NewReminderScheduler(b *bus.Bus, users repo.UserRepo, goals repo.GoalRepo, ratings repo.RatingRepo, log zerolog.Logger) *ReminderScheduler {
	return &ReminderScheduler{
		bus:     b,
		users:   users,
		goals:   goals,
		ratings: ratings,
		log:     log.With().Str("component", "reminder").Logger(),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
}

// Start launches the scheduling loop
func (s *ReminderScheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.log.Info().Dur("interval", tickInterval).Msg("reminder scheduler started")
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.safeTick(ctx)
			case <-s.stopCh:
				s.log.Info().Msg("reminder scheduler stopped")
				return
			case <-ctx.Done():
				s.log.Info().Msg("reminder scheduler stopped: context cancelled")
				return
			}
		}
	}()
}

// Stop signals the loop to exit and waits for it
func (s *ReminderScheduler) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

// safeTick wraps one tick in a recover so a panic in scanning code never
// kills the scheduler. The next tick runs regardless.
func (s *ReminderScheduler) safeTick(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error().Interface("panic", rec).Msg("recovered panic in reminder tick")
		}
	}()
	if err := s.tick(ctx); err != nil {
		s.log.Error().Err(err).Msg("reminder tick failed")
	}
}

// tick performs one scan. Per-goal failures (malformed reminder time, broken
// user reference) are logged and skipped so one bad record never blocks the
// rest.
func (s *ReminderScheduler) tick(ctx context.Context) error {
	goals, err := s.goals.ListWithReminders(ctx)
	if err != nil {
		return fmt.Errorf("failed to list goals with reminders: %w", err)
	}
	if len(goals) == 0 {
		return nil
	}

	users, err := s.users.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	byID := make(map[int64]*domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	now := s.now()
	for _, goal := range goals {
		user, ok := byID[goal.UserID]
		if !ok {
			s.log.Warn().Int64("goal_id", goal.ID).Int64("user_id", goal.UserID).Msg("goal references unknown user, skipping")
			continue
		}
		due, err := goal.ReminderDueAt(now, user.Location())
		if err != nil {
			s.log.Error().Err(err).Int64("goal_id", goal.ID).Msg("skipping goal with bad reminder time")
			continue
		}
		if !due {
			continue
		}
		body, err := s.buildNotification(ctx, user, goal, now)
		if err != nil {
			s.log.Error().Err(err).Int64("goal_id", goal.ID).Msg("failed to build reminder")
			continue
		}
		msg := domain.NewMessage(user.Phone, domain.MsgTypeChat, body, user.ClientType)
		s.bus.EnqueueOutbound(msg)
		s.log.Info().Str("phone", user.Phone).Int64("goal_id", goal.ID).Msg("reminder enqueued")
	}
	return nil
}

// buildNotification produces the reminder text. The reserved journaling goal
// gets a digest of today's still-unrated goals; every other goal gets a
// single line.
func (s *ReminderScheduler) buildNotification(ctx context.Context, user *domain.User, goal *domain.Goal, now time.Time) (string, error) {
	if !goal.IsJournaling() {
		return fmt.Sprintf("⏰ Reminder: %s %s", goal.Emoji, goal.Description), nil
	}

	day := domain.Today(now, user.Location())
	unrated, err := s.ratings.UnratedGoals(ctx, user.ID, day)
	if err != nil {
		return "", fmt.Errorf("failed to list unrated goals: %w", err)
	}

	var pending []string
	for _, g := range unrated {
		if g.IsJournaling() {
			continue
		}
		pending = append(pending, fmt.Sprintf("• %s %s", g.Emoji, g.Description))
	}
	if len(pending) == 0 {
		return "📗 Journaling time! All your goals are tracked for today — nice work. Take a minute to write a few lines about your day.", nil
	}
	return "📗 Journaling time! You haven't tracked these goals today:\n" + strings.Join(pending, "\n"), nil
}
