package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalbot/goalbot/internal/biz/domain"
	"github.com/goalbot/goalbot/internal/bus"
)

func strPtr(s string) *string { return &s }

type reminderFixture struct {
	bus     *bus.Bus
	users   *memUsers
	goals   *memGoals
	ratings *memRatings
	sched   *ReminderScheduler
}

func newReminderFixture(t *testing.T, now time.Time) *reminderFixture {
	t.Helper()
	f := &reminderFixture{
		bus:   bus.New(),
		users: newMemUsers(),
		goals: &memGoals{},
	}
	f.ratings = newMemRatings(f.goals)
	f.sched = NewReminderScheduler(f.bus, f.users, f.goals, f.ratings, zerolog.Nop())
	f.sched.now = func() time.Time { return now }
	return f
}

func (f *reminderFixture) addUser(t *testing.T, phone, tz string) *domain.User {
	t.Helper()
	u := &domain.User{Phone: phone, Timezone: tz, ClientType: domain.ClientWhatsAppWeb}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *reminderFixture) addGoal(t *testing.T, userID int64, emoji, desc string, reminder *string) *domain.Goal {
	t.Helper()
	g := &domain.Goal{UserID: userID, Emoji: emoji, Description: desc, ReminderTime: reminder}
	require.NoError(t, f.goals.Create(context.Background(), g))
	return g
}

func TestReminderFiresOnExactLocalMinute(t *testing.T) {
	// 20:00 in Berlin is 18:00 UTC on this date (CEST).
	now := time.Date(2026, 6, 15, 18, 0, 30, 0, time.UTC)
	f := newReminderFixture(t, now)
	u := f.addUser(t, "4915550001", "Europe/Berlin")
	f.addGoal(t, u.ID, "🏃", "Run 5k", strPtr("20:00:00"))

	require.NoError(t, f.sched.tick(context.Background()))
	require.Equal(t, 1, f.bus.Outbound.Len())

	msg, err := f.bus.Outbound.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "⏰ Reminder: 🏃 Run 5k", msg.Body)
	assert.Equal(t, "4915550001", msg.Sender)
	assert.Equal(t, domain.ClientWhatsAppWeb, msg.ClientType)
}

func TestReminderDoesNotFireOneMinuteOff(t *testing.T) {
	for _, utcMinute := range []int{59, 1} {
		now := time.Date(2026, 6, 15, 17, utcMinute, 0, 0, time.UTC)
		if utcMinute == 1 {
			now = time.Date(2026, 6, 15, 18, 1, 0, 0, time.UTC)
		}
		f := newReminderFixture(t, now)
		u := f.addUser(t, "4915550001", "Europe/Berlin")
		f.addGoal(t, u.ID, "🏃", "Run 5k", strPtr("20:00:00"))

		require.NoError(t, f.sched.tick(context.Background()))
		assert.Zero(t, f.bus.Outbound.Len(), "must not fire at %s", now)
	}
}

func TestReminderUnknownTimezoneFallsBackToUTC(t *testing.T) {
	now := time.Date(2026, 6, 15, 9, 30, 0, 0, time.UTC)
	f := newReminderFixture(t, now)
	u := f.addUser(t, "15550001111", "Not/AZone")
	f.addGoal(t, u.ID, "📚", "Read", strPtr("09:30:00"))

	require.NoError(t, f.sched.tick(context.Background()))
	assert.Equal(t, 1, f.bus.Outbound.Len())
}

func TestReminderBadTimeStringSkipsOnlyThatGoal(t *testing.T) {
	now := time.Date(2026, 6, 15, 9, 30, 0, 0, time.UTC)
	f := newReminderFixture(t, now)
	u := f.addUser(t, "15550001111", "UTC")
	f.addGoal(t, u.ID, "💧", "Drink water", strPtr("not-a-time"))
	f.addGoal(t, u.ID, "📚", "Read", strPtr("09:30:00"))

	require.NoError(t, f.sched.tick(context.Background()))
	require.Equal(t, 1, f.bus.Outbound.Len())

	msg, err := f.bus.Outbound.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Contains(t, msg.Body, "Read")
}

func TestJournalingReminderListsUnratedGoals(t *testing.T) {
	now := time.Date(2026, 6, 15, 21, 0, 0, 0, time.UTC)
	f := newReminderFixture(t, now)
	u := f.addUser(t, "15550001111", "UTC")
	rated := f.addGoal(t, u.ID, "🏃", "Run 5k", nil)
	f.addGoal(t, u.ID, "📚", "Read", nil)
	f.addGoal(t, u.ID, domain.JournalingEmoji, domain.JournalingDescription, strPtr("21:00:00"))

	day := domain.Today(now, time.UTC)
	require.NoError(t, f.ratings.Upsert(context.Background(), rated.ID, day, 3))

	require.NoError(t, f.sched.tick(context.Background()))
	require.Equal(t, 1, f.bus.Outbound.Len())

	msg, err := f.bus.Outbound.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Contains(t, msg.Body, "📗 Journaling time!")
	assert.Contains(t, msg.Body, "• 📚 Read")
	assert.NotContains(t, msg.Body, "Run 5k")
	assert.NotContains(t, msg.Body, domain.JournalingDescription+"\n")
}

func TestJournalingReminderAllDoneVariant(t *testing.T) {
	now := time.Date(2026, 6, 15, 21, 0, 0, 0, time.UTC)
	f := newReminderFixture(t, now)
	u := f.addUser(t, "15550001111", "UTC")
	g := f.addGoal(t, u.ID, "🏃", "Run 5k", nil)
	f.addGoal(t, u.ID, domain.JournalingEmoji, domain.JournalingDescription, strPtr("21:00:00"))

	day := domain.Today(now, time.UTC)
	require.NoError(t, f.ratings.Upsert(context.Background(), g.ID, day, 2))

	require.NoError(t, f.sched.tick(context.Background()))
	require.Equal(t, 1, f.bus.Outbound.Len())

	msg, err := f.bus.Outbound.Dequeue(context.Background())
	require.NoError(t, err)
	assert.Contains(t, msg.Body, "All your goals are tracked")
}

func TestReminderGoalWithUnknownUserSkipped(t *testing.T) {
	now := time.Date(2026, 6, 15, 9, 30, 0, 0, time.UTC)
	f := newReminderFixture(t, now)
	f.addGoal(t, 999, "📚", "Read", strPtr("09:30:00"))

	require.NoError(t, f.sched.tick(context.Background()))
	assert.Zero(t, f.bus.Outbound.Len())
}
