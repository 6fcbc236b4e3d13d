package dispatch

import (
	"context"
	"sort"

	"github.com/goalbot/goalbot/internal/biz/domain"
)

// In-memory repositories for handler tests.

type memUsers struct {
	users  map[int64]*domain.User
	nextID int64
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[int64]*domain.User)}
}

func (m *memUsers) GetByPhone(_ context.Context, phone string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Phone == phone {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *memUsers) Create(_ context.Context, user *domain.User) error {
	m.nextID++
	user.ID = m.nextID
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *memUsers) SetState(_ context.Context, userID int64, state *domain.ConversationState) error {
	m.users[userID].State = state
	return nil
}

func (m *memUsers) SetClientType(_ context.Context, userID int64, clientType domain.ClientType) error {
	m.users[userID].ClientType = clientType
	return nil
}

func (m *memUsers) SetSendTranscript(_ context.Context, userID int64, enabled bool) error {
	m.users[userID].SendTranscript = enabled
	return nil
}

func (m *memUsers) ListAll(_ context.Context) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		clone := *u
		users = append(users, &clone)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

type memGoals struct {
	goals  map[int64]*domain.Goal
	nextID int64
}

func newMemGoals() *memGoals {
	return &memGoals{goals: make(map[int64]*domain.Goal)}
}

func (m *memGoals) Create(_ context.Context, goal *domain.Goal) error {
	m.nextID++
	goal.ID = m.nextID
	clone := *goal
	m.goals[goal.ID] = &clone
	return nil
}

func (m *memGoals) GetByID(_ context.Context, goalID int64) (*domain.Goal, error) {
	goal, ok := m.goals[goalID]
	if !ok {
		return nil, nil
	}
	clone := *goal
	return &clone, nil
}

func (m *memGoals) ListByUser(_ context.Context, userID int64) ([]*domain.Goal, error) {
	var goals []*domain.Goal
	for _, g := range m.goals {
		if g.UserID == userID {
			clone := *g
			goals = append(goals, &clone)
		}
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].ID < goals[j].ID })
	return goals, nil
}

func (m *memGoals) ListWithReminders(_ context.Context) ([]*domain.Goal, error) {
	var goals []*domain.Goal
	for _, g := range m.goals {
		if g.ReminderTime != nil {
			clone := *g
			goals = append(goals, &clone)
		}
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].ID < goals[j].ID })
	return goals, nil
}

func (m *memGoals) SetReminderTime(_ context.Context, goalID int64, reminderTime string) error {
	m.goals[goalID].ReminderTime = &reminderTime
	return nil
}

func (m *memGoals) Delete(_ context.Context, goalID int64) error {
	delete(m.goals, goalID)
	return nil
}

type ratingKey struct {
	goalID int64
	day    string
}

type memRatings struct {
	values map[ratingKey]int
	goals  *memGoals
}

func newMemRatings(goals *memGoals) *memRatings {
	return &memRatings{values: make(map[ratingKey]int), goals: goals}
}

func (m *memRatings) Upsert(_ context.Context, goalID int64, day string, value int) error {
	m.values[ratingKey{goalID, day}] = value
	return nil
}

func (m *memRatings) UnratedGoals(ctx context.Context, userID int64, day string) ([]*domain.Goal, error) {
	all, err := m.goals.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var unrated []*domain.Goal
	for _, g := range all {
		if _, ok := m.values[ratingKey{g.ID, day}]; !ok {
			unrated = append(unrated, g)
		}
	}
	return unrated, nil
}

func (m *memRatings) ListByUser(ctx context.Context, userID int64) ([]*domain.Rating, error) {
	goals, err := m.goals.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var ratings []*domain.Rating
	for _, g := range goals {
		for key, value := range m.values {
			if key.goalID == g.ID {
				ratings = append(ratings, &domain.Rating{GoalID: key.goalID, Day: key.day, Value: value})
			}
		}
	}
	sort.Slice(ratings, func(i, j int) bool {
		if ratings[i].Day != ratings[j].Day {
			return ratings[i].Day < ratings[j].Day
		}
		return ratings[i].GoalID < ratings[j].GoalID
	})
	return ratings, nil
}
