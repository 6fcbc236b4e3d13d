package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/goalbot/goalbot/internal/biz/domain"
)

// In-memory repo fakes shared by the worker tests.

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]*domain.User)}
}

func (m *memUsers) GetByPhone(_ context.Context, phone string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[phone]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	user.ID = m.nextID
	cp := *user
	m.users[user.Phone] = &cp
	return nil
}

func (m *memUsers) SetState(_ context.Context, userID int64, state *domain.ConversationState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == userID {
			u.State = state
			return nil
		}
	}
	return fmt.Errorf("user %d not found", userID)
}

func (m *memUsers) SetClientType(_ context.Context, userID int64, clientType domain.ClientType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == userID {
			u.ClientType = clientType
			return nil
		}
	}
	return fmt.Errorf("user %d not found", userID)
}

func (m *memUsers) SetSendTranscript(_ context.Context, userID int64, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == userID {
			u.SendTranscript = enabled
			return nil
		}
	}
	return fmt.Errorf("user %d not found", userID)
}

func (m *memUsers) ListAll(_ context.Context) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

type memGoals struct {
	mu     sync.Mutex
	nextID int64
	goals  []*domain.Goal
}

func (m *memGoals) Create(_ context.Context, goal *domain.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	goal.ID = m.nextID
	cp := *goal
	m.goals = append(m.goals, &cp)
	return nil
}

func (m *memGoals) GetByID(_ context.Context, goalID int64) (*domain.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.goals {
		if g.ID == goalID {
			cp := *g
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memGoals) ListByUser(_ context.Context, userID int64) ([]*domain.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Goal
	for _, g := range m.goals {
		if g.UserID == userID {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memGoals) ListWithReminders(_ context.Context) ([]*domain.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Goal
	for _, g := range m.goals {
		if g.ReminderTime != nil {
			cp := *g
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memGoals) SetReminderTime(_ context.Context, goalID int64, reminderTime string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.goals {
		if g.ID == goalID {
			g.ReminderTime = &reminderTime
			return nil
		}
	}
	return fmt.Errorf("goal %d not found", goalID)
}

func (m *memGoals) Delete(_ context.Context, goalID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, g := range m.goals {
		if g.ID == goalID {
			m.goals = append(m.goals[:i], m.goals[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("goal %d not found", goalID)
}

type memRatings struct {
	mu     sync.Mutex
	goals  *memGoals
	valued map[string]int // "goalID/day" -> value
}

func newMemRatings(goals *memGoals) *memRatings {
	return &memRatings{goals: goals, valued: make(map[string]int)}
}

func (m *memRatings) Upsert(_ context.Context, goalID int64, day string, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.valued[fmt.Sprintf("%d/%s", goalID, day)] = value
	return nil
}

func (m *memRatings) UnratedGoals(ctx context.Context, userID int64, day string) ([]*domain.Goal, error) {
	goals, err := m.goals.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Goal
	for _, g := range goals {
		if _, ok := m.valued[fmt.Sprintf("%d/%s", g.ID, day)]; !ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memRatings) ListByUser(ctx context.Context, userID int64) ([]*domain.Rating, error) {
	return nil, nil
}
