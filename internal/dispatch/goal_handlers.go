package dispatch

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goalbot/goalbot/internal/biz/domain"
	"github.com/goalbot/goalbot/internal/biz/repo"
)

const (
	replyGoalAdded     = "Goal Added successfully! When you would like to be reminded?"
	replyNoPendingGoal = "Please add a goal first."
)

// helpHandler answers "help" / "commands"
type helpHandler struct{}

func (h *helpHandler) Name() string { return "help" }

func (h *helpHandler) Matches(text string) bool {
	return text == "help" || text == "commands"
}

func (h *helpHandler) Handle(_ context.Context, _ *domain.User, _ Turn) (string, error) {
	return `Here's what I can do:
• add goal <emoji> <description> — track a new habit
• list goals — show your goals
• <digits> — rate today's goals, one digit (1-3) per goal
• journal prompts — get today's journaling prompts
• delete goal <number> — remove a goal
• transcripts on/off — toggle audio transcript files
Send a time like "8pm" right after adding a goal to set its daily reminder.`, nil
}

// addGoalHandler creates a goal and opens the awaiting-reminder-time flow
type addGoalHandler struct {
	users repo.UserRepo
	goals repo.GoalRepo
}

func (h *addGoalHandler) Name() string { return "add_goal" }

func (h *addGoalHandler) Matches(text string) bool {
	return text == "add goal" || strings.HasPrefix(text, "add goal ")
}

func (h *addGoalHandler) Handle(ctx context.Context, user *domain.User, turn Turn) (string, error) {
	arg := argAfterPrefix(turn, "add goal")
	if arg == "" {
		// Matched but produced no output: dispatch continues down the chain.
		return "", nil
	}

	goal := &domain.Goal{UserID: user.ID, Description: arg}
	if fields := strings.Fields(arg); len(fields) > 1 {
		goal.Emoji = fields[0]
		goal.Description = strings.TrimSpace(arg[len(fields[0]):])
	}

	if err := h.goals.Create(ctx, goal); err != nil {
		return "", err
	}

	state := domain.AwaitingReminderTime(goal.ID)
	if err := h.users.SetState(ctx, user.ID, state); err != nil {
		return "", err
	}
	user.State = state

	return replyGoalAdded, nil
}

// reminderTimeHandler closes the awaiting-reminder-time flow. Matches is
// purely syntactic; the state precondition is checked in Handle so stray
// time strings are rejected gracefully when no flow is pending.
type reminderTimeHandler struct {
	users repo.UserRepo
	goals repo.GoalRepo
}

func (h *reminderTimeHandler) Name() string { return "reminder_time" }

func (h *reminderTimeHandler) Matches(text string) bool {
	_, ok := ParseTimeOfDay(text)
	return ok
}

func (h *reminderTimeHandler) Handle(ctx context.Context, user *domain.User, turn Turn) (string, error) {
	if user.State == nil || user.State.Name != domain.StateAwaitingReminderTime {
		return replyNoPendingGoal, nil
	}

	at, ok := ParseTimeOfDay(turn.Norm)
	if !ok {
		return replyNoPendingGoal, nil
	}

	goal, err := h.goals.GetByID(ctx, user.State.GoalID)
	if err != nil {
		return "", err
	}
	if goal == nil {
		// The pending goal vanished; drop the stale state.
		if err := h.users.SetState(ctx, user.ID, nil); err != nil {
			return "", err
		}
		user.State = nil
		return replyNoPendingGoal, nil
	}

	if err := h.goals.SetReminderTime(ctx, goal.ID, at.Format(domain.ReminderTimeLayout)); err != nil {
		return "", err
	}
	if err := h.users.SetState(ctx, user.ID, nil); err != nil {
		return "", err
	}
	user.State = nil

	label := strings.TrimSpace(goal.Emoji + " " + goal.Description)
	return fmt.Sprintf("Got it! I'll remind you about %s at %s every day.", label, at.Format("03:04 PM")), nil
}

// listGoalsHandler enumerates the user's goals
type listGoalsHandler struct {
	goals repo.GoalRepo
}

func (h *listGoalsHandler) Name() string { return "list_goals" }

func (h *listGoalsHandler) Matches(text string) bool {
	return text == "list goals"
}

func (h *listGoalsHandler) Handle(ctx context.Context, user *domain.User, _ Turn) (string, error) {
	goals, err := h.goals.ListByUser(ctx, user.ID)
	if err != nil {
		return "", err
	}
	if len(goals) == 0 {
		return `You have no goals yet. Send "add goal <emoji> <description>" to create one.`, nil
	}

	var sb strings.Builder
	sb.WriteString("Your goals:\n")
	for i, goal := range goals {
		label := strings.TrimSpace(goal.Emoji + " " + goal.Description)
		if goal.ReminderTime != nil {
			fmt.Fprintf(&sb, "%d. %s — daily reminder at %s\n", i+1, label, *goal.ReminderTime)
		} else {
			fmt.Fprintf(&sb, "%d. %s (no reminder)\n", i+1, label)
		}
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

// deleteGoalHandler removes a goal by its 1-based position
type deleteGoalHandler struct {
	goals repo.GoalRepo
}

func (h *deleteGoalHandler) Name() string { return "delete_goal" }

func (h *deleteGoalHandler) Matches(text string) bool {
	return text == "delete goal" || strings.HasPrefix(text, "delete goal ")
}

func (h *deleteGoalHandler) Handle(ctx context.Context, user *domain.User, turn Turn) (string, error) {
	arg := argAfterPrefix(turn, "delete goal")
	if arg == "" {
		return `Send "delete goal <number>" — use "list goals" to see the numbers.`, nil
	}

	goals, err := h.goals.ListByUser(ctx, user.ID)
	if err != nil {
		return "", err
	}

	idx, err := strconv.Atoi(arg)
	if err != nil || idx < 1 || idx > len(goals) {
		if len(goals) == 0 {
			return "You have no goals to delete.", nil
		}
		return fmt.Sprintf("You have %d goals — pick a number between 1 and %d.", len(goals), len(goals)), nil
	}

	goal := goals[idx-1]
	if err := h.goals.Delete(ctx, goal.ID); err != nil {
		return "", err
	}
	label := strings.TrimSpace(goal.Emoji + " " + goal.Description)
	return fmt.Sprintf("Deleted %s.", label), nil
}
