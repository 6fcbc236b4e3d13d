package dispatch

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/goalbot/goalbot/internal/biz/domain"
	"github.com/goalbot/goalbot/internal/biz/repo"
)

var allDigits = regexp.MustCompile(`^[0-9]+$`)

// rateHandler stores the bulk rating shorthand: one digit per goal,
// position-wise against the user's ordered goal list.
type rateHandler struct {
	goals   repo.GoalRepo
	ratings repo.RatingRepo
	now     func() time.Time
}

func (h *rateHandler) Name() string { return "rate" }

func (h *rateHandler) Matches(text string) bool {
	return allDigits.MatchString(text)
}

func (h *rateHandler) Handle(ctx context.Context, user *domain.User, turn Turn) (string, error) {
	goals, err := h.goals.ListByUser(ctx, user.ID)
	if err != nil {
		return "", err
	}
	if len(goals) == 0 {
		return "You have no goals to rate yet. Add one first.", nil
	}
	if len(turn.Norm) != len(goals) {
		return fmt.Sprintf("You have %d goals — please send exactly %d digits, one rating (1-3) per goal.",
			len(goals), len(goals)), nil
	}

	for _, c := range turn.Norm {
		if c < '1' || c > '3' {
			return "Ratings must use digits 1 to 3 only.", nil
		}
	}

	day := domain.Today(h.now(), user.Location())
	for i, goal := range goals {
		value := int(turn.Norm[i] - '0')
		if err := h.ratings.Upsert(ctx, goal.ID, day, value); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("Saved %d ratings for today. Keep it up! 💪", len(goals)), nil
}

// journalPromptsHandler returns the day's journaling prompts
type journalPromptsHandler struct{}

func (h *journalPromptsHandler) Name() string { return "journal_prompts" }

func (h *journalPromptsHandler) Matches(text string) bool {
	return text == "journal prompts"
}

func (h *journalPromptsHandler) Handle(_ context.Context, _ *domain.User, _ Turn) (string, error) {
	return `📗 Journal prompts:
• What went well today?
• What are you grateful for?
• What will you do better tomorrow?`, nil
}

// transcriptsHandler toggles transcript-file delivery for audio messages
type transcriptsHandler struct {
	users repo.UserRepo
}

func (h *transcriptsHandler) Name() string { return "transcripts" }

func (h *transcriptsHandler) Matches(text string) bool {
	return text == "transcripts on" || text == "transcripts off"
}

func (h *transcriptsHandler) Handle(ctx context.Context, user *domain.User, turn Turn) (string, error) {
	enabled := turn.Norm == "transcripts on"
	if err := h.users.SetSendTranscript(ctx, user.ID, enabled); err != nil {
		return "", err
	}
	user.SendTranscript = enabled
	if enabled {
		return "Audio transcripts are now ON — I'll attach the full text to voice message replies.", nil
	}
	return "Audio transcripts are now OFF.", nil
}
