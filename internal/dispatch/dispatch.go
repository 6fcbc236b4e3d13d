// Package dispatch interprets chat commands over per-user conversation
// state. Handlers are tried in a fixed priority order; the first match that
// produces output wins.
package dispatch

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/goalbot/goalbot/internal/biz/domain"
	"github.com/goalbot/goalbot/internal/biz/repo"
)

// ReplyUnrecognized is returned when no handler produces output
const ReplyUnrecognized = `Sorry, I didn't understand that. Send "help" to see what I can do.`

// Turn carries one normalized user turn. Norm is trimmed, lower-cased and
// alias-substituted and is what handlers match on; Raw keeps the original
// casing for content extraction (goal descriptions etc).
type Turn struct {
	Norm string
	Raw  string
}

// Handler is one command in the dispatch chain. Matches is a cheap syntactic
// check on the normalized text; Handle may return "" to signal "matched but
// produced no output", in which case dispatch continues down the chain.
type Handler interface {
	Name() string
	Matches(text string) bool
	Handle(ctx context.Context, user *domain.User, turn Turn) (string, error)
}

// Word-boundary alias substitutions applied before matching. Keys only ever
// rewrite whole-token occurrences.
var defaultAliases = map[string]string{
	"journal now": "journal prompts",
	"show goals":  "list goals",
	"my goals":    "list goals",
}

type aliasRule struct {
	re   *regexp.Regexp
	repl string
}

// Dispatcher runs the ordered handler chain
type Dispatcher struct {
	handlers []Handler
	aliases  []aliasRule
	log      zerolog.Logger
}

// New creates a dispatcher with the default handler chain in priority order
func New(users repo.UserRepo, goals repo.GoalRepo, ratings repo.RatingRepo, log zerolog.Logger) *Dispatcher {
	now := time.Now
	return &Dispatcher{
		handlers: []Handler{
			&helpHandler{},
			&addGoalHandler{users: users, goals: goals},
			&reminderTimeHandler{users: users, goals: goals},
			&listGoalsHandler{goals: goals},
			&rateHandler{goals: goals, ratings: ratings, now: now},
			&journalPromptsHandler{},
			&deleteGoalHandler{goals: goals},
			&transcriptsHandler{users: users},
		},
		aliases: compileAliases(defaultAliases),
		log:     log.With().Str("component", "dispatch").Logger(),
	}
}

func compileAliases(aliases map[string]string) []aliasRule {
	rules := make([]aliasRule, 0, len(aliases))
	for key, val := range aliases {
		re := regexp.MustCompile(`(^|\s)` + regexp.QuoteMeta(key) + `($|\s)`)
		rules = append(rules, aliasRule{re: re, repl: "${1}" + val + "${2}"})
	}
	return rules
}

// Dispatch normalizes the text and runs the handler chain. Errors come back
// to the router, which converts them into an apology reply.
func (d *Dispatcher) Dispatch(ctx context.Context, user *domain.User, raw string) (string, error) {
	turn := Turn{Raw: strings.TrimSpace(raw)}
	norm := strings.ToLower(turn.Raw)
	for _, rule := range d.aliases {
		norm = rule.re.ReplaceAllString(norm, rule.repl)
	}
	turn.Norm = norm

	for _, h := range d.handlers {
		if !h.Matches(turn.Norm) {
			continue
		}
		d.log.Debug().Str("handler", h.Name()).Str("sender", user.Phone).Msg("handler matched")
		out, err := h.Handle(ctx, user, turn)
		if err != nil {
			return "", fmt.Errorf("handler %s: %w", h.Name(), err)
		}
		if out != "" {
			return out, nil
		}
	}
	return ReplyUnrecognized, nil
}

// argAfterPrefix extracts the argument after a command prefix, preferring
// the raw text so user-entered casing survives.
func argAfterPrefix(turn Turn, prefix string) string {
	if len(turn.Raw) >= len(prefix) && strings.EqualFold(turn.Raw[:len(prefix)], prefix) {
		return strings.TrimSpace(turn.Raw[len(prefix):])
	}
	if len(turn.Norm) >= len(prefix) {
		return strings.TrimSpace(turn.Norm[len(prefix):])
	}
	return ""
}
