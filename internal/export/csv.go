// Package export renders a user's rating history for offline analysis.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/goalbot/goalbot/internal/biz/domain"
)

// WriteCSV writes the user's ratings joined with their goals, one row per
// rating, ordered as the ratings slice is ordered (day then goal). Ratings
// whose goal has been deleted are skipped.
func WriteCSV(w io.Writer, goals []*domain.Goal, ratings []*domain.Rating) error {
	byID := make(map[int64]*domain.Goal, len(goals))
	for _, g := range goals {
		byID[g.ID] = g
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "goal", "emoji", "value"}); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range ratings {
		goal, ok := byID[r.GoalID]
		if !ok {
			continue
		}
		row := []string{r.Day, goal.Description, goal.Emoji, strconv.Itoa(r.Value)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
