package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalbot/goalbot/internal/biz/domain"
)

func TestWriteCSV(t *testing.T) {
	goals := []*domain.Goal{
		{ID: 1, Description: "Run 5k", Emoji: "🏃"},
		{ID: 2, Description: "Read", Emoji: "📚"},
	}
	ratings := []*domain.Rating{
		{GoalID: 1, Day: "2026-06-14", Value: 3},
		{GoalID: 2, Day: "2026-06-14", Value: 1},
		{GoalID: 1, Day: "2026-06-15", Value: 2},
		{GoalID: 99, Day: "2026-06-15", Value: 2}, // orphan, skipped
	}

	var sb strings.Builder
	require.NoError(t, WriteCSV(&sb, goals, ratings))

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "date,goal,emoji,value", lines[0])
	assert.Equal(t, "2026-06-14,Run 5k,🏃,3", lines[1])
	assert.Equal(t, "2026-06-14,Read,📚,1", lines[2])
	assert.Equal(t, "2026-06-15,Run 5k,🏃,2", lines[3])
}

func TestWriteCSVEmpty(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, WriteCSV(&sb, nil, nil))
	assert.Equal(t, "date,goal,emoji,value\n", sb.String())
}
