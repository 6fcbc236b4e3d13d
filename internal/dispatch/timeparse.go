package dispatch

import (
	"strings"
	"time"
)

// Accepted time-of-day spellings, tried in order. Inputs are upper-cased
// first so "8pm" meets the "3PM" layout.
var timeLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04:05PM",
	"3:04 PM",
	"3:04PM",
	"3 PM",
	"3PM",
}

// ParseTimeOfDay reports whether text reads as a wall-clock time of day and
// returns it. The check is purely syntactic; it never consults conversation
// state.
func ParseTimeOfDay(text string) (time.Time, bool) {
	candidate := strings.ToUpper(strings.TrimSpace(text))
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, candidate); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
