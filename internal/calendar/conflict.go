package calendar

import (
	"context"
	"strings"
	"time"
)

const clockLayout = "03:04 pm"

// CheckConflicts lists events overlapping [start, end) and formats one
// warning line per conflicting event. Both an empty listing and a
// failed listing yield no warning: appointment creation must not be
// blocked by a transient lookup failure, and the two cases are not
// distinguishable to callers.
func CheckConflicts(ctx context.Context, p Provider, start, end time.Time, loc *time.Location) string {
	events, err := p.ListEvents(ctx, start, end)
	if err != nil || len(events) == 0 {
		return ""
	}

	lines := make([]string, 0, len(events))
	for _, ev := range events {
		lines = append(lines, "- "+ev.Start.In(loc).Format(clockLayout)+" - "+ev.Title)
	}
	return strings.Join(lines, "\n")
}
