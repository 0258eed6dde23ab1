package bot

import (
	"fmt"
	"strings"
	"time"

	"minder/internal/model"
)

const (
	// "Sat, 29 Aug - 03:00 pm", the format users see on prompts and
	// confirmations.
	dateTimeLayout = "Mon, 2 Jan - 03:04 pm"

	dayLayout   = "Mon 2 Jan"
	clockLayout = "03:04 pm"
)

func formatDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dateTimeLayout)
}

// FormatAgenda renders the event listing used by the agenda commands
// and the daily digest. The window end is exclusive, so the header
// names its last full day.
func FormatAgenda(events []model.Event, start, end time.Time, loc *time.Location) string {
	first := start.In(loc)
	last := end.In(loc).Add(-time.Nanosecond)

	header := first.Format(dayLayout)
	if first.Year() != last.Year() || first.YearDay() != last.YearDay() {
		header = header + " - " + last.Format(dayLayout)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*🗓 Event list on %s*\n\n", header)
	for i, ev := range events {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s - %s", ev.Start.In(loc).Format(clockLayout), ev.Title)
	}
	return b.String()
}

// formatPrompt renders the confirmation question, with the conflict
// warning block when there is one.
func formatPrompt(a model.Appointment, warning string, loc *time.Location) string {
	msg := fmt.Sprintf("📒 %s - %s?", a.Title, formatDateTime(a.StartedAt, loc))
	if warning != "" {
		msg += "\n\n⚠️ *Warning*\n" + warning
	}
	return msg
}

func formatSaved(a model.Appointment, loc *time.Location) string {
	return fmt.Sprintf("✅ %s - %s saved", a.Title, formatDateTime(a.StartedAt, loc))
}

func formatExpenseReceipt(e model.Expense) string {
	return fmt.Sprintf("💵 *Save Expense*\n- amount: %s$\n- category: %s %s",
		e.Amount, e.Category.Emoji(), e.Category.Title())
}
