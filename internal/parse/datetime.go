// Package parse turns free-form message text into structured
// appointments and expense lines. Both extractors treat "no match" as a
// normal outcome, not an error: most messages are neither.
package parse

import (
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"minder/internal/model"
)

// DateTime extracts appointment candidates from natural-language text.
// Timezone-naive phrases ("tomorrow 3pm") are resolved in the fixed
// location given at construction.
type DateTime struct {
	w   *when.Parser
	loc *time.Location
}

func NewDateTime(loc *time.Location) *DateTime {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &DateTime{w: w, loc: loc}
}

var (
	// A dangling "on" left behind after the date phrase is stripped,
	// e.g. "Meeting on tomorrow 3pm" -> "Meeting on" -> "Meeting".
	trailingOn = regexp.MustCompile(`\s(on)$`)

	// Connector between the start phrase and an explicit end time,
	// e.g. "tomorrow 3pm to 4pm".
	rangeConnector = regexp.MustCompile(`^\s*(?:to|until|till|-)\s*`)
)

// Extract runs the natural-language parser over text, resolving
// relative phrases against now. Only the first recognized phrase
// counts; the appointment title is text minus that phrase. Without an
// explicit end time the appointment lasts one hour, and an "end" that
// resolves before the start is discarded in favor of the default so
// downstream code never sees a negative duration.
func (d *DateTime) Extract(text string, now time.Time) (model.Appointment, bool) {
	base := now.In(d.loc)

	r, err := d.w.Parse(text, base)
	if err != nil || r == nil {
		return model.Appointment{}, false
	}

	start := r.Time
	consumed := r.Index + len(r.Text)
	end, extra := d.resolveEnd(text[consumed:], start)
	consumed += extra

	// Cutting the phrase out of the middle can leave doubled spaces.
	title := strings.Join(strings.Fields(text[:r.Index]+" "+text[consumed:]), " ")
	title = strings.TrimSpace(trailingOn.ReplaceAllString(title, ""))

	return model.Appointment{
		Title:     title,
		StartedAt: start,
		EndedAt:   end,
	}, true
}

// resolveEnd looks just past the start phrase for a connector word
// followed by a second time phrase ("... 3pm to 4pm"). It returns the
// appointment end and how many bytes of rest the range consumed, zero
// when rest does not continue the range. The parser stops at the
// connector, so the end half is parsed separately against the start.
func (d *DateTime) resolveEnd(rest string, start time.Time) (time.Time, int) {
	end := start.Add(time.Hour)

	conn := rangeConnector.FindString(rest)
	if conn == "" {
		return end, 0
	}
	er, err := d.w.Parse(rest[len(conn):], start)
	if err != nil || er == nil || er.Index != 0 {
		return end, 0
	}
	if er.Time.After(start) {
		end = er.Time
	}
	return end, len(conn) + len(er.Text)
}
