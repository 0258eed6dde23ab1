package calendar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	appLog "minder/internal/log"
	"minder/internal/model"
)

// ICSSource is one subscribed ICS feed.
type ICSSource struct {
	ID   string
	URL  string
	Name string
}

// ICSProvider serves events from ICS subscription feeds. It is
// read-only: CreateEvent always fails with ErrReadOnly.
type ICSProvider struct {
	client  *http.Client
	sources []ICSSource
	loc     *time.Location
}

func NewICSProvider(sources []ICSSource, loc *time.Location) *ICSProvider {
	return &ICSProvider{
		client:  &http.Client{Timeout: 15 * time.Second},
		sources: sources,
		loc:     loc,
	}
}

func (p *ICSProvider) CreateEvent(ctx context.Context, title string, start, end time.Time) (model.Event, error) {
	return model.Event{}, ErrReadOnly
}

// ListEvents fetches every source and expands recurrences inside
// [timeMin, timeMax). A source that fails to fetch or parse is logged
// and skipped; the remaining sources still contribute.
func (p *ICSProvider) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]model.Event, error) {
	var events []model.Event

	for _, src := range p.sources {
		body, err := p.fetch(ctx, src)
		if err != nil {
			appLog.Error("ics fetch failed", err, "id", src.ID)
			continue
		}

		evs, err := p.expand(body, timeMin, timeMax)
		if err != nil {
			appLog.Error("ics parse failed", err, "id", src.ID)
			continue
		}
		events = append(events, evs...)
	}

	sort.Slice(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
	return events, nil
}

func (p *ICSProvider) fetch(ctx context.Context, src ICSSource) ([]byte, error) {
	if src.URL == "" {
		return nil, errors.New("source URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// expand parses one ICS payload and yields the concrete occurrences
// overlapping the window, recurring events included.
func (p *ICSProvider) expand(body []byte, timeMin, timeMax time.Time) ([]model.Event, error) {
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var out []model.Event
	for _, ve := range cal.Events() {
		start, err := ve.GetStartAt()
		if err != nil || start.IsZero() {
			continue
		}

		allDay := isAllDay(ve)

		end, err := ve.GetEndAt()
		duration := time.Hour
		if allDay {
			duration = 24 * time.Hour
		}
		if err == nil && end.After(start) {
			duration = end.Sub(start)
		}

		title := ""
		if prop := ve.GetProperty(ical.ComponentPropertySummary); prop != nil {
			title = prop.Value
		}

		rruleProp := ve.GetProperty(ical.ComponentPropertyRrule)
		if rruleProp == nil {
			out = appendIfOverlaps(out, p.occurrence(title, start, duration, allDay), timeMin, timeMax)
			continue
		}

		ropt, err := rrule.StrToROptionInLocation(rruleProp.Value, start.Location())
		if err != nil {
			appLog.Warn("ics rrule unparseable, treating event as single", "rrule", rruleProp.Value)
			out = appendIfOverlaps(out, p.occurrence(title, start, duration, allDay), timeMin, timeMax)
			continue
		}
		ropt.Dtstart = start

		rr, err := rrule.NewRRule(*ropt)
		if err != nil {
			continue
		}

		exdates := exceptionDates(ve)
		for _, occ := range rr.Between(timeMin.Add(-duration), timeMax, true) {
			if _, skip := exdates[occ.Unix()]; skip {
				continue
			}
			out = appendIfOverlaps(out, p.occurrence(title, occ, duration, allDay), timeMin, timeMax)
		}
	}

	return out, nil
}

func (p *ICSProvider) occurrence(title string, start time.Time, duration time.Duration, allDay bool) model.Event {
	return model.Event{
		Title:  title,
		Start:  start.In(p.loc),
		End:    start.Add(duration).In(p.loc),
		AllDay: allDay,
	}
}

func appendIfOverlaps(out []model.Event, ev model.Event, timeMin, timeMax time.Time) []model.Event {
	if ev.Start.Before(timeMax) && ev.End.After(timeMin) {
		out = append(out, ev)
	}
	return out
}

// isAllDay reports whether DTSTART is a date-only value.
func isAllDay(ve *ical.VEvent) bool {
	prop := ve.GetProperty(ical.ComponentPropertyDtStart)
	if prop == nil {
		return false
	}
	if vs, ok := prop.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(prop.Value, "T")
}

// exceptionDates collects EXDATE instants keyed by unix second.
func exceptionDates(ve *ical.VEvent) map[int64]struct{} {
	out := make(map[int64]struct{})
	for _, prop := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(prop.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part); err == nil {
				out[t.Unix()] = struct{}{}
			}
		}
	}
	return out
}

// parseICSTime handles the basic DATE, DATE-TIME and UTC forms used by
// EXDATE values.
func parseICSTime(v string) (time.Time, error) {
	switch {
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, time.Local)
	default:
		return time.ParseInLocation("20060102", v, time.Local)
	}
}
