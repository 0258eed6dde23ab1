package calendar

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"minder/internal/model"
)

// GoogleProvider talks to one Google calendar using a service-account
// JWT credential.
type GoogleProvider struct {
	svc        *gcal.Service
	calendarID string
	loc        *time.Location
}

// NewGoogleProvider reads the service-account key at credentialsPath
// and builds a calendar client scoped to calendarID. All-day event
// dates are interpreted in loc.
func NewGoogleProvider(ctx context.Context, credentialsPath, calendarID string, loc *time.Location) (*GoogleProvider, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read service account key: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(data, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}

	svc, err := gcal.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	return &GoogleProvider{
		svc:        svc,
		calendarID: calendarID,
		loc:        loc,
	}, nil
}

func (g *GoogleProvider) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]model.Event, error) {
	resp, err := g.svc.Events.List(g.calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]model.Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		events = append(events, g.toEvent(item))
	}
	return events, nil
}

// CreateEvent lists the target window first and refuses to write over
// an existing event. A failed pre-check listing propagates as-is.
func (g *GoogleProvider) CreateEvent(ctx context.Context, title string, start, end time.Time) (model.Event, error) {
	existing, err := g.ListEvents(ctx, start, end)
	if err != nil {
		return model.Event{}, err
	}
	if len(existing) > 0 {
		return model.Event{}, ErrConflict
	}

	created, err := g.svc.Events.Insert(g.calendarID, &gcal.Event{
		Summary:     title,
		Description: title,
		Start:       &gcal.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}).Context(ctx).Do()
	if err != nil {
		return model.Event{}, fmt.Errorf("insert event: %w", err)
	}

	return g.toEvent(created), nil
}

// toEvent converts an API event. Timed events carry RFC3339 datetimes;
// all-day events carry only a date, resolved to local midnight.
func (g *GoogleProvider) toEvent(item *gcal.Event) model.Event {
	ev := model.Event{Title: item.Summary}

	if item.Start != nil {
		if item.Start.DateTime != "" {
			ev.Start, _ = time.Parse(time.RFC3339, item.Start.DateTime)
		} else if item.Start.Date != "" {
			ev.Start, _ = time.ParseInLocation("2006-01-02", item.Start.Date, g.loc)
			ev.AllDay = true
		}
	}
	if item.End != nil {
		if item.End.DateTime != "" {
			ev.End, _ = time.Parse(time.RFC3339, item.End.DateTime)
		} else if item.End.Date != "" {
			ev.End, _ = time.ParseInLocation("2006-01-02", item.End.Date, g.loc)
		}
	}

	return ev
}
