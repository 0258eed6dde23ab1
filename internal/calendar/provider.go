// Package calendar abstracts the calendar backend behind a small
// provider interface, with a Google Calendar implementation for
// read/write use and a read-only ICS implementation for subscription
// feeds.
package calendar

import (
	"context"
	"errors"
	"time"

	"minder/internal/model"
)

// ErrReadOnly is returned by CreateEvent on providers that cannot
// write, such as ICS subscriptions.
var ErrReadOnly = errors.New("calendar provider is read-only")

// ErrConflict is returned when an event cannot be created because the
// requested time overlaps an existing event. Its text is shown to the
// user verbatim.
var ErrConflict = errors.New("⛔️ Requested time conflicts with another appointment")

// Provider is the calendar backend consumed by the bot.
//
// ListEvents returns every event overlapping [timeMin, timeMax).
// CreateEvent pre-checks that window itself and fails with ErrConflict
// on overlap; there is no atomic conflict guarantee beyond that.
type Provider interface {
	ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]model.Event, error)
	CreateEvent(ctx context.Context, title string, start, end time.Time) (model.Event, error)
}
