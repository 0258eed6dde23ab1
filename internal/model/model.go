// Package model holds the domain types shared between the parsers, the
// calendar layer and the bot.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Appointment is an extracted, not-yet-committed calendar entry. It sits
// in the pending store until the user confirms or discards it.
type Appointment struct {
	// Title is the message text left over after the date/time phrase
	// was stripped.
	Title string

	// StartedAt / EndedAt are absolute instants, resolved in the
	// configured local timezone when the source text was naive.
	// EndedAt defaults to StartedAt + 1h when the text carried no
	// explicit end.
	StartedAt time.Time
	EndedAt   time.Time
}

// Event is a read-only calendar entry as reported by a calendar backend.
type Event struct {
	Title string
	Start time.Time
	End   time.Time

	// AllDay marks events that carry only a date; Start is midnight of
	// that date in the event's zone and End may be zero.
	AllDay bool
}

// Category is a single-letter expense category code.
type Category byte

const (
	CategoryFood      Category = 'f'
	CategoryTransport Category = 't'
	CategoryShopping  Category = 's'
	CategoryOther     Category = 'o'
	CategoryIncome    Category = 'i'
)

// categoryInfo maps a code to its display title and emoji.
var categoryInfo = map[Category]struct {
	title string
	emoji string
}{
	CategoryFood:      {"food", "🍛"},
	CategoryTransport: {"transport", "🚎"},
	CategoryShopping:  {"shopping", "🛍"},
	CategoryOther:     {"other", "⚡️"},
	CategoryIncome:    {"income", "💰"},
}

// Valid reports whether c is one of the closed category set.
func (c Category) Valid() bool {
	_, ok := categoryInfo[c]
	return ok
}

// Title returns the human-readable category name ("food", "transport", ...).
func (c Category) Title() string {
	return categoryInfo[c].title
}

// Emoji returns the category's display emoji.
func (c Category) Emoji() string {
	return categoryInfo[c].emoji
}

// Expense is one parsed expense line ("10.50f").
type Expense struct {
	Amount   decimal.Decimal
	Category Category
}
