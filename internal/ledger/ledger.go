// Package ledger appends expense rows to an external spreadsheet-style
// datastore.
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"minder/internal/model"
)

// Ledger is the expense backend consumed by the bot.
type Ledger interface {
	// Append writes one expense row and returns the created row id.
	Append(ctx context.Context, amount decimal.Decimal, category model.Category, at time.Time) (string, error)

	// RecordURL builds the user-facing link to a previously appended
	// row, for the receipt's edit button.
	RecordURL(rowID string) string
}
