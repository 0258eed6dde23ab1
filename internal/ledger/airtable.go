package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mehanizm/airtable"
	"github.com/shopspring/decimal"

	"minder/internal/config"
	"minder/internal/model"
)

// Airtable writes expenses to one Airtable table. Field names
// (Datetime, Amount, Category) match the original base layout.
type Airtable struct {
	table *airtable.Table
	cfg   config.AirtableConfig
}

func NewAirtable(cfg config.AirtableConfig) *Airtable {
	client := airtable.NewClient(cfg.APIKey)
	return &Airtable{
		table: client.GetTable(cfg.BaseID, cfg.Table),
		cfg:   cfg,
	}
}

func (a *Airtable) Append(ctx context.Context, amount decimal.Decimal, category model.Category, at time.Time) (string, error) {
	records := &airtable.Records{
		Records: []*airtable.Record{{
			Fields: map[string]any{
				"Datetime": at.Format(time.RFC3339),
				"Amount":   amount.InexactFloat64(),
				"Category": category.Title(),
			},
		}},
	}

	created, err := a.table.AddRecordsContext(ctx, records)
	if err != nil {
		return "", fmt.Errorf("airtable append: %w", err)
	}
	if len(created.Records) == 0 {
		return "", errors.New("airtable append: no record returned")
	}
	return created.Records[0].ID, nil
}

// RecordURL points at the row inside the configured base/table/view.
func (a *Airtable) RecordURL(rowID string) string {
	return fmt.Sprintf("https://airtable.com/%s/%s/%s/%s",
		a.cfg.BaseID, a.cfg.TableID, a.cfg.ViewID, rowID)
}
