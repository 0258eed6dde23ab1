package calendar

import (
	"context"
	"fmt"
	"time"

	"minder/internal/config"
)

// NewProvider builds the calendar backend named by cfg.Provider.
func NewProvider(ctx context.Context, cfg *config.Config, loc *time.Location) (Provider, error) {
	switch cfg.Provider {
	case "google":
		return NewGoogleProvider(ctx, cfg.GoogleCredentials, cfg.CalendarID, loc)

	case "ics":
		sources := make([]ICSSource, 0, len(cfg.ICS))
		for _, src := range cfg.ICS {
			sources = append(sources, ICSSource{ID: src.ID, URL: src.URL, Name: src.Name})
		}
		return NewICSProvider(sources, loc), nil

	default:
		return nil, fmt.Errorf("unsupported calendar provider: %q", cfg.Provider)
	}
}
