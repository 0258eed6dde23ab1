// Package digest pushes tomorrow's agenda to every known chat once a
// day.
package digest

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"minder/internal/bot"
	"minder/internal/calendar"
	appLog "minder/internal/log"
	"minder/internal/pending"
)

// Digest owns the daily cron job. It shares no state with message
// handling beyond reading the user registry.
type Digest struct {
	cal    calendar.Provider
	sender bot.Sender
	users  *pending.Registry
	loc    *time.Location
	cron   *cron.Cron
	now    func() time.Time
}

func New(cal calendar.Provider, sender bot.Sender, users *pending.Registry, loc *time.Location) *Digest {
	return &Digest{
		cal:    cal,
		sender: sender,
		users:  users,
		loc:    loc,
		now:    time.Now,
	}
}

// Start schedules the digest with the given cron spec, evaluated in
// the configured location.
func (d *Digest) Start(spec string) error {
	d.cron = cron.New(cron.WithLocation(d.loc))
	if _, err := d.cron.AddFunc(spec, func() {
		d.Run(context.Background())
	}); err != nil {
		return err
	}
	d.cron.Start()
	appLog.Info("digest scheduled", "spec", spec, "timezone", d.loc.String())
	return nil
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (d *Digest) Stop() {
	if d.cron != nil {
		<-d.cron.Stop().Done()
	}
}

// Run performs one digest pass: list tomorrow's events and fan the
// summary out to every registered chat. An empty or failed listing
// skips the run silently; users are never sent an error.
func (d *Digest) Run(ctx context.Context) {
	start, end := calendar.TomorrowRange(d.now(), d.loc)

	events, err := d.cal.ListEvents(ctx, start, end)
	if err != nil || len(events) == 0 {
		appLog.Info("digest skipped, no appointments", "date", start.Format("2006-01-02"))
		return
	}

	message := bot.FormatAgenda(events, start, end, d.loc)
	recipients := d.users.IDs()
	for _, chatID := range recipients {
		if err := d.sender.ReplyMarkdown(chatID, message); err != nil {
			appLog.Error("digest delivery failed", err, "chat", chatID)
		}
	}
	appLog.Info("digest delivered", "date", start.Format("2006-01-02"), "events", len(events), "recipients", len(recipients))
}
