package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"minder/internal/calendar"
	"minder/internal/model"
	"minder/internal/pending"
)

var sgt = time.FixedZone("SGT", 8*60*60)

// Friday 2026-08-28 10:00 SGT; "tomorrow" resolves to Saturday the 29th.
var testNow = time.Date(2026, 8, 28, 10, 0, 0, 0, sgt)

type sent struct {
	chatID   int64
	text     string
	markdown bool
	buttons  []Button
}

type fakeSender struct {
	msgs []sent
}

func (f *fakeSender) Reply(chatID int64, text string) error {
	f.msgs = append(f.msgs, sent{chatID: chatID, text: text})
	return nil
}

func (f *fakeSender) ReplyMarkdown(chatID int64, text string, buttons ...Button) error {
	f.msgs = append(f.msgs, sent{chatID: chatID, text: text, markdown: true, buttons: buttons})
	return nil
}

func (f *fakeSender) last() sent {
	if len(f.msgs) == 0 {
		return sent{}
	}
	return f.msgs[len(f.msgs)-1]
}

type createCall struct {
	title      string
	start, end time.Time
}

type fakeCalendar struct {
	events    []model.Event
	listErr   error
	createErr error
	creates   []createCall
}

func (f *fakeCalendar) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]model.Event, error) {
	return f.events, f.listErr
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, title string, start, end time.Time) (model.Event, error) {
	f.creates = append(f.creates, createCall{title: title, start: start, end: end})
	if f.createErr != nil {
		return model.Event{}, f.createErr
	}
	return model.Event{Title: title, Start: start, End: end}, nil
}

type fakeLedger struct {
	rowID   string
	err     error
	amounts []decimal.Decimal
}

func (f *fakeLedger) Append(ctx context.Context, amount decimal.Decimal, category model.Category, at time.Time) (string, error) {
	f.amounts = append(f.amounts, amount)
	if f.err != nil {
		return "", f.err
	}
	return f.rowID, nil
}

func (f *fakeLedger) RecordURL(rowID string) string {
	return "https://airtable.com/base/table/view/" + rowID
}

func newTestHandler(cal *fakeCalendar, led *fakeLedger) (*Handler, *fakeSender, *pending.Store) {
	sender := &fakeSender{}
	store := pending.NewStore()
	h := NewHandler(sender, cal, led, store, pending.NewRegistry(nil), sgt)
	h.now = func() time.Time { return testNow }
	return h, sender, store
}

func TestAppointmentConfirmFlow(t *testing.T) {
	cal := &fakeCalendar{}
	h, sender, store := newTestHandler(cal, &fakeLedger{})
	ctx := context.Background()

	h.HandleText(ctx, 42, 42, "Dentist tomorrow 3pm")

	prompt := sender.last()
	if !prompt.markdown {
		t.Fatal("prompt must be markdown")
	}
	if want := "📒 Dentist - Sat, 29 Aug - 03:00 pm?"; prompt.text != want {
		t.Errorf("prompt = %q, want %q", prompt.text, want)
	}
	if len(prompt.buttons) != 2 || prompt.buttons[0].Data != "create_appointment" || prompt.buttons[1].Data != "cancel" {
		t.Errorf("prompt buttons = %+v, want confirm/cancel", prompt.buttons)
	}

	h.HandleCallback(ctx, 42, 42, "create_appointment")

	if len(cal.creates) != 1 {
		t.Fatalf("create calls = %d, want 1", len(cal.creates))
	}
	wantStart := time.Date(2026, 8, 29, 15, 0, 0, 0, sgt)
	if !cal.creates[0].start.Equal(wantStart) {
		t.Errorf("created start = %v, want %v", cal.creates[0].start, wantStart)
	}
	if !cal.creates[0].end.Equal(wantStart.Add(time.Hour)) {
		t.Errorf("created end = %v, want start+1h", cal.creates[0].end)
	}
	if want := "✅ Dentist - Sat, 29 Aug - 03:00 pm saved"; sender.last().text != want {
		t.Errorf("confirmation = %q, want %q", sender.last().text, want)
	}

	if _, ok := store.Take(42); ok {
		t.Error("pending slot must be empty after commit")
	}
}

func TestAppointmentPromptIncludesConflictWarning(t *testing.T) {
	cal := &fakeCalendar{
		events:    []model.Event{{Title: "Gym", Start: time.Date(2026, 8, 29, 15, 0, 0, 0, sgt)}},
		createErr: calendar.ErrConflict,
	}
	h, sender, _ := newTestHandler(cal, &fakeLedger{})
	ctx := context.Background()

	h.HandleText(ctx, 42, 42, "Dentist tomorrow 3pm")

	prompt := sender.last()
	if !strings.Contains(prompt.text, "⚠️ *Warning*") {
		t.Errorf("prompt %q must carry a warning block", prompt.text)
	}
	if !strings.Contains(prompt.text, "- 03:00 pm - Gym") {
		t.Errorf("prompt %q must name the conflicting event", prompt.text)
	}

	// Confirming still attempts the create; the backend's own rejection
	// is relayed verbatim.
	h.HandleCallback(ctx, 42, 42, "create_appointment")
	if len(cal.creates) != 1 {
		t.Fatalf("create calls = %d, want 1", len(cal.creates))
	}
	if sender.last().text != calendar.ErrConflict.Error() {
		t.Errorf("reply = %q, want %q", sender.last().text, calendar.ErrConflict.Error())
	}
}

func TestConfirmTwiceIsIdempotent(t *testing.T) {
	cal := &fakeCalendar{}
	h, sender, _ := newTestHandler(cal, &fakeLedger{})
	ctx := context.Background()

	h.HandleText(ctx, 42, 42, "Dentist tomorrow 3pm")
	h.HandleCallback(ctx, 42, 42, "create_appointment")
	h.HandleCallback(ctx, 42, 42, "create_appointment")

	if len(cal.creates) != 1 {
		t.Errorf("create calls = %d, want 1 (no replay)", len(cal.creates))
	}
	if sender.last().text != msgAlreadyTaken {
		t.Errorf("reply = %q, want %q", sender.last().text, msgAlreadyTaken)
	}
}

func TestCancelDiscardsPending(t *testing.T) {
	cal := &fakeCalendar{}
	h, sender, store := newTestHandler(cal, &fakeLedger{})
	ctx := context.Background()

	h.HandleText(ctx, 42, 42, "Dentist tomorrow 3pm")
	h.HandleCallback(ctx, 42, 42, "cancel")

	if sender.last().text != msgTryAgain {
		t.Errorf("reply = %q, want %q", sender.last().text, msgTryAgain)
	}
	if _, ok := store.Take(42); ok {
		t.Error("pending slot must be empty after cancel")
	}
	if len(cal.creates) != 0 {
		t.Errorf("create calls = %d, want 0", len(cal.creates))
	}
}

func TestNewCandidateOverwritesPending(t *testing.T) {
	cal := &fakeCalendar{}
	h, _, _ := newTestHandler(cal, &fakeLedger{})
	ctx := context.Background()

	h.HandleText(ctx, 42, 42, "Dentist tomorrow 3pm")
	h.HandleText(ctx, 42, 42, "Lunch tomorrow 1pm")
	h.HandleCallback(ctx, 42, 42, "create_appointment")

	if len(cal.creates) != 1 {
		t.Fatalf("create calls = %d, want 1", len(cal.creates))
	}
	if cal.creates[0].title != "Lunch" {
		t.Errorf("created title = %q, want %q (last write wins)", cal.creates[0].title, "Lunch")
	}
}

func TestUnrecognizedTextFallsBack(t *testing.T) {
	h, sender, _ := newTestHandler(&fakeCalendar{}, &fakeLedger{})

	h.HandleText(context.Background(), 42, 42, "what's up")

	if sender.last().text != msgTryAgain {
		t.Errorf("reply = %q, want %q", sender.last().text, msgTryAgain)
	}
}

func TestExpenseLineBypassesDateParser(t *testing.T) {
	cal := &fakeCalendar{}
	led := &fakeLedger{rowID: "recNew"}
	h, sender, store := newTestHandler(cal, led)

	h.HandleText(context.Background(), 42, 42, "10.50f")

	if len(led.amounts) != 1 || !led.amounts[0].Equal(decimal.RequireFromString("10.50")) {
		t.Fatalf("ledger amounts = %v, want [10.50]", led.amounts)
	}

	receipt := sender.last()
	if !receipt.markdown || !strings.Contains(receipt.text, "*Save Expense*") {
		t.Errorf("receipt = %+v, want a markdown expense receipt", receipt)
	}
	if len(receipt.buttons) != 1 || receipt.buttons[0].URL != "https://airtable.com/base/table/view/recNew" {
		t.Errorf("receipt buttons = %+v, want a row edit link", receipt.buttons)
	}

	if _, ok := store.Take(42); ok {
		t.Error("an expense line must not create a pending appointment")
	}
	if len(cal.creates) != 0 {
		t.Errorf("create calls = %d, want 0", len(cal.creates))
	}
}

func TestExpenseFailureIsRelayedVerbatim(t *testing.T) {
	led := &fakeLedger{err: errors.New("airtable append: quota exceeded")}
	h, sender, _ := newTestHandler(&fakeCalendar{}, led)

	h.HandleText(context.Background(), 42, 42, "5t")

	if sender.last().text != "airtable append: quota exceeded" {
		t.Errorf("reply = %q, want the raw error text", sender.last().text)
	}
}

func TestAgendaCommand(t *testing.T) {
	cal := &fakeCalendar{events: []model.Event{
		{Title: "Standup", Start: time.Date(2026, 8, 28, 9, 0, 0, 0, sgt)},
	}}
	h, sender, _ := newTestHandler(cal, &fakeLedger{})

	h.HandleCommand(context.Background(), 42, "today")

	if len(sender.msgs) != 2 {
		t.Fatalf("got %d messages, want wait + agenda", len(sender.msgs))
	}
	if sender.msgs[0].text != msgWait {
		t.Errorf("first reply = %q, want %q", sender.msgs[0].text, msgWait)
	}
	agenda := sender.msgs[1]
	if !agenda.markdown {
		t.Error("agenda must be markdown")
	}
	if !strings.Contains(agenda.text, "*🗓 Event list on Fri 28 Aug*") {
		t.Errorf("agenda header missing: %q", agenda.text)
	}
	if !strings.Contains(agenda.text, "- 09:00 am - Standup") {
		t.Errorf("agenda line missing: %q", agenda.text)
	}
}

func TestAgendaCommandEmptyAndErrorLookAlike(t *testing.T) {
	for name, cal := range map[string]*fakeCalendar{
		"empty":  {},
		"failed": {listErr: errors.New("backend down")},
	} {
		h, sender, _ := newTestHandler(cal, &fakeLedger{})
		h.HandleCommand(context.Background(), 42, "tomorrow")

		if sender.last().text != msgNoAppointments {
			t.Errorf("%s listing: reply = %q, want %q", name, sender.last().text, msgNoAppointments)
		}
	}
}

func TestStartCommand(t *testing.T) {
	h, sender, _ := newTestHandler(&fakeCalendar{}, &fakeLedger{})

	h.HandleCommand(context.Background(), 42, "start")

	if sender.last().text != msgHello {
		t.Errorf("reply = %q, want %q", sender.last().text, msgHello)
	}
}

func TestInteractionRegistersUser(t *testing.T) {
	sender := &fakeSender{}
	users := pending.NewRegistry(nil)
	h := NewHandler(sender, &fakeCalendar{}, &fakeLedger{}, pending.NewStore(), users, sgt)
	h.now = func() time.Time { return testNow }

	h.HandleText(context.Background(), 7, 7, "hello")

	ids := users.IDs()
	if len(ids) != 1 || ids[0] != 7 {
		t.Errorf("registry = %v, want [7]", ids)
	}
}
