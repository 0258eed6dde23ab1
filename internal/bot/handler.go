package bot

import (
	"context"
	"strings"
	"time"

	"minder/internal/calendar"
	"minder/internal/ledger"
	appLog "minder/internal/log"
	"minder/internal/model"
	"minder/internal/parse"
	"minder/internal/pending"
)

// Callback actions carried in the inline keyboard buttons.
const (
	actionConfirm = "create_appointment"
	actionCancel  = "cancel"
)

// Canned replies, matching the original bot's voice.
const (
	msgHello          = "Hello!"
	msgWait           = "Wait a sec"
	msgTryAgain       = "Please try again!"
	msgAlreadyTaken   = "Sorry! This action is already taken"
	msgSorry          = "Sorry!"
	msgNoAppointments = "No appointments"
)

// Handler is the per-update entry point: it classifies inbound text as
// an expense line or an appointment candidate, runs the confirmation
// flow, and serves the agenda commands. Each update is handled
// independently; the pending store is the only state it mutates.
type Handler struct {
	sender  Sender
	cal     calendar.Provider
	ledger  ledger.Ledger
	pending *pending.Store
	users   *pending.Registry
	dates   *parse.DateTime
	loc     *time.Location
	now     func() time.Time
}

func NewHandler(sender Sender, cal calendar.Provider, led ledger.Ledger, store *pending.Store, users *pending.Registry, loc *time.Location) *Handler {
	return &Handler{
		sender:  sender,
		cal:     cal,
		ledger:  led,
		pending: store,
		users:   users,
		dates:   parse.NewDateTime(loc),
		loc:     loc,
		now:     time.Now,
	}
}

// HandleText classifies a plain text message. The expense pattern is
// tried first so "5.50f" can never reach the date parser; only then is
// date extraction attempted. Anything else gets the fallback reply.
func (h *Handler) HandleText(ctx context.Context, userID, chatID int64, text string) {
	h.users.Add(chatID)
	text = strings.TrimSpace(text)

	if expense, ok := parse.Expense(text); ok {
		h.recordExpense(ctx, chatID, expense)
		return
	}

	if appt, ok := h.dates.Extract(text, h.now()); ok {
		h.proposeAppointment(ctx, userID, chatID, appt)
		return
	}

	h.send(chatID, msgTryAgain)
}

// HandleCallback resolves a button press. Confirm takes the pending
// appointment and commits it; a press on an already-resolved prompt
// gets the "already taken" reply and triggers no second create.
func (h *Handler) HandleCallback(ctx context.Context, userID, chatID int64, action string) {
	h.users.Add(chatID)

	switch action {
	case actionConfirm:
		appt, ok := h.pending.Take(userID)
		if !ok {
			h.send(chatID, msgAlreadyTaken)
			return
		}
		h.send(chatID, msgWait)

		if _, err := h.cal.CreateEvent(ctx, appt.Title, appt.StartedAt, appt.EndedAt); err != nil {
			appLog.Warn("appointment create failed", "user", userID, "title", appt.Title, "reason", err)
			h.send(chatID, err.Error())
			return
		}
		h.send(chatID, formatSaved(appt, h.loc))

	case actionCancel:
		h.pending.Clear(userID)
		h.send(chatID, msgTryAgain)

	default:
		h.send(chatID, msgSorry)
	}
}

// HandleCommand serves the zero-argument agenda commands.
func (h *Handler) HandleCommand(ctx context.Context, chatID int64, command string) {
	h.users.Add(chatID)

	switch command {
	case "start":
		h.send(chatID, msgHello)
	case "today":
		start, end := calendar.TodayRange(h.now(), h.loc)
		h.agenda(ctx, chatID, start, end)
	case "tomorrow":
		start, end := calendar.TomorrowRange(h.now(), h.loc)
		h.agenda(ctx, chatID, start, end)
	case "weekend":
		start, end := calendar.WeekendRange(h.now(), h.loc)
		h.agenda(ctx, chatID, start, end)
	default:
		h.send(chatID, msgTryAgain)
	}
}

func (h *Handler) recordExpense(ctx context.Context, chatID int64, expense model.Expense) {
	rowID, err := h.ledger.Append(ctx, expense.Amount, expense.Category, h.now().In(h.loc))
	if err != nil {
		appLog.Error("expense append failed", err, "chat", chatID)
		h.send(chatID, err.Error())
		return
	}

	if err := h.sender.ReplyMarkdown(chatID, formatExpenseReceipt(expense),
		Button{Label: "📝 Edit", URL: h.ledger.RecordURL(rowID)},
	); err != nil {
		appLog.Error("reply failed", err, "chat", chatID)
	}
}

// proposeAppointment runs the conflict check and stores the candidate
// before the prompt goes out, so the prompt always reflects the true
// pre-commit state. A candidate sent while another is pending simply
// overwrites it.
func (h *Handler) proposeAppointment(ctx context.Context, userID, chatID int64, appt model.Appointment) {
	warning := calendar.CheckConflicts(ctx, h.cal, appt.StartedAt, appt.EndedAt, h.loc)
	h.pending.Put(userID, appt)

	if err := h.sender.ReplyMarkdown(chatID, formatPrompt(appt, warning, h.loc),
		Button{Label: "Yes", Data: actionConfirm},
		Button{Label: "No", Data: actionCancel},
	); err != nil {
		appLog.Error("reply failed", err, "chat", chatID)
	}
}

func (h *Handler) agenda(ctx context.Context, chatID int64, start, end time.Time) {
	h.send(chatID, msgWait)

	events, err := h.cal.ListEvents(ctx, start, end)
	if err != nil || len(events) == 0 {
		// Empty and failed listings are both "nothing to show".
		if err != nil {
			appLog.Warn("agenda listing failed", "chat", chatID, "reason", err)
		}
		h.send(chatID, msgNoAppointments)
		return
	}

	if err := h.sender.ReplyMarkdown(chatID, FormatAgenda(events, start, end, h.loc)); err != nil {
		appLog.Error("reply failed", err, "chat", chatID)
	}
}

func (h *Handler) send(chatID int64, text string) {
	if err := h.sender.Reply(chatID, text); err != nil {
		appLog.Error("reply failed", err, "chat", chatID)
	}
}
