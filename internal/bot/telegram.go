package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	appLog "minder/internal/log"
)

// Telegram is the long-polling transport. It implements Sender and
// feeds inbound updates into a Handler.
type Telegram struct {
	api *tgbotapi.BotAPI
}

func NewTelegram(token string) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{api: api}, nil
}

// Username returns the bot account name, for startup logging.
func (t *Telegram) Username() string {
	return t.api.Self.UserName
}

func (t *Telegram) Reply(chatID int64, text string) error {
	_, err := t.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (t *Telegram) ReplyMarkdown(chatID int64, text string, buttons ...Button) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if len(buttons) > 0 {
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(buttons))
		for _, b := range buttons {
			if b.URL != "" {
				row = append(row, tgbotapi.NewInlineKeyboardButtonURL(b.Label, b.URL))
			} else {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
			}
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)
	}

	_, err := t.api.Send(msg)
	return err
}

// Run consumes updates until ctx is cancelled. Updates are handled one
// at a time; a failure in one does not affect the next.
func (t *Telegram) Run(ctx context.Context, h *Handler) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := t.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			return ctx.Err()

		case update, ok := <-updates:
			if !ok {
				return nil
			}
			t.dispatch(ctx, h, update)
		}
	}
}

func (t *Telegram) dispatch(ctx context.Context, h *Handler, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		// Acknowledge the press so the client stops its spinner.
		if _, err := t.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
			appLog.Warn("callback ack failed", "reason", err)
		}
		chatID := cq.From.ID
		if cq.Message != nil {
			chatID = cq.Message.Chat.ID
		}
		h.HandleCallback(ctx, cq.From.ID, chatID, cq.Data)

	case update.Message != nil && update.Message.IsCommand():
		h.HandleCommand(ctx, update.Message.Chat.ID, update.Message.Command())

	case update.Message != nil && update.Message.Text != "":
		userID := update.Message.Chat.ID
		if update.Message.From != nil {
			userID = update.Message.From.ID
		}
		h.HandleText(ctx, userID, update.Message.Chat.ID, update.Message.Text)
	}
}
