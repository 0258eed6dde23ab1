// Package bot routes inbound Telegram traffic through the expense and
// appointment pipelines and owns the per-user confirmation flow.
package bot

// Button is one inline keyboard button on an outbound message. Exactly
// one of Data (a callback action) or URL is set.
type Button struct {
	Label string
	Data  string
	URL   string
}

// Sender delivers outbound messages to a chat. The Telegram transport
// implements it; tests substitute a recorder.
type Sender interface {
	Reply(chatID int64, text string) error
	ReplyMarkdown(chatID int64, text string, buttons ...Button) error
}
