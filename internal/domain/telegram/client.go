package telegram

import (
	"gopkg.in/telebot.v3"

	"moderation_relay_bot/internal/domain/ticket"
)

// Client defines the transport operations the moderation core needs from a
// Telegram bot. It decouples the application logic from the bot library;
// every delivery failure is per-destination and recoverable.
type Client interface {
	// SendMessage sends a text message and returns a reference to it.
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) (ticket.MessageRef, error)

	// ForwardMessage forwards an existing message (preserving attachments)
	// and returns a reference to the forwarded copy.
	ForwardMessage(recipientChatID int64, src ticket.MessageRef) (ticket.MessageRef, error)

	// EditMessage replaces the text and markup of a previously sent message.
	EditMessage(ref ticket.MessageRef, text string, options *telebot.SendOptions) error

	// BotLink returns the https://t.me/... deep link to the bot's private chat.
	BotLink() string
}
