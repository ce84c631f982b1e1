// internal/infra/telegram/client.go
package telegram

import (
	"strconv"

	"gopkg.in/telebot.v3"

	"moderation_relay_bot/internal/domain/ticket"
)

// TelebotAdapter implements the transport Client interface using the
// gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage sends a text message to the specified chat (user or channel).
func (tba *TelebotAdapter) SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) (ticket.MessageRef, error) {
	if options == nil {
		options = &telebot.SendOptions{}
	}

	msg, err := tba.bot.Send(&telebot.Chat{ID: recipientChatID}, text, options)
	if err != nil {
		return ticket.MessageRef{}, err
	}
	return ticket.MessageRef{ChatID: recipientChatID, MessageID: msg.ID}, nil
}

// ForwardMessage forwards an existing message, preserving any attachment.
func (tba *TelebotAdapter) ForwardMessage(recipientChatID int64, src ticket.MessageRef) (ticket.MessageRef, error) {
	msg, err := tba.bot.Forward(&telebot.Chat{ID: recipientChatID}, stored(src))
	if err != nil {
		return ticket.MessageRef{}, err
	}
	return ticket.MessageRef{ChatID: recipientChatID, MessageID: msg.ID}, nil
}

// EditMessage replaces the text and markup of a previously sent message.
func (tba *TelebotAdapter) EditMessage(ref ticket.MessageRef, text string, options *telebot.SendOptions) error {
	if options == nil {
		options = &telebot.SendOptions{}
	}
	_, err := tba.bot.Edit(stored(ref), text, options)
	return err
}

// BotLink returns the deep link to the bot's private chat.
func (tba *TelebotAdapter) BotLink() string {
	return "https://t.me/" + tba.bot.Me.Username
}

func stored(ref ticket.MessageRef) telebot.StoredMessage {
	return telebot.StoredMessage{
		MessageID: strconv.Itoa(ref.MessageID),
		ChatID:    ref.ChatID,
	}
}
