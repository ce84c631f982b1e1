package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"moderation_relay_bot/internal/app"
	"moderation_relay_bot/internal/domain/ticket"
	"moderation_relay_bot/internal/infra/config"
)

// contentEvents are all inbound message kinds routed through the operator
// flow. Anything else (locations, polls, ...) is not supported content.
var contentEvents = []string{
	telebot.OnText,
	telebot.OnPhoto,
	telebot.OnVoice,
	telebot.OnDocument,
	telebot.OnAudio,
	telebot.OnVideo,
	telebot.OnAnimation,
	telebot.OnSticker,
}

// RegisterOperatorHandlers wires /start and the free-text/media routing:
// reason sessions first, then category selection, then content submission.
func RegisterOperatorHandlers(
	ctx context.Context,
	b *telebot.Bot,
	cfg *config.AppConfig,
	intakeService app.IntakeService,
	fanoutService app.FanoutService,
	reasonService app.ReasonService,
	baseLogger *logrus.Entry,
) {
	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := baseLogger.WithField("handler", "/start").WithField("sender_id", senderID)
		logCtx.Info("Command received")

		if cfg.IsModerator(senderID) {
			return c.Send("👮 Moderator mode active. Decision panels for new submissions will arrive here.")
		}
		return c.Send("👋 Hello! Pick a category for your submission:", categoryKeyboard())
	})

	route := func(c telebot.Context) error {
		msg := c.Message()
		if msg == nil {
			return nil
		}
		sender := c.Sender()
		logCtx := baseLogger.WithField("sender_id", sender.ID)

		// An open reason session consumes the moderator's next message,
		// whatever the operator flow would otherwise make of it.
		if reasonService.HasSession(sender.ID) {
			return handleReason(ctx, c, reasonService, logCtx)
		}

		// Moderators without a session interact through decision panels only.
		if cfg.IsModerator(sender.ID) {
			logCtx.Debug("Ignoring free-form message from moderator")
			return nil
		}

		// Category selection from the reply keyboard.
		if category, ok := ticket.ParseCategory(msg.Text); ok {
			intakeService.SelectCategory(sender.ID, category)
			return c.Send(
				fmt.Sprintf("You picked %s. Send the content now:", category),
				&telebot.SendOptions{ReplyMarkup: &telebot.ReplyMarkup{RemoveKeyboard: true}},
			)
		}

		return handleSubmission(ctx, c, intakeService, fanoutService, logCtx)
	}

	for _, event := range contentEvents {
		b.Handle(event, route)
	}
}

func handleReason(ctx context.Context, c telebot.Context, reasonService app.ReasonService, logCtx *logrus.Entry) error {
	if c.Text() == "" {
		return c.Send("✍️ Please send the reason as plain text.")
	}

	mod := app.Moderator{ID: c.Sender().ID, Name: senderName(c.Sender())}
	rs, err := reasonService.SubmitReason(ctx, mod, c.Text())
	if err != nil {
		if errors.Is(err, app.ErrDeliveryFailed) {
			logCtx.WithError(err).Warn("Submitter unreachable, reason session kept")
			return c.Send("⚠️ The submitter could not be reached. Resend the reason to retry.")
		}
		logCtx.WithError(err).Error("Failed to process reason")
		return c.Send("⚠️ Something went wrong processing the reason. Please try again.")
	}

	return c.Send(
		fmt.Sprintf("✅ Reason for ticket `%s` delivered. The ticket is closed.", rs.TicketID),
		&telebot.SendOptions{ParseMode: telebot.ModeMarkdown},
	)
}

func handleSubmission(ctx context.Context, c telebot.Context, intakeService app.IntakeService, fanoutService app.FanoutService, logCtx *logrus.Entry) error {
	msg := c.Message()

	sub := app.Submission{
		Operator: msg.Chat.ID,
		Source:   ticket.MessageRef{ChatID: msg.Chat.ID, MessageID: msg.ID},
		Text:     submissionText(msg),
		Kind:     contentKind(msg),
	}

	t, err := intakeService.Submit(ctx, sub)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNoCategorySelected):
			return c.Send("⚠️ First use /start and pick a category from the menu.")
		case errors.Is(err, app.ErrInvalidContent):
			return c.Send("⚠️ I can't recognize any content to moderate. Send text or a supported attachment.")
		default:
			logCtx.WithError(err).Error("Failed to create ticket")
			return c.Send("⚠️ Something went wrong. Please try again.")
		}
	}

	report := fanoutService.Broadcast(ctx, t)
	if report.Delivered() == 0 {
		logCtx.WithField("ticket_id", t.ID).Error("Fan-out reached no moderator destination")
	}

	return c.Send(
		fmt.Sprintf("📩 Sent to moderation.\n🎫 *Your ticket:* `%s`", t.ID),
		&telebot.SendOptions{ParseMode: telebot.ModeMarkdown},
	)
}

func categoryKeyboard() *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{ResizeKeyboard: true}
	rows := make([]telebot.Row, 0, (len(ticket.AllCategories)+1)/2)
	for i := 0; i < len(ticket.AllCategories); i += 2 {
		row := telebot.Row{markup.Text(string(ticket.AllCategories[i]))}
		if i+1 < len(ticket.AllCategories) {
			row = append(row, markup.Text(string(ticket.AllCategories[i+1])))
		}
		rows = append(rows, row)
	}
	markup.Reply(rows...)
	return markup
}

func submissionText(msg *telebot.Message) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}

func contentKind(msg *telebot.Message) ticket.ContentKind {
	switch {
	case msg.Text != "":
		return ticket.KindText
	case msg.Photo != nil:
		return ticket.KindPhoto
	case msg.Voice != nil:
		return ticket.KindVoice
	case msg.Document != nil:
		return ticket.KindDocument
	case msg.Audio != nil:
		return ticket.KindAudio
	case msg.Video != nil:
		return ticket.KindVideo
	case msg.Animation != nil:
		return ticket.KindAnimation
	case msg.Sticker != nil:
		return ticket.KindSticker
	default:
		return ticket.KindNone
	}
}

func senderName(u *telebot.User) string {
	if u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.FirstName
}
