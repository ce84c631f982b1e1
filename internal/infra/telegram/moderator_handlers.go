// internal/infra/telegram/moderator_handlers.go
package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"moderation_relay_bot/internal/app"
	"moderation_relay_bot/internal/domain/ticket"
)

// RegisterModeratorHandlers wires the decision-panel button presses.
func RegisterModeratorHandlers(
	ctx context.Context,
	b *telebot.Bot,
	decisionService app.DecisionService,
	baseLogger *logrus.Entry,
) {
	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		cb := c.Callback()
		logCtx := baseLogger.WithFields(logrus.Fields{
			"handler":   "decision_callback",
			"sender_id": c.Sender().ID,
		})

		action, ticketID, err := ParseDecisionData(cb.Data)
		if err != nil {
			logCtx.WithError(err).Warn("Unparseable callback data")
			return c.Respond(&telebot.CallbackResponse{Text: "Unknown action."})
		}
		logCtx = logCtx.WithFields(logrus.Fields{"ticket_id": ticketID, "action": action})

		var origin ticket.MessageRef
		if cb.Message != nil {
			origin = ticket.MessageRef{ChatID: cb.Message.Chat.ID, MessageID: cb.Message.ID}
		}

		mod := app.Moderator{ID: c.Sender().ID, Name: senderName(c.Sender())}
		_, err = decisionService.Decide(ctx, mod, ticketID, action, origin)
		if err != nil {
			var already *app.AlreadyHandledError
			switch {
			case errors.As(err, &already):
				// Non-mutating rendering of the lost race on the pressed panel.
				text := "⚠️ Already processed."
				if already.HandledBy != "" {
					text = fmt.Sprintf("⚠️ Already processed by %s.", already.HandledBy)
				}
				if editErr := c.Edit(text); editErr != nil {
					logCtx.WithError(editErr).Debug("Could not edit stale decision panel")
				}
				return c.Respond(&telebot.CallbackResponse{Text: "Already processed."})
			case errors.Is(err, app.ErrReasonPending):
				return c.Respond(&telebot.CallbackResponse{Text: "Finish your pending reason first."})
			default:
				logCtx.WithError(err).Error("Decision failed")
				return c.Respond(&telebot.CallbackResponse{Text: "Something went wrong."})
			}
		}

		logCtx.Info("Decision applied")
		if action == app.ActionApprove {
			return c.Respond(&telebot.CallbackResponse{Text: "Approved ✅"})
		}
		return c.Respond(&telebot.CallbackResponse{Text: "Write the reason in my private chat ✍️"})
	})
}
