package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"moderation_relay_bot/internal/domain/session"
	"moderation_relay_bot/internal/domain/ticket"
	domainTelegram "moderation_relay_bot/internal/domain/telegram"
	"moderation_relay_bot/internal/infra/metrics"
)

// DecisionService is the ticket state machine. It processes a moderator's
// action, enforces single-winner semantics under concurrent actions, and
// drives the follow-up notifications.
//
// State machine:
//
//	PENDING --approve--------> APPROVED (terminal)
//	PENDING --decline|modify-> AWAITING_REASON --reason--> CLOSED (terminal)
type DecisionService interface {
	// Decide applies the moderator's action to the ticket. origin is the
	// decision panel the action came from, used to render the acting
	// moderator's own view differently from the other panels.
	//
	// Returns *AlreadyHandledError when the ticket is not PENDING anymore
	// (or is gone); in that case nothing was mutated and the caller renders
	// a non-actionable view. Returns ErrReasonPending when the moderator
	// still owes a reason for a previous decline/modify.
	Decide(ctx context.Context, mod Moderator, ticketID string, action Action, origin ticket.MessageRef) (*ticket.Ticket, error)
}

type DecisionServiceImpl struct {
	ticketRepo ticket.Repository
	reasons    session.ReasonStore
	client     domainTelegram.Client
	logger     *logrus.Entry
}

func NewDecisionService(
	tr ticket.Repository,
	rs session.ReasonStore,
	tc domainTelegram.Client,
	logger *logrus.Entry,
) *DecisionServiceImpl {
	return &DecisionServiceImpl{
		ticketRepo: tr,
		reasons:    rs,
		client:     tc,
		logger:     logger,
	}
}

func (s *DecisionServiceImpl) Decide(ctx context.Context, mod Moderator, ticketID string, action Action, origin ticket.MessageRef) (*ticket.Ticket, error) {
	logCtx := s.logger.WithFields(logrus.Fields{
		"ticket_id":    ticketID,
		"moderator_id": mod.ID,
		"action":       action,
	})

	// A moderator still writing a reason may not open a second session.
	// Checked before the claim so a rejected attempt mutates nothing.
	if action != ActionApprove {
		if _, busy := s.reasons.Get(mod.ID); busy {
			logCtx.Warn("Decision rejected, moderator has an open reason session")
			return nil, ErrReasonPending
		}
	}

	t, err := s.ticketRepo.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, ticket.ErrNotFound) {
			// Already deleted after a terminal decision; same rendering as
			// a lost claim race.
			metrics.DecisionsTotal.WithLabelValues(string(action), "already_handled").Inc()
			return nil, &AlreadyHandledError{}
		}
		return nil, fmt.Errorf("failed to load ticket %s: %w", ticketID, err)
	}

	newStatus, outcome := targetState(action)

	// The claim is the single critical section: one conditional write,
	// exactly one winner. Everything after it is best-effort notification.
	won, err := s.ticketRepo.ClaimPending(ctx, ticketID, newStatus, outcome, mod.ID, mod.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to claim ticket %s: %w", ticketID, err)
	}
	if !won {
		metrics.DecisionsTotal.WithLabelValues(string(action), "already_handled").Inc()
		handledBy := ""
		if current, err := s.ticketRepo.GetByID(ctx, ticketID); err == nil {
			handledBy = current.ClaimedBy
		}
		logCtx.WithField("handled_by", handledBy).Info("Decision lost the claim race")
		return nil, &AlreadyHandledError{HandledBy: handledBy}
	}
	metrics.DecisionsTotal.WithLabelValues(string(action), "won").Inc()

	t.Status = newStatus
	t.Outcome = outcome
	t.ClaimedBy = mod.Name
	t.ClaimedByID = mod.ID
	t.ClaimedAt = time.Now()

	if action == ActionApprove {
		s.finalizeApproval(ctx, t, mod, logCtx)
	} else {
		s.openReasonCollection(t, mod, origin, logCtx)
	}
	return t, nil
}

func targetState(action Action) (ticket.Status, ticket.OutcomeKind) {
	switch action {
	case ActionDecline:
		return ticket.StatusAwaitingReason, ticket.OutcomeDecline
	case ActionModify:
		return ticket.StatusAwaitingReason, ticket.OutcomeModify
	default:
		return ticket.StatusApproved, ticket.OutcomeNone
	}
}

// finalizeApproval notifies the submitter, converges every moderator view and
// removes the terminal ticket from the store.
func (s *DecisionServiceImpl) finalizeApproval(ctx context.Context, t *ticket.Ticket, mod Moderator, logCtx *logrus.Entry) {
	approvalText := fmt.Sprintf("🎉 *SUBMISSION APPROVED*\n🎫 *Ticket:* `%s`\n📂 *Category:* %s\n👮 *Moderated by:* %s",
		t.ID, t.Category, mod.Name)
	_, err := s.client.SendMessage(t.SubmitterRef, approvalText, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	if err != nil {
		logCtx.WithError(err).Error("Failed to notify submitter of approval")
	} else {
		metrics.SubmitterNotificationsTotal.WithLabelValues("approved").Inc()
	}

	closedText := fmt.Sprintf("✅ *APPROVED* by %s\n🎫 *Ticket:* `%s`\n📝 %s", mod.Name, t.ID, t.Preview)
	for _, view := range t.Views {
		if err := s.client.EditMessage(view.Ref(), closedText, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown}); err != nil {
			logCtx.WithError(err).WithField("destination", view.Destination).Error("Failed to update moderator view")
		}
	}

	if err := s.ticketRepo.Delete(ctx, t.ID); err != nil {
		logCtx.WithError(err).Error("Failed to delete approved ticket")
	}
	logCtx.Info("Ticket approved")
}

// openReasonCollection stores the moderator's reason session and converges
// all views: a write-your-reason prompt for the actor, a non-actionable
// "being handled" rendering for everyone else. No submitter notification yet.
func (s *DecisionServiceImpl) openReasonCollection(t *ticket.Ticket, mod Moderator, origin ticket.MessageRef, logCtx *logrus.Entry) {
	s.reasons.Put(session.ReasonSession{
		ModeratorID:  mod.ID,
		TicketID:     t.ID,
		Outcome:      t.Outcome,
		SubmitterRef: t.SubmitterRef,
		Category:     t.Category,
		Preview:      t.Preview,
		OpenedAt:     time.Now(),
	})

	verb := "Declining"
	if t.Outcome == ticket.OutcomeModify {
		verb = "Requesting changes for"
	}
	promptText := fmt.Sprintf("✍️ *%s ticket* `%s`\nWrite the reason in my private chat now.", verb, t.ID)
	promptMarkup := &telebot.ReplyMarkup{}
	promptMarkup.Inline(promptMarkup.Row(promptMarkup.URL("💬 Open private chat", s.client.BotLink())))

	busyText := fmt.Sprintf("⏳ %s is writing a reason for ticket `%s`...", mod.Name, t.ID)

	for _, view := range t.Views {
		var err error
		if view.Ref() == origin {
			err = s.client.EditMessage(view.Ref(), promptText, &telebot.SendOptions{
				ParseMode:   telebot.ModeMarkdown,
				ReplyMarkup: promptMarkup,
			})
		} else {
			err = s.client.EditMessage(view.Ref(), busyText, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
		}
		if err != nil {
			logCtx.WithError(err).WithField("destination", view.Destination).Error("Failed to update moderator view")
		}
	}

	// Nudge the moderator in private, in case the panel lives in a channel.
	nudge := fmt.Sprintf("📝 *Reason needed*\n🎫 Ticket: `%s`\n📂 Category: %s\n\nWrite the reason below:", t.ID, t.Category)
	if _, err := s.client.SendMessage(mod.ID, nudge, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown}); err != nil {
		logCtx.WithError(err).Warn("Failed to send private reason prompt")
	}

	logCtx.WithField("outcome", t.Outcome).Info("Reason collection opened")
}
