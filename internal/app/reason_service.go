package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"moderation_relay_bot/internal/domain/session"
	"moderation_relay_bot/internal/domain/ticket"
	domainTelegram "moderation_relay_bot/internal/domain/telegram"
	"moderation_relay_bot/internal/infra/metrics"
)

// ReasonService completes the decline/modify flow: it captures the
// moderator's free-text justification, notifies the submitter and closes the
// ticket.
type ReasonService interface {
	// HasSession reports whether the moderator owes a reason. Free text from
	// such a moderator must be routed to SubmitReason, never treated as
	// ordinary content.
	HasSession(moderatorID int64) bool

	// SubmitReason sends the outcome notification to the submitter, removes
	// the ticket and clears the session. When delivery to the submitter
	// fails the session is kept (ErrDeliveryFailed) so resending the reason
	// retries the notification.
	SubmitReason(ctx context.Context, mod Moderator, reason string) (*session.ReasonSession, error)
}

type ReasonServiceImpl struct {
	ticketRepo ticket.Repository
	reasons    session.ReasonStore
	client     domainTelegram.Client
	logger     *logrus.Entry
}

func NewReasonService(
	tr ticket.Repository,
	rs session.ReasonStore,
	tc domainTelegram.Client,
	logger *logrus.Entry,
) *ReasonServiceImpl {
	return &ReasonServiceImpl{
		ticketRepo: tr,
		reasons:    rs,
		client:     tc,
		logger:     logger,
	}
}

func (s *ReasonServiceImpl) HasSession(moderatorID int64) bool {
	_, ok := s.reasons.Get(moderatorID)
	return ok
}

func (s *ReasonServiceImpl) SubmitReason(ctx context.Context, mod Moderator, reason string) (*session.ReasonSession, error) {
	rs, ok := s.reasons.Get(mod.ID)
	if !ok {
		return nil, ErrNoActiveSession
	}

	logCtx := s.logger.WithFields(logrus.Fields{
		"ticket_id":    rs.TicketID,
		"moderator_id": mod.ID,
		"outcome":      rs.Outcome,
	})

	var header, metric string
	if rs.Outcome == ticket.OutcomeModify {
		header = "✏️ *CHANGES REQUESTED*"
		metric = "modify"
	} else {
		header = "❌ *SUBMISSION DECLINED*"
		metric = "declined"
	}
	outcomeText := fmt.Sprintf("%s\n🎫 *Ticket:* `%s`\n📂 *Category:* %s\n💬 *Reason:* %s",
		header, rs.TicketID, rs.Category, reason)

	_, err := s.client.SendMessage(rs.SubmitterRef, outcomeText, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	if err != nil {
		// Session intentionally kept: the moderator retries by resending the
		// reason. At-least-once on failure, unlike the decision itself.
		logCtx.WithError(err).Error("Failed to deliver outcome to submitter, session kept for retry")
		return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	metrics.SubmitterNotificationsTotal.WithLabelValues(metric).Inc()

	if err := s.ticketRepo.Delete(ctx, rs.TicketID); err != nil && !errors.Is(err, ticket.ErrNotFound) {
		logCtx.WithError(err).Error("Failed to delete closed ticket")
	}
	s.reasons.Clear(mod.ID)

	logCtx.Info("Ticket closed with reason")
	return &rs, nil
}
