package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"moderation_relay_bot/internal/domain/ticket"
	domainTelegram "moderation_relay_bot/internal/domain/telegram"
	"moderation_relay_bot/internal/infra/metrics"
)

// DeliveryResult is the outcome of fanning one ticket out to one destination.
type DeliveryResult struct {
	Destination int64
	Err         error // nil when the panel was delivered and recorded
}

// Report aggregates per-destination fan-out results so the caller can accept
// partial delivery while still seeing every failure.
type Report struct {
	Results []DeliveryResult
}

func (r *Report) Delivered() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

func (r *Report) Failed() int {
	return len(r.Results) - r.Delivered()
}

// FanoutService delivers a pending ticket to every moderator destination.
type FanoutService interface {
	// Broadcast forwards the original content and a decision panel to each
	// destination, recording a moderator view per delivered panel. A failing
	// destination is skipped, never aborting the remaining ones.
	Broadcast(ctx context.Context, t *ticket.Ticket) *Report
}

type FanoutServiceImpl struct {
	client       domainTelegram.Client
	ticketRepo   ticket.Repository
	destinations []int64
	logger       *logrus.Entry
}

func NewFanoutService(
	tc domainTelegram.Client,
	tr ticket.Repository,
	destinations []int64,
	logger *logrus.Entry,
) *FanoutServiceImpl {
	return &FanoutServiceImpl{
		client:       tc,
		ticketRepo:   tr,
		destinations: destinations,
		logger:       logger,
	}
}

func (s *FanoutServiceImpl) Broadcast(ctx context.Context, t *ticket.Ticket) *Report {
	report := &Report{}

	for _, dest := range s.destinations {
		err := s.deliver(ctx, t, dest)
		report.Results = append(report.Results, DeliveryResult{Destination: dest, Err: err})

		if err != nil {
			metrics.FanoutDeliveriesTotal.WithLabelValues(metrics.ResultFailed).Inc()
			s.logger.WithError(err).WithFields(logrus.Fields{
				"ticket_id":   t.ID,
				"destination": dest,
			}).Error("Fan-out delivery failed, skipping destination")
			continue
		}
		metrics.FanoutDeliveriesTotal.WithLabelValues(metrics.ResultDelivered).Inc()
	}

	s.logger.WithFields(logrus.Fields{
		"ticket_id": t.ID,
		"delivered": report.Delivered(),
		"failed":    report.Failed(),
	}).Info("Fan-out complete")
	return report
}

func (s *FanoutServiceImpl) deliver(ctx context.Context, t *ticket.Ticket, dest int64) error {
	// Forward, don't recopy: keeps attachment fidelity for media submissions.
	if _, err := s.client.ForwardMessage(dest, t.Content); err != nil {
		return fmt.Errorf("forward content: %w", err)
	}

	panelRef, err := s.client.SendMessage(dest, panelText(t), &telebot.SendOptions{
		ReplyMarkup: decisionMarkup(t.ID),
		ParseMode:   telebot.ModeMarkdown,
	})
	if err != nil {
		return fmt.Errorf("send decision panel: %w", err)
	}

	view := ticket.ModeratorView{Destination: dest, MessageID: panelRef.MessageID}
	if err := s.ticketRepo.AddView(ctx, t.ID, view); err != nil {
		// The panel is live but cannot be invalidated later; count the
		// destination as failed so the gap is visible.
		return fmt.Errorf("record moderator view: %w", err)
	}
	return nil
}

func panelText(t *ticket.Ticket) string {
	return fmt.Sprintf("📨 *NEW:* %s\n🎫 *Ticket:* `%s`\n📝 *Preview:* %s", t.Category, t.ID, t.Preview)
}

func decisionMarkup(ticketID string) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	btnApprove := markup.Data("✅ Approve", CallbackApprove, ticketID)
	btnDecline := markup.Data("❌ Decline", CallbackDecline, ticketID)
	btnModify := markup.Data("✏️ Modify", CallbackModify, ticketID)
	markup.Inline(
		markup.Row(btnApprove, btnDecline),
		markup.Row(btnModify),
	)
	return markup
}
