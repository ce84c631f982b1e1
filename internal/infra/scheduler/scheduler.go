package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"moderation_relay_bot/internal/domain/ticket"
)

// StaleHandler receives tickets stuck in AWAITING_REASON longer than the
// configured timeout. The default wiring only logs them; deployments that
// want an escalation policy (e.g. reopening the ticket to other moderators)
// plug their own handler here.
type StaleHandler func(ctx context.Context, stale []*ticket.Ticket)

// StaleTicketSweeper periodically scans for tickets whose claiming moderator
// never supplied a reason. It performs no escalation by itself.
type StaleTicketSweeper struct {
	cronEngine *cron.Cron
	ticketRepo ticket.Repository
	logger     *logrus.Entry
	cronSpec   string
	timeout    time.Duration
	handler    StaleHandler
}

func NewStaleTicketSweeper(
	tr ticket.Repository,
	logger *logrus.Entry,
	cronSpec string, // e.g. "*/10 * * * *"
	timeout time.Duration, // zero disables the sweep
	handler StaleHandler,
) *StaleTicketSweeper {
	return &StaleTicketSweeper{
		cronEngine: cron.New(cron.WithLocation(time.Local)),
		ticketRepo: tr,
		logger:     logger,
		cronSpec:   cronSpec,
		timeout:    timeout,
		handler:    handler,
	}
}

func (s *StaleTicketSweeper) Start() {
	if s.timeout <= 0 {
		s.logger.Info("Stale-ticket sweep disabled (no reason timeout configured)")
		return
	}

	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		s.sweep(ctx)
	})
	if err != nil {
		s.logger.WithError(err).Fatal("Could not add stale-ticket sweep cron job")
	}

	s.cronEngine.Start()
	s.logger.WithFields(logrus.Fields{
		"cron_spec": s.cronSpec,
		"timeout":   s.timeout.String(),
	}).Info("Stale-ticket sweeper started")
}

func (s *StaleTicketSweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.timeout)
	stale, err := s.ticketRepo.ListAwaitingReasonBefore(ctx, cutoff)
	if err != nil {
		s.logger.WithError(err).Error("Stale-ticket sweep failed")
		return
	}
	if len(stale) == 0 {
		return
	}

	s.logger.WithField("count", len(stale)).Warn("Found tickets awaiting a reason past the timeout")
	if s.handler != nil {
		s.handler(ctx, stale)
	}
}

func (s *StaleTicketSweeper) Stop() {
	if s.timeout <= 0 {
		return
	}
	s.logger.Info("Stopping stale-ticket sweeper...")
	ctx := s.cronEngine.Stop() // waits for a running sweep to finish
	<-ctx.Done()
	s.logger.Info("Stale-ticket sweeper stopped")
}

// LogStaleTickets is the default StaleHandler: it surfaces each stuck ticket
// without changing its state.
func LogStaleTickets(logger *logrus.Entry) StaleHandler {
	return func(_ context.Context, stale []*ticket.Ticket) {
		for _, t := range stale {
			logger.WithFields(logrus.Fields{
				"ticket_id":    t.ID,
				"claimed_by":   t.ClaimedBy,
				"claimed_at":   t.ClaimedAt.Format(time.RFC3339),
				"outcome_kind": t.Outcome,
			}).Warn("Ticket awaiting reason past timeout")
		}
	}
}
