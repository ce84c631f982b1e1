package app

import (
	"context"

	"github.com/sirupsen/logrus"

	"moderation_relay_bot/internal/domain/session"
	"moderation_relay_bot/internal/domain/ticket"
	"moderation_relay_bot/internal/infra/metrics"
)

// Submission is the transport-independent description of one operator message
// offered for moderation.
type Submission struct {
	Operator int64             // operator chat id; outcome notifications go here
	Source   ticket.MessageRef // original message, forwarded during fan-out
	Text     string            // text or caption, empty for bare media
	Kind     ticket.ContentKind
}

// IntakeService validates an operator's submission and turns it into a
// pending ticket.
type IntakeService interface {
	// SelectCategory records the operator's category choice for their next
	// submission, replacing any previous choice.
	SelectCategory(operatorID int64, c ticket.Category)

	// Submit validates the submission against the operator's selected
	// category, persists a PENDING ticket and clears the selection.
	Submit(ctx context.Context, sub Submission) (*ticket.Ticket, error)
}

type IntakeServiceImpl struct {
	ticketRepo   ticket.Repository
	categories   session.CategoryStore
	newID        ticket.IDGenerator
	previewLimit int
	logger       *logrus.Entry
}

func NewIntakeService(
	tr ticket.Repository,
	cs session.CategoryStore,
	newID ticket.IDGenerator,
	previewLimit int,
	logger *logrus.Entry,
) *IntakeServiceImpl {
	return &IntakeServiceImpl{
		ticketRepo:   tr,
		categories:   cs,
		newID:        newID,
		previewLimit: previewLimit,
		logger:       logger,
	}
}

func (s *IntakeServiceImpl) SelectCategory(operatorID int64, c ticket.Category) {
	s.categories.Select(operatorID, c)
	s.logger.WithFields(logrus.Fields{
		"operator_id": operatorID,
		"category":    c,
	}).Debug("Category selected")
}

func (s *IntakeServiceImpl) Submit(ctx context.Context, sub Submission) (*ticket.Ticket, error) {
	category, ok := s.categories.Selected(sub.Operator)
	if !ok {
		return nil, ErrNoCategorySelected
	}

	if sub.Text == "" && sub.Kind == ticket.KindNone {
		return nil, ErrInvalidContent
	}

	t := &ticket.Ticket{
		ID:           s.newID(sub.Operator),
		SubmitterRef: sub.Operator,
		Category:     category,
		Preview:      ticket.BuildPreview(sub.Text, sub.Kind, s.previewLimit),
		Content:      sub.Source,
		Status:       ticket.StatusPending,
	}

	if err := s.ticketRepo.Create(ctx, t); err != nil {
		s.logger.WithError(err).WithField("ticket_id", t.ID).Error("Failed to persist ticket")
		return nil, err
	}

	// Category selection is consumed by exactly one successful submission.
	s.categories.Clear(sub.Operator)
	metrics.SubmissionsTotal.WithLabelValues(string(category)).Inc()

	s.logger.WithFields(logrus.Fields{
		"ticket_id":   t.ID,
		"operator_id": sub.Operator,
		"category":    category,
	}).Info("Ticket created")
	return t, nil
}
