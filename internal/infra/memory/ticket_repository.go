// Package memory provides the in-memory storage backend used by the
// single-instance broadcast deployment. The mutex around the ticket map is
// the critical section that makes the claim atomic (the durable backend
// relies on a conditional UPDATE instead).
package memory

import (
	"context"
	"sync"
	"time"

	"moderation_relay_bot/internal/domain/ticket"
)

type TicketRepository struct {
	mu      sync.Mutex
	tickets map[string]*ticket.Ticket
}

func NewTicketRepository() *TicketRepository {
	return &TicketRepository{tickets: make(map[string]*ticket.Ticket)}
}

func (r *TicketRepository) Create(_ context.Context, t *ticket.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tickets[t.ID]; exists {
		return ticket.ErrDuplicateID
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	r.tickets[t.ID] = copyTicket(t)
	return nil
}

func (r *TicketRepository) GetByID(_ context.Context, id string) (*ticket.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return nil, ticket.ErrNotFound
	}
	return copyTicket(t), nil
}

func (r *TicketRepository) AddView(_ context.Context, id string, view ticket.ModeratorView) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return ticket.ErrNotFound
	}
	t.Views = append(t.Views, view)
	return nil
}

func (r *TicketRepository) ClaimPending(_ context.Context, id string, newStatus ticket.Status, outcome ticket.OutcomeKind, moderatorID int64, moderatorName string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok || t.Status != ticket.StatusPending {
		return false, nil
	}
	t.Status = newStatus
	t.Outcome = outcome
	t.ClaimedByID = moderatorID
	t.ClaimedBy = moderatorName
	t.ClaimedAt = time.Now()
	return true, nil
}

func (r *TicketRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return ticket.ErrNotFound
	}
	delete(r.tickets, id)
	return nil
}

func (r *TicketRepository) ListAwaitingReasonBefore(_ context.Context, cutoff time.Time) ([]*ticket.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stale := make([]*ticket.Ticket, 0)
	for _, t := range r.tickets {
		if t.Status == ticket.StatusAwaitingReason && t.ClaimedAt.Before(cutoff) {
			stale = append(stale, copyTicket(t))
		}
	}
	return stale, nil
}

// copyTicket keeps callers from mutating stored state behind the lock.
func copyTicket(t *ticket.Ticket) *ticket.Ticket {
	c := *t
	c.Views = append([]ticket.ModeratorView(nil), t.Views...)
	return &c
}
