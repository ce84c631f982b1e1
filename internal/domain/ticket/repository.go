package ticket

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared by every Repository implementation.
var (
	ErrNotFound    = errors.New("ticket not found")
	ErrDuplicateID = errors.New("ticket with this id already exists")
)

// Repository defines the operations for persisting and retrieving tickets.
// Implementations must make ClaimPending atomic with respect to concurrent
// claims on the same ticket id: decision finality is linearized through it.
type Repository interface {
	Create(ctx context.Context, t *Ticket) error
	GetByID(ctx context.Context, id string) (*Ticket, error)

	// AddView records one fan-out destination's decision panel so it can be
	// updated once the ticket leaves PENDING.
	AddView(ctx context.Context, id string, view ModeratorView) error

	// ClaimPending transitions the ticket out of PENDING if and only if it is
	// still PENDING. It returns false (and no error) when the ticket was
	// already claimed; exactly one of any set of concurrent callers wins.
	ClaimPending(ctx context.Context, id string, newStatus Status, outcome OutcomeKind, moderatorID int64, moderatorName string) (bool, error)

	Delete(ctx context.Context, id string) error

	// ListAwaitingReasonBefore returns tickets stuck in AWAITING_REASON whose
	// claim predates the cutoff. Feeds the stale-ticket sweeper.
	ListAwaitingReasonBefore(ctx context.Context, cutoff time.Time) ([]*Ticket, error)
}
