package session

import (
	"time"

	"moderation_relay_bot/internal/domain/ticket"
)

// ReasonSession is the transient state held while one moderator writes the
// free-text justification for a decline/modify decision. It is keyed by the
// moderator's identity, not by ticket: a moderator holds at most one.
type ReasonSession struct {
	ModeratorID  int64
	TicketID     string
	Outcome      ticket.OutcomeKind
	SubmitterRef int64
	Category     ticket.Category
	Preview      string
	OpenedAt     time.Time
}

// ReasonStore holds at most one active reason session per moderator.
// Only the owning moderator's events mutate an entry, so implementations
// need no cross-entry coordination beyond map safety.
type ReasonStore interface {
	// Put stores the session, replacing any previous one for the moderator.
	Put(s ReasonSession)
	// Get returns the moderator's active session, if any.
	Get(moderatorID int64) (ReasonSession, bool)
	// Clear removes the moderator's session.
	Clear(moderatorID int64)
}

// CategoryStore holds each operator's pending category selection between
// picking a menu entry and submitting content. Cleared after one successful
// submission.
type CategoryStore interface {
	Select(operatorID int64, c ticket.Category)
	Selected(operatorID int64) (ticket.Category, bool)
	Clear(operatorID int64)
}
