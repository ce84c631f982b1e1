package app

import (
	"errors"
	"fmt"
)

// Application-level errors surfaced to the event handlers. All of them are
// recoverable: they are reported to the user that triggered the event and
// never crash the processing loop.
var (
	// ErrInvalidContent means the submission carried nothing recognizable.
	ErrInvalidContent = errors.New("no recognizable content in submission")
	// ErrNoCategorySelected means the operator submitted before picking a category.
	ErrNoCategorySelected = errors.New("no category selected for this submission")
	// ErrNoActiveSession means free text arrived from a moderator with no
	// open reason-collection session.
	ErrNoActiveSession = errors.New("no active reason session for this moderator")
	// ErrReasonPending means the moderator tried to start a second
	// reason-collection session before finishing the first.
	ErrReasonPending = errors.New("a reason is still pending for this moderator")
	// ErrDeliveryFailed wraps a failed send to the submitter. The reason
	// session is kept so the moderator can retry.
	ErrDeliveryFailed = errors.New("could not deliver notification to submitter")
)

// AlreadyHandledError is the expected race outcome: a decision arrived for a
// ticket that is no longer PENDING (or no longer exists). The caller must
// render a non-mutating "already processed" view and change no state.
type AlreadyHandledError struct {
	HandledBy string // may be empty when the ticket is already gone
}

func (e *AlreadyHandledError) Error() string {
	if e.HandledBy == "" {
		return "ticket already processed"
	}
	return fmt.Sprintf("ticket already processed by %s", e.HandledBy)
}
