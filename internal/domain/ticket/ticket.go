package ticket

import (
	"time"
)

// Status tracks where a ticket is in the moderation lifecycle.
type Status string

const (
	// StatusPending means the ticket is awaiting its first moderator action.
	StatusPending Status = "PENDING"
	// StatusApproved is terminal: a moderator approved the submission.
	StatusApproved Status = "APPROVED"
	// StatusAwaitingReason means a moderator declined or requested changes
	// and has not yet supplied the free-text justification.
	StatusAwaitingReason Status = "AWAITING_REASON"
	// StatusClosed is terminal: the justification was delivered to the submitter.
	StatusClosed Status = "CLOSED"
)

// OutcomeKind distinguishes the two sub-states of AWAITING_REASON.
type OutcomeKind string

const (
	OutcomeNone    OutcomeKind = ""
	OutcomeDecline OutcomeKind = "DECLINE"
	OutcomeModify  OutcomeKind = "MODIFY"
)

// Category is one of the fixed content categories an operator picks
// before submitting.
type Category string

const (
	CategoryIcebreaker Category = "🧊 Icebreaker"
	CategoryLetter     Category = "📝 Letter"
	CategoryNewsFeed   Category = "📱 News Feed"
	CategoryVoiceNote  Category = "🎤 Voice Note"
	CategoryAttachment Category = "📎 Attachment"
)

// AllCategories lists every selectable category, in menu order.
var AllCategories = []Category{
	CategoryIcebreaker,
	CategoryLetter,
	CategoryNewsFeed,
	CategoryVoiceNote,
	CategoryAttachment,
}

// ParseCategory maps a menu label back to its Category. The second return
// is false when the text is not a known category label.
func ParseCategory(text string) (Category, bool) {
	for _, c := range AllCategories {
		if string(c) == text {
			return c, true
		}
	}
	return "", false
}

// MessageRef identifies one concrete Telegram message: the chat it lives in
// and its id within that chat. It is the handle needed to forward or edit it.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// ModeratorView is one decision panel delivered to one moderator destination
// during fan-out. It is kept so every panel can be updated once the ticket
// leaves PENDING.
type ModeratorView struct {
	Destination int64 // moderator chat id
	MessageID   int   // id of the decision panel message in that chat
}

// Ref returns the view's panel as an editable message reference.
func (v ModeratorView) Ref() MessageRef {
	return MessageRef{ChatID: v.Destination, MessageID: v.MessageID}
}

// Ticket is one unit of submitted content awaiting a moderation decision.
type Ticket struct {
	ID           string
	SubmitterRef int64 // operator chat to notify with the outcome
	Category     Category
	Preview      string
	Content      MessageRef // original message, forwarded during fan-out
	Status       Status
	Outcome      OutcomeKind
	ClaimedBy    string // display name of the moderator handling the ticket
	ClaimedByID  int64  // zero while PENDING, set on first action, never cleared
	Views        []ModeratorView
	CreatedAt    time.Time
	ClaimedAt    time.Time // zero value while PENDING
}

// Terminal reports whether no further transitions are permitted.
func (t *Ticket) Terminal() bool {
	return t.Status == StatusApproved || t.Status == StatusClosed
}
