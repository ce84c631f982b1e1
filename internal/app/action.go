package app

// Action is one of the three moderator decisions exposed on a decision panel.
type Action string

const (
	ActionApprove Action = "approve"
	ActionDecline Action = "decline"
	ActionModify  Action = "modify"
)

// Callback uniques. Telebot serializes button data as "\f<unique>|<payload>",
// so the payload (the ticket id) may itself contain any delimiter.
const (
	CallbackApprove = "mod_approve"
	CallbackDecline = "mod_decline"
	CallbackModify  = "mod_modify"
)

// CallbackUnique returns the telebot button unique for the action.
func (a Action) CallbackUnique() string {
	switch a {
	case ActionDecline:
		return CallbackDecline
	case ActionModify:
		return CallbackModify
	default:
		return CallbackApprove
	}
}

// ActionFromUnique maps a callback unique back to its Action.
func ActionFromUnique(unique string) (Action, bool) {
	switch unique {
	case CallbackApprove:
		return ActionApprove, true
	case CallbackDecline:
		return ActionDecline, true
	case CallbackModify:
		return ActionModify, true
	}
	return "", false
}

// Moderator identifies the acting moderator in a decision or reason event.
type Moderator struct {
	ID   int64
	Name string
}
