package telegram

import (
	"fmt"
	"strings"

	"moderation_relay_bot/internal/app"
)

// ParseDecisionData decodes a decision-panel callback payload into its action
// and ticket id. Telebot serializes button data as "\f<unique>|<payload>";
// only the first separator is significant, so a ticket id containing the
// delimiter survives the round trip intact.
func ParseDecisionData(raw string) (app.Action, string, error) {
	data := strings.TrimPrefix(raw, "\f")

	unique, payload, found := strings.Cut(data, "|")
	if !found || payload == "" {
		return "", "", fmt.Errorf("callback data %q carries no ticket id", raw)
	}

	action, ok := app.ActionFromUnique(unique)
	if !ok {
		return "", "", fmt.Errorf("unknown callback action %q", unique)
	}
	return action, payload, nil
}
