package telegram

import (
	"testing"

	"moderation_relay_bot/internal/app"
)

func TestParseDecisionData(t *testing.T) {
	cases := []struct {
		raw        string
		wantAction app.Action
		wantTicket string
	}{
		{"\fmod_approve|TK-7F3A9C", app.ActionApprove, "TK-7F3A9C"},
		{"\fmod_decline|TK-7F3A9C", app.ActionDecline, "TK-7F3A9C"},
		{"\fmod_modify|TK-7F3A9C", app.ActionModify, "TK-7F3A9C"},
		// Without the telebot prefix (e.g. replayed payloads).
		{"mod_approve|TK-7F3A9C", app.ActionApprove, "TK-7F3A9C"},
		// Compound ids contain the underscore and survive intact.
		{"\fmod_decline|987654321_A91B4C", app.ActionDecline, "987654321_A91B4C"},
	}
	for _, tc := range cases {
		action, ticketID, err := ParseDecisionData(tc.raw)
		if err != nil {
			t.Errorf("ParseDecisionData(%q): unexpected error %v", tc.raw, err)
			continue
		}
		if action != tc.wantAction || ticketID != tc.wantTicket {
			t.Errorf("ParseDecisionData(%q) = (%s, %q), want (%s, %q)",
				tc.raw, action, ticketID, tc.wantAction, tc.wantTicket)
		}
	}
}

func TestParseDecisionData_TicketIDMayContainDelimiter(t *testing.T) {
	action, ticketID, err := ParseDecisionData("\fmod_approve|weird|id|with|pipes")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if action != app.ActionApprove || ticketID != "weird|id|with|pipes" {
		t.Fatalf("expected trailing segments reassembled, got (%s, %q)", action, ticketID)
	}
}

func TestParseDecisionData_Invalid(t *testing.T) {
	for _, raw := range []string{"", "\f", "\fmod_approve", "\fmod_approve|", "\fsomething_else|TK-1"} {
		if _, _, err := ParseDecisionData(raw); err == nil {
			t.Errorf("ParseDecisionData(%q): expected error", raw)
		}
	}
}
