package memory

import (
	"testing"

	"moderation_relay_bot/internal/domain/session"
	"moderation_relay_bot/internal/domain/ticket"
)

func TestReasonStore_OneSessionPerModerator(t *testing.T) {
	store := NewReasonStore()

	if _, ok := store.Get(1); ok {
		t.Fatal("expected no session initially")
	}

	store.Put(session.ReasonSession{ModeratorID: 1, TicketID: "TK-1", Outcome: ticket.OutcomeDecline})
	store.Put(session.ReasonSession{ModeratorID: 1, TicketID: "TK-2", Outcome: ticket.OutcomeModify})

	rs, ok := store.Get(1)
	if !ok || rs.TicketID != "TK-2" {
		t.Fatalf("expected the later session to win, got %+v ok=%v", rs, ok)
	}

	store.Clear(1)
	if _, ok := store.Get(1); ok {
		t.Fatal("expected session cleared")
	}
}

func TestCategoryStore_SelectAndClear(t *testing.T) {
	store := NewCategoryStore()

	if _, ok := store.Selected(7); ok {
		t.Fatal("expected no selection initially")
	}

	store.Select(7, ticket.CategoryVoiceNote)
	c, ok := store.Selected(7)
	if !ok || c != ticket.CategoryVoiceNote {
		t.Fatalf("expected voice note selection, got %v ok=%v", c, ok)
	}

	store.Clear(7)
	if _, ok := store.Selected(7); ok {
		t.Fatal("expected selection cleared")
	}
}
