package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"moderation_relay_bot/internal/domain/session"
	"moderation_relay_bot/internal/domain/ticket"
	"moderation_relay_bot/internal/infra/memory"
)

type reasonFixture struct {
	repo    *memory.TicketRepository
	reasons session.ReasonStore
	client  *fakeClient
	svc     *ReasonServiceImpl
}

func newReasonFixture() *reasonFixture {
	repo := memory.NewTicketRepository()
	reasons := memory.NewReasonStore()
	client := newFakeClient()
	return &reasonFixture{
		repo:    repo,
		reasons: reasons,
		client:  client,
		svc:     NewReasonService(repo, reasons, client, testLogger()),
	}
}

func (f *reasonFixture) openSession(t *testing.T, modID int64, outcome ticket.OutcomeKind) {
	t.Helper()
	tk := &ticket.Ticket{
		ID:           "TK-1",
		SubmitterRef: 100,
		Category:     ticket.CategoryNewsFeed,
		Preview:      "hello",
		Status:       ticket.StatusAwaitingReason,
		Outcome:      outcome,
	}
	if err := f.repo.Create(context.Background(), tk); err != nil {
		t.Fatalf("create: %v", err)
	}
	f.reasons.Put(session.ReasonSession{
		ModeratorID:  modID,
		TicketID:     "TK-1",
		Outcome:      outcome,
		SubmitterRef: 100,
		Category:     ticket.CategoryNewsFeed,
		Preview:      "hello",
		OpenedAt:     time.Now(),
	})
}

func TestSubmitReason_NoActiveSession(t *testing.T) {
	f := newReasonFixture()
	mod := Moderator{ID: 201, Name: "Alice"}

	if f.svc.HasSession(mod.ID) {
		t.Fatal("expected no session")
	}
	_, err := f.svc.SubmitReason(context.Background(), mod, "too long")
	if !errors.Is(err, ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}
}

func TestSubmitReason_DeclineNotifiesAndCloses(t *testing.T) {
	f := newReasonFixture()
	mod := Moderator{ID: 201, Name: "Alice"}
	f.openSession(t, mod.ID, ticket.OutcomeDecline)

	rs, err := f.svc.SubmitReason(context.Background(), mod, "off topic")
	if err != nil {
		t.Fatalf("submit reason: %v", err)
	}
	if rs.TicketID != "TK-1" {
		t.Fatalf("unexpected session returned: %+v", rs)
	}

	notes := f.client.sentTo(100)
	if len(notes) != 1 {
		t.Fatalf("expected one submitter notification, got %d", len(notes))
	}
	if err := containsAll(notes[0], "DECLINED", "TK-1", string(ticket.CategoryNewsFeed), "off topic"); err != nil {
		t.Fatal(err)
	}

	if _, err := f.repo.GetByID(context.Background(), "TK-1"); !errors.Is(err, ticket.ErrNotFound) {
		t.Fatalf("closed ticket must be removed, got %v", err)
	}
	if f.svc.HasSession(mod.ID) {
		t.Fatal("expected session cleared")
	}
}

func TestSubmitReason_ModifyUsesChangesRequestedHeader(t *testing.T) {
	f := newReasonFixture()
	mod := Moderator{ID: 201, Name: "Alice"}
	f.openSession(t, mod.ID, ticket.OutcomeModify)

	if _, err := f.svc.SubmitReason(context.Background(), mod, "shorten it"); err != nil {
		t.Fatalf("submit reason: %v", err)
	}
	notes := f.client.sentTo(100)
	if len(notes) != 1 {
		t.Fatalf("expected one notification, got %d", len(notes))
	}
	if err := containsAll(notes[0], "CHANGES REQUESTED", "shorten it"); err != nil {
		t.Fatal(err)
	}
}

func TestSubmitReason_DeliveryFailureKeepsSessionForRetry(t *testing.T) {
	f := newReasonFixture()
	mod := Moderator{ID: 201, Name: "Alice"}
	f.openSession(t, mod.ID, ticket.OutcomeDecline)
	f.client.failSendTo[100] = errors.New("bot was blocked by the user")

	_, err := f.svc.SubmitReason(context.Background(), mod, "off topic")
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Fatalf("expected ErrDeliveryFailed, got %v", err)
	}

	// Nothing closed: session and ticket both survive for the retry.
	if !f.svc.HasSession(mod.ID) {
		t.Fatal("expected session kept after delivery failure")
	}
	if _, err := f.repo.GetByID(context.Background(), "TK-1"); err != nil {
		t.Fatalf("ticket must survive a failed delivery, got %v", err)
	}

	delete(f.client.failSendTo, 100)
	if _, err := f.svc.SubmitReason(context.Background(), mod, "off topic"); err != nil {
		t.Fatalf("retry after recovery: %v", err)
	}
	if f.svc.HasSession(mod.ID) {
		t.Fatal("expected session cleared after successful retry")
	}
	if len(f.client.sentTo(100)) != 1 {
		t.Fatalf("expected exactly one delivered notification, got %d", len(f.client.sentTo(100)))
	}
}

func TestSubmitReason_TicketAlreadyGoneStillCloses(t *testing.T) {
	f := newReasonFixture()
	mod := Moderator{ID: 201, Name: "Alice"}
	f.openSession(t, mod.ID, ticket.OutcomeDecline)
	if err := f.repo.Delete(context.Background(), "TK-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := f.svc.SubmitReason(context.Background(), mod, "off topic"); err != nil {
		t.Fatalf("submit reason with missing ticket: %v", err)
	}
	if f.svc.HasSession(mod.ID) {
		t.Fatal("expected session cleared")
	}
}
