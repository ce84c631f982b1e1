package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"moderation_relay_bot/internal/domain/ticket"
)

func pendingTicket(id string) *ticket.Ticket {
	return &ticket.Ticket{
		ID:           id,
		SubmitterRef: 100,
		Category:     ticket.CategoryLetter,
		Preview:      "hello",
		Content:      ticket.MessageRef{ChatID: 100, MessageID: 1},
		Status:       ticket.StatusPending,
	}
}

func TestTicketRepository_CreateAndGet(t *testing.T) {
	repo := NewTicketRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, pendingTicket("TK-1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(ctx, "TK-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != ticket.StatusPending || got.Preview != "hello" {
		t.Fatalf("unexpected ticket: %+v", got)
	}

	if err := repo.Create(ctx, pendingTicket("TK-1")); !errors.Is(err, ticket.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestTicketRepository_GetMissing(t *testing.T) {
	repo := NewTicketRepository()
	if _, err := repo.GetByID(context.Background(), "nope"); !errors.Is(err, ticket.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTicketRepository_AddView(t *testing.T) {
	repo := NewTicketRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, pendingTicket("TK-1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < 3; i++ {
		v := ticket.ModeratorView{Destination: int64(200 + i), MessageID: 10 + i}
		if err := repo.AddView(ctx, "TK-1", v); err != nil {
			t.Fatalf("add view: %v", err)
		}
	}

	got, err := repo.GetByID(ctx, "TK-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Views) != 3 {
		t.Fatalf("expected 3 views, got %d", len(got.Views))
	}

	if err := repo.AddView(ctx, "missing", ticket.ModeratorView{}); !errors.Is(err, ticket.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTicketRepository_ReturnedTicketIsACopy(t *testing.T) {
	repo := NewTicketRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, pendingTicket("TK-1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, _ := repo.GetByID(ctx, "TK-1")
	got.Status = ticket.StatusApproved
	got.Views = append(got.Views, ticket.ModeratorView{Destination: 1})

	fresh, _ := repo.GetByID(ctx, "TK-1")
	if fresh.Status != ticket.StatusPending || len(fresh.Views) != 0 {
		t.Fatal("mutating a returned ticket leaked into the store")
	}
}

func TestTicketRepository_ClaimPending_ExactlyOneWinner(t *testing.T) {
	repo := NewTicketRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, pendingTicket("TK-1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	const moderators = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < moderators; i++ {
		wg.Add(1)
		go func(modID int64) {
			defer wg.Done()
			won, err := repo.ClaimPending(ctx, "TK-1", ticket.StatusApproved, ticket.OutcomeNone, modID, "mod")
			if err != nil {
				t.Errorf("claim: %v", err)
				return
			}
			if won {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(int64(i + 1))
	}
	wg.Wait()

	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}

	got, err := repo.GetByID(ctx, "TK-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != ticket.StatusApproved || got.ClaimedByID == 0 || got.ClaimedAt.IsZero() {
		t.Fatalf("claim did not record the winner: %+v", got)
	}
}

func TestTicketRepository_ClaimMissingOrClaimed(t *testing.T) {
	repo := NewTicketRepository()
	ctx := context.Background()

	won, err := repo.ClaimPending(ctx, "missing", ticket.StatusApproved, ticket.OutcomeNone, 1, "mod")
	if err != nil || won {
		t.Fatalf("claiming a missing ticket: won=%v err=%v", won, err)
	}

	if err := repo.Create(ctx, pendingTicket("TK-1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.ClaimPending(ctx, "TK-1", ticket.StatusAwaitingReason, ticket.OutcomeDecline, 1, "mod"); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	won, err = repo.ClaimPending(ctx, "TK-1", ticket.StatusApproved, ticket.OutcomeNone, 2, "other")
	if err != nil || won {
		t.Fatalf("claiming a claimed ticket: won=%v err=%v", won, err)
	}
}

func TestTicketRepository_Delete(t *testing.T) {
	repo := NewTicketRepository()
	ctx := context.Background()

	if err := repo.Create(ctx, pendingTicket("TK-1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Delete(ctx, "TK-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "TK-1"); !errors.Is(err, ticket.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestTicketRepository_ListAwaitingReasonBefore(t *testing.T) {
	repo := NewTicketRepository()
	ctx := context.Background()

	for _, id := range []string{"TK-1", "TK-2", "TK-3"} {
		if err := repo.Create(ctx, pendingTicket(id)); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	// TK-1 and TK-2 enter AWAITING_REASON now; TK-3 stays pending.
	for _, id := range []string{"TK-1", "TK-2"} {
		if _, err := repo.ClaimPending(ctx, id, ticket.StatusAwaitingReason, ticket.OutcomeDecline, 1, "mod"); err != nil {
			t.Fatalf("claim %s: %v", id, err)
		}
	}

	stale, err := repo.ListAwaitingReasonBefore(ctx, time.Now().Add(time.Second))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stale) != 2 {
		t.Fatalf("expected 2 stale tickets, got %d", len(stale))
	}

	none, err := repo.ListAwaitingReasonBefore(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no stale tickets before old cutoff, got %d", len(none))
	}
}
