package memory

import (
	"sync"

	"moderation_relay_bot/internal/domain/session"
	"moderation_relay_bot/internal/domain/ticket"
)

// ReasonStore keeps at most one active reason session per moderator.
type ReasonStore struct {
	mu       sync.Mutex
	sessions map[int64]session.ReasonSession
}

func NewReasonStore() *ReasonStore {
	return &ReasonStore{sessions: make(map[int64]session.ReasonSession)}
}

func (s *ReasonStore) Put(rs session.ReasonSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[rs.ModeratorID] = rs
}

func (s *ReasonStore) Get(moderatorID int64) (session.ReasonSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rs, ok := s.sessions[moderatorID]
	return rs, ok
}

func (s *ReasonStore) Clear(moderatorID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, moderatorID)
}

// CategoryStore keeps each operator's pending category selection.
type CategoryStore struct {
	mu       sync.Mutex
	selected map[int64]ticket.Category
}

func NewCategoryStore() *CategoryStore {
	return &CategoryStore{selected: make(map[int64]ticket.Category)}
}

func (s *CategoryStore) Select(operatorID int64, c ticket.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected[operatorID] = c
}

func (s *CategoryStore) Selected(operatorID int64) (ticket.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.selected[operatorID]
	return c, ok
}

func (s *CategoryStore) Clear(operatorID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.selected, operatorID)
}
