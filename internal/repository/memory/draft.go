package memory

import (
	"context"
	"sync"

	"github.com/payrollhq/payrun-backend-go/internal/domain/payrun"
)

// DraftStore is an in-memory session-slot store. Used by tests and
// single-node development; the postgresql store is the durable one.
type DraftStore struct {
	mu     sync.RWMutex
	drafts map[string]payrun.AdjustmentDraft
}

func NewDraftStore() *DraftStore {
	return &DraftStore{drafts: make(map[string]payrun.AdjustmentDraft)}
}

func (s *DraftStore) Get(ctx context.Context, sessionID string) (payrun.AdjustmentDraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	draft, ok := s.drafts[sessionID]
	if !ok {
		return payrun.AdjustmentDraft{}, payrun.ErrDraftNotFound
	}
	return draft.Clone(), nil
}

func (s *DraftStore) Put(ctx context.Context, draft payrun.AdjustmentDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drafts[draft.SessionID] = draft.Clone()
	return nil
}

func (s *DraftStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drafts, sessionID)
	return nil
}
