package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/payrollhq/payrun-backend-go/internal/domain/payrun"
	"github.com/payrollhq/payrun-backend-go/internal/pkg/database"
)

// draftStore persists adjustment drafts as one JSONB slot per session, so an
// in-progress run survives navigation and process restarts.
type draftStore struct {
	db *database.DB
}

func NewDraftStore(db *database.DB) payrun.DraftStore {
	return &draftStore{db: db}
}

func (s *draftStore) Get(ctx context.Context, sessionID string) (payrun.AdjustmentDraft, error) {
	query := `
		SELECT draft
		FROM adjustment_drafts
		WHERE session_id = $1
	`

	var payload []byte
	err := s.db.QueryRow(ctx, query, sessionID).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payrun.AdjustmentDraft{}, payrun.ErrDraftNotFound
		}
		return payrun.AdjustmentDraft{}, fmt.Errorf("failed to get adjustment draft: %w", err)
	}

	var draft payrun.AdjustmentDraft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return payrun.AdjustmentDraft{}, fmt.Errorf("failed to decode adjustment draft: %w", err)
	}

	return draft, nil
}

func (s *draftStore) Put(ctx context.Context, draft payrun.AdjustmentDraft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to encode adjustment draft: %w", err)
	}

	query := `
		INSERT INTO adjustment_drafts (session_id, draft, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (session_id) DO UPDATE SET
			draft = EXCLUDED.draft,
			updated_at = NOW()
	`

	if _, err := s.db.Exec(ctx, query, draft.SessionID, payload); err != nil {
		return fmt.Errorf("failed to store adjustment draft: %w", err)
	}

	return nil
}

func (s *draftStore) Delete(ctx context.Context, sessionID string) error {
	query := `
		DELETE FROM adjustment_drafts
		WHERE session_id = $1
	`

	if _, err := s.db.Exec(ctx, query, sessionID); err != nil {
		return fmt.Errorf("failed to delete adjustment draft: %w", err)
	}

	return nil
}
