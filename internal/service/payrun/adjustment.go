package payrun

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/payrollhq/payrun-backend-go/internal/domain/payrun"
)

// AdjustmentService owns the mutable, resumable draft of one employee's
// payroll run. The draft lives in the durable store from the moment an
// employee is selected until it is discarded or consumed by finalize; every
// edit is persisted immediately so navigation away and back is lossless.
type AdjustmentService struct {
	store   payrun.DraftStore
	gateway payrun.Gateway
	clock   func() time.Time
}

func NewAdjustmentService(store payrun.DraftStore, gateway payrun.Gateway) *AdjustmentService {
	return &AdjustmentService{
		store:   store,
		gateway: gateway,
		clock:   time.Now,
	}
}

// WithClock pins the clock; tests use it to control the current period.
func (s *AdjustmentService) WithClock(clock func() time.Time) *AdjustmentService {
	s.clock = clock
	return s
}

func (s *AdjustmentService) currentPeriod() payrun.Period {
	now := s.clock()
	return payrun.Period{Month: int(now.Month()), Year: now.Year()}
}

// LoadOrResume resumes the session's staged draft for (employee, period)
// verbatim, or creates a fresh one seeded from the registry row. A staged
// draft for a different employee or period must be resolved (discarded or
// submitted) first.
func (s *AdjustmentService) LoadOrResume(ctx context.Context, sessionID string, emp payrun.EmployeeRef, period payrun.Period, seed payrun.DraftSeed) (payrun.AdjustmentDraft, error) {
	if sessionID == "" || emp.ID <= 0 || !period.Valid() {
		return payrun.AdjustmentDraft{}, payrun.ErrNoActiveSession
	}
	if !period.Equal(s.currentPeriod()) {
		return payrun.AdjustmentDraft{}, payrun.ErrPeriodLocked
	}

	existing, err := s.store.Get(ctx, sessionID)
	switch {
	case err == nil:
		if existing.Employee.ID == emp.ID && existing.Period.Equal(period) {
			return existing, nil
		}
		return payrun.AdjustmentDraft{}, payrun.ErrDraftInProgress
	case !errors.Is(err, payrun.ErrDraftNotFound):
		return payrun.AdjustmentDraft{}, err
	}

	now := s.clock()
	draft := payrun.AdjustmentDraft{
		ID:              uuid.NewString(),
		SessionID:       sessionID,
		Employee:        emp,
		Period:          period,
		PaymentMethodID: seed.PaymentMethodID,
		FestivalBonus:   seed.FestivalBonus,
		OtherBonus:      seed.OtherBonus,
		CITContribution: seed.CITContribution,
		Components:      []payrun.DraftComponent{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.store.Put(ctx, draft); err != nil {
		return payrun.AdjustmentDraft{}, err
	}
	return draft, nil
}

// Active returns the session's staged draft, if any.
func (s *AdjustmentService) Active(ctx context.Context, sessionID string) (payrun.AdjustmentDraft, error) {
	draft, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, payrun.ErrDraftNotFound) {
		return payrun.AdjustmentDraft{}, payrun.ErrNoActiveSession
	}
	return draft, err
}

// AddComponent queues an extra earning or deduction. Validation failures
// happen before any store write, so the draft is never partially mutated.
func (s *AdjustmentService) AddComponent(ctx context.Context, sessionID string, req payrun.AddComponentRequest) (payrun.AdjustmentDraft, error) {
	if err := req.Validate(); err != nil {
		return payrun.AdjustmentDraft{}, err
	}
	if !req.Amount.IsPositive() {
		return payrun.AdjustmentDraft{}, payrun.ErrInvalidAmount
	}

	draft, err := s.Active(ctx, sessionID)
	if err != nil {
		return payrun.AdjustmentDraft{}, err
	}

	if draft.HasComponent(req.ComponentID) {
		return payrun.AdjustmentDraft{}, payrun.ErrDuplicateComponent
	}

	kind, _ := payrun.ParseComponentKind(req.Kind)
	draft.Components = append(draft.Components, payrun.DraftComponent{
		ComponentID: req.ComponentID,
		Label:       req.Label,
		Amount:      req.Amount,
		Kind:        kind,
	})
	draft.UpdatedAt = s.clock()

	if err := s.store.Put(ctx, draft); err != nil {
		return payrun.AdjustmentDraft{}, err
	}
	return draft, nil
}

// RemoveComponent drops a queued component. Removing an absent id is a
// no-op, not an error.
func (s *AdjustmentService) RemoveComponent(ctx context.Context, sessionID, componentID string) (payrun.AdjustmentDraft, error) {
	draft, err := s.Active(ctx, sessionID)
	if err != nil {
		return payrun.AdjustmentDraft{}, err
	}

	if !draft.HasComponent(componentID) {
		return draft, nil
	}

	kept := draft.Components[:0]
	for _, c := range draft.Components {
		if c.ComponentID != componentID {
			kept = append(kept, c)
		}
	}
	draft.Components = kept
	draft.UpdatedAt = s.clock()

	if err := s.store.Put(ctx, draft); err != nil {
		return payrun.AdjustmentDraft{}, err
	}
	return draft, nil
}

// UpdateBaseInput applies a free-form numeric edit to one of the base
// inputs. No gateway round-trip; last write wins.
func (s *AdjustmentService) UpdateBaseInput(ctx context.Context, sessionID string, req payrun.UpdateBaseInputRequest) (payrun.AdjustmentDraft, error) {
	if err := req.Validate(); err != nil {
		return payrun.AdjustmentDraft{}, err
	}

	draft, err := s.Active(ctx, sessionID)
	if err != nil {
		return payrun.AdjustmentDraft{}, err
	}

	switch req.Field {
	case payrun.FieldFestivalBonus:
		draft.FestivalBonus = req.Value
	case payrun.FieldOtherBonus:
		draft.OtherBonus = req.Value
	case payrun.FieldCITContribution:
		draft.CITContribution = req.Value
	}
	draft.UpdatedAt = s.clock()

	if err := s.store.Put(ctx, draft); err != nil {
		return payrun.AdjustmentDraft{}, err
	}
	return draft, nil
}

// Discard destroys the staged draft and hands control back to the registry.
// Immediate and local; no gateway call.
func (s *AdjustmentService) Discard(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

// SubmitForPreview sends the draft to the calculation service. On success
// the caller receives the authoritative breakdown plus a snapshot of the
// submitted draft for "go back and modify". On failure the staged draft is
// untouched and the service's message is surfaced verbatim.
func (s *AdjustmentService) SubmitForPreview(ctx context.Context, sessionID string) (payrun.PreviewResult, payrun.AdjustmentDraft, error) {
	draft, err := s.Active(ctx, sessionID)
	if err != nil {
		return payrun.PreviewResult{}, payrun.AdjustmentDraft{}, err
	}

	preview, err := s.gateway.Preview(ctx, draft)
	if err != nil {
		return payrun.PreviewResult{}, payrun.AdjustmentDraft{}, err
	}

	return preview, draft.Clone(), nil
}
