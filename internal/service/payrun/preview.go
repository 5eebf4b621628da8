package payrun

import (
	"context"
	"log/slog"

	"github.com/payrollhq/payrun-backend-go/internal/domain/payrun"
	"github.com/payrollhq/payrun-backend-go/internal/domain/session"
)

// PreviewService renders the authoritative breakdown computed by the
// calculation service and drives the two-step finalize: (a) process/save
// the record, (b) initiate the disbursement handoff. Step (a) is
// irreversible; step (b) is best-effort.
type PreviewService struct {
	store   payrun.DraftStore
	gateway payrun.Gateway
	logger  *slog.Logger
}

func NewPreviewService(store payrun.DraftStore, gateway payrun.Gateway, logger *slog.Logger) *PreviewService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreviewService{store: store, gateway: gateway, logger: logger}
}

func validOriginal(original payrun.AdjustmentDraft) bool {
	return original.Employee.ID > 0 && original.Period.Valid()
}

// Render assembles the preview page. Both the computed result and the
// original submitted draft must be present; entering the preview without
// them means the session expired and the caller belongs back on the
// registry. The figures pass through untouched - no client-side
// re-derivation of net from gross.
func (s *PreviewService) Render(preview *payrun.PreviewResult, original *payrun.AdjustmentDraft) (payrun.PreviewPage, error) {
	if preview == nil || original == nil || !validOriginal(*original) {
		return payrun.PreviewPage{}, payrun.ErrSessionExpired
	}

	return payrun.PreviewPage{
		Preview: *preview,
		Draft:   original.Clone(),
	}, nil
}

// GoBack re-stages the submitted draft verbatim so the Adjustment Stage
// resumes with the exact pre-preview state, component queue included.
func (s *PreviewService) GoBack(ctx context.Context, original payrun.AdjustmentDraft) (payrun.AdjustmentDraft, error) {
	if !validOriginal(original) || original.SessionID == "" {
		return payrun.AdjustmentDraft{}, payrun.ErrSessionExpired
	}

	restored := original.Clone()
	if err := s.store.Put(ctx, restored); err != nil {
		return payrun.AdjustmentDraft{}, err
	}
	return restored, nil
}

// Finalize creates the payroll record from the original draft and then
// initiates disbursement.
//
// If Process fails, nothing was created: the staged draft is retained and
// the caller may retry. Once Process succeeds the record exists on the
// server and the draft is destroyed; a disbursement failure after that is
// reported as pending, never retried here, because re-running Process
// would create a duplicate record.
func (s *PreviewService) Finalize(ctx context.Context, sess session.Session, original payrun.AdjustmentDraft) (payrun.FinalizeResult, error) {
	if !sess.CanProcessPayroll {
		return payrun.FinalizeResult{}, payrun.ErrRunNotPermitted
	}
	if !validOriginal(original) || original.SessionID == "" {
		return payrun.FinalizeResult{}, payrun.ErrSessionExpired
	}

	payrollID, err := s.gateway.Process(ctx, original)
	if err != nil {
		return payrun.FinalizeResult{}, err
	}

	// The record exists from here on. Clearing the stage must not depend on
	// the disbursement call.
	if err := s.store.Delete(ctx, original.SessionID); err != nil {
		s.logger.Warn("failed to clear adjustment draft after finalize", "session_id", original.SessionID, "error", err)
	}

	result := payrun.FinalizeResult{PayrollID: payrollID}

	handoff, err := s.gateway.InitiateDisbursement(ctx, payrollID)
	if err != nil {
		s.logger.Warn("disbursement initiation failed after record creation",
			"payroll_id", payrollID, "error", err)
		result.DisbursementPending = true
		result.DisbursementError = err.Error()
		return result, nil
	}

	result.Handoff = handoff
	return result, nil
}
