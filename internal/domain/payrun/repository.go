package payrun

import "context"

// DraftStore is the durable, single-slot stage for in-progress adjustment
// drafts. One slot per session; the draft inside is addressable by
// (employee, period). Last write wins; there is no concurrent-editor
// conflict detection.
type DraftStore interface {
	// Get returns the active draft for the session slot, or ErrDraftNotFound.
	Get(ctx context.Context, sessionID string) (AdjustmentDraft, error)
	// Put stores the draft into its session slot, replacing any prior draft.
	Put(ctx context.Context, draft AdjustmentDraft) error
	// Delete clears the session slot. Deleting an empty slot is not an error.
	Delete(ctx context.Context, sessionID string) error
}

// Gateway is the contract of the external payroll-calculation service. The
// engine consumes these calls; it never owns persistence of payroll records
// or the computation behind them.
type Gateway interface {
	// PayrollRows materializes the registry row set for a period.
	PayrollRows(ctx context.Context, month, year int) ([]PayrollRow, error)
	// PaymentMethods lists disbursement channel options.
	PaymentMethods(ctx context.Context) ([]PaymentMethod, error)
	// Preview computes a gross-to-net breakdown from a draft. Idempotent and
	// side-effect free; repeatable without creating records.
	Preview(ctx context.Context, draft AdjustmentDraft) (PreviewResult, error)
	// Process creates the payroll record from a draft and returns its id.
	// NOT idempotent - every call creates a new record.
	Process(ctx context.Context, draft AdjustmentDraft) (string, error)
	// InitiateDisbursement obtains gateway redirect parameters for a
	// finalized record.
	InitiateDisbursement(ctx context.Context, payrollID string) (DisbursementHandoff, error)
	// Void reverses a paid record and returns its updated status.
	Void(ctx context.Context, payrollID string) (RunStatus, error)
	// EmailPayslip triggers a payslip notification.
	EmailPayslip(ctx context.Context, payrollID string) error
	// History lists all past records for one employee.
	History(ctx context.Context, employeeID int64) ([]HistoryRecord, error)
}
