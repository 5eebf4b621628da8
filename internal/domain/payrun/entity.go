package payrun

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Period identifies one payroll cycle. Exactly one period is "current" at
// any time; every other period is read-only for edits.
type Period struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (p Period) Valid() bool {
	return p.Month >= 1 && p.Month <= 12 && p.Year >= 2020
}

func (p Period) Equal(o Period) bool {
	return p.Month == o.Month && p.Year == o.Year
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// RunStatus enum
type RunStatus string

const (
	StatusPendingPayment RunStatus = "PENDING_PAYMENT"
	StatusReady          RunStatus = "READY"
	StatusPaid           RunStatus = "PAID"
	StatusVoided         RunStatus = "VOIDED"
	StatusUnknown        RunStatus = "UNKNOWN"
)

// ParseRunStatus folds case but never aliases: anything outside the closed
// set comes back as StatusUnknown instead of silently falling through.
func ParseRunStatus(s string) RunStatus {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(StatusPendingPayment):
		return StatusPendingPayment
	case string(StatusReady):
		return StatusReady
	case string(StatusPaid):
		return StatusPaid
	case string(StatusVoided):
		return StatusVoided
	default:
		return StatusUnknown
	}
}

// Adjustable reports whether a row in this status may enter the Adjustment
// Stage. PENDING_PAYMENT and READY are both "not yet disbursed".
func (s RunStatus) Adjustable() bool {
	return s == StatusPendingPayment || s == StatusReady
}

// Voidable reports whether a record in this status can be voided.
func (s RunStatus) Voidable() bool {
	return s == StatusPaid
}

// PayrollRow - one employee's payroll state for one period, as materialized
// by the calculation service when the Registry is loaded.
type PayrollRow struct {
	EmployeeID      int64
	FullName        string
	BasicSalary     decimal.Decimal
	EarnedSalary    decimal.Decimal
	FestivalBonus   decimal.Decimal
	OtherBonuses    decimal.Decimal
	CITContribution decimal.Decimal
	Status          RunStatus
	PayrollID       *string // present once finalized
}

// ComponentKind enum
type ComponentKind string

const (
	KindEarning   ComponentKind = "EARNING"
	KindDeduction ComponentKind = "DEDUCTION"
)

func ParseComponentKind(s string) (ComponentKind, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(KindEarning):
		return KindEarning, true
	case string(KindDeduction):
		return KindDeduction, true
	default:
		return "", false
	}
}

// DraftComponent - one ad-hoc earning or deduction queued on a draft.
type DraftComponent struct {
	ComponentID string          `json:"component_id"`
	Label       string          `json:"label"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        ComponentKind   `json:"kind"`
}

// EmployeeRef - the slice of employee identity a draft carries.
type EmployeeRef struct {
	ID          int64           `json:"id"`
	FullName    string          `json:"full_name"`
	BasicSalary decimal.Decimal `json:"basic_salary"`
}

// AdjustmentDraft - the resumable in-progress payroll run for one employee,
// one period. One active instance per session slot; survives navigation
// until discarded or consumed by finalize.
type AdjustmentDraft struct {
	ID              string           `json:"id"`
	SessionID       string           `json:"session_id"`
	Employee        EmployeeRef      `json:"employee"`
	Period          Period           `json:"period"`
	PaymentMethodID string           `json:"payment_method_id,omitempty"`
	FestivalBonus   decimal.Decimal  `json:"festival_bonus"`
	OtherBonus      decimal.Decimal  `json:"other_bonus"`
	CITContribution decimal.Decimal  `json:"cit_contribution"`
	Components      []DraftComponent `json:"components"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// HasComponent reports whether componentID is already queued.
func (d *AdjustmentDraft) HasComponent(componentID string) bool {
	for _, c := range d.Components {
		if c.ComponentID == componentID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so a preview hand-off cannot be mutated through
// the staged original.
func (d AdjustmentDraft) Clone() AdjustmentDraft {
	out := d
	out.Components = make([]DraftComponent, len(d.Components))
	copy(out.Components, d.Components)
	return out
}

// PreviewComponent - one expanded component in a computed breakdown.
type PreviewComponent struct {
	ComponentID string          `json:"component_id"`
	Label       string          `json:"label"`
	Amount      decimal.Decimal `json:"amount"`
}

// PreviewResult - the authoritative gross-to-net breakdown computed by the
// calculation service. Transient; regenerated on every resubmission and
// never mutated in place.
type PreviewResult struct {
	GrossSalary         decimal.Decimal    `json:"gross_salary"`
	TaxableIncome       decimal.Decimal    `json:"taxable_income"`
	TotalTax            decimal.Decimal    `json:"total_tax"`
	TotalDeductions     decimal.Decimal    `json:"total_deductions"`
	NetSalary           decimal.Decimal    `json:"net_salary"`
	Earnings            []PreviewComponent `json:"earnings"`
	StatutoryDeductions []PreviewComponent `json:"statutory_deductions"`
	OtherDeductions     []PreviewComponent `json:"other_deductions"`
}

// DisbursementHandoff - gateway redirect parameters from the disbursement
// initiate call. Opaque to the engine; the client performs the redirect.
type DisbursementHandoff struct {
	RedirectURL string            `json:"redirect_url"`
	Params      map[string]string `json:"params,omitempty"`
}

// FinalizeResult - outcome of the two-step finalize. DisbursementPending is
// set when step (a) created the record but step (b) failed; the record
// exists server-side and must be reconciled via Registry/History, never by
// retrying finalize.
type FinalizeResult struct {
	PayrollID           string
	Handoff             DisbursementHandoff
	DisbursementPending bool
	DisbursementError   string
}

// HistoryRecord - immutable past payroll row for one employee, one period.
type HistoryRecord struct {
	PayrollID       string
	Period          Period
	Status          RunStatus
	BasicSalary     decimal.Decimal
	GrossSalary     decimal.Decimal
	TotalDeductions decimal.Decimal
	NetSalary       decimal.Decimal
	ApprovedBy      *string
	VoidedAt        *time.Time
	VoidedBy        *string
}

// PaymentMethod - a disbursement channel option.
type PaymentMethod struct {
	ID   string `json:"payment_method_id"`
	Name string `json:"method_name"`
}
