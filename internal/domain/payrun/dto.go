package payrun

import (
	"github.com/payrollhq/payrun-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== REGISTRY DTOs ==========

// RegistryView - everything the command center needs for one period.
type RegistryView struct {
	Period         Period          `json:"period"`
	Locked         bool            `json:"locked"`
	Rows           []PayrollRow    `json:"rows"`
	PaymentMethods []PaymentMethod `json:"payment_methods"`
	RowsDegraded   bool            `json:"rows_degraded,omitempty"`
}

type PayrollRowResponse struct {
	EmployeeID      int64           `json:"emp_id"`
	FullName        string          `json:"full_name"`
	BasicSalary     decimal.Decimal `json:"basic_salary"`
	EarnedSalary    decimal.Decimal `json:"earned_salary"`
	FestivalBonus   decimal.Decimal `json:"festival_bonus"`
	OtherBonuses    decimal.Decimal `json:"other_bonuses"`
	CITContribution decimal.Decimal `json:"cit_contribution"`
	Status          string          `json:"status"`
	PayrollID       *string         `json:"payroll_id,omitempty"`
}

// ========== ADJUSTMENT DTOs ==========

// DraftSeed carries the registry row values a fresh draft starts from.
type DraftSeed struct {
	FestivalBonus   decimal.Decimal `json:"festival_bonus"`
	OtherBonus      decimal.Decimal `json:"other_bonus"`
	CITContribution decimal.Decimal `json:"cit_contribution"`
	PaymentMethodID string          `json:"payment_method_id,omitempty"`
}

type StartDraftRequest struct {
	EmployeeID      int64           `json:"-"`
	FullName        string          `json:"full_name"`
	BasicSalary     decimal.Decimal `json:"basic_salary"`
	Status          string          `json:"status"`
	Period          Period          `json:"period"`
	Seed            DraftSeed       `json:"seed"`
	PaymentMethodID string          `json:"payment_method_id,omitempty"`
}

func (r *StartDraftRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID <= 0 {
		errs = append(errs, validator.ValidationError{Field: "emp_id", Message: "is required"})
	}
	if validator.IsEmpty(r.Status) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "is required"})
	}
	if !r.Period.Valid() {
		errs = append(errs, validator.ValidationError{Field: "period", Message: "month must be 1-12 and year 2020 or later"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Base input field names accepted by UpdateBaseInput.
const (
	FieldFestivalBonus   = "festival_bonus"
	FieldOtherBonus      = "other_bonus"
	FieldCITContribution = "cit_contribution"
)

type UpdateBaseInputRequest struct {
	Field string          `json:"field"`
	Value decimal.Decimal `json:"value"`
}

func (r *UpdateBaseInputRequest) Validate() error {
	switch r.Field {
	case FieldFestivalBonus, FieldOtherBonus, FieldCITContribution:
		return nil
	default:
		return validator.ValidationErrors{
			{Field: "field", Message: "must be one of festival_bonus, other_bonus, cit_contribution"},
		}
	}
}

type AddComponentRequest struct {
	ComponentID string          `json:"component_id"`
	Label       string          `json:"label"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        string          `json:"kind"`
}

func (r *AddComponentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ComponentID) {
		errs = append(errs, validator.ValidationError{Field: "component_id", Message: "is required"})
	}
	if _, ok := ParseComponentKind(r.Kind); !ok {
		errs = append(errs, validator.ValidationError{Field: "kind", Message: "must be EARNING or DEDUCTION"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ========== PREVIEW / FINALIZE DTOs ==========

// PreviewPage - what the preview step renders: the computed breakdown plus
// the original serialized draft, kept for "go back and modify".
type PreviewPage struct {
	Preview PreviewResult   `json:"preview"`
	Draft   AdjustmentDraft `json:"draft"`
}

type FinalizeResponse struct {
	PayrollID           string               `json:"payroll_id"`
	Handoff             *DisbursementHandoff `json:"handoff,omitempty"`
	DisbursementPending bool                 `json:"disbursement_pending,omitempty"`
	DisbursementError   string               `json:"disbursement_error,omitempty"`
	Next                string               `json:"next"`
}

// ========== HISTORY DTOs ==========

type HistoryRecordResponse struct {
	PayrollID       string          `json:"payroll_id"`
	PeriodMonth     int             `json:"period_month"`
	PeriodYear      int             `json:"period_year"`
	Status          string          `json:"status"`
	BasicSalary     decimal.Decimal `json:"basic_salary"`
	GrossSalary     decimal.Decimal `json:"gross_salary"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetSalary       decimal.Decimal `json:"net_salary"`
	ApprovedBy      *string         `json:"approved_by,omitempty"`
	VoidedAt        *string         `json:"voided_at,omitempty"`
	VoidedBy        *string         `json:"voided_by,omitempty"`
}
