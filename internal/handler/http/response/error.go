package response

import (
	"errors"
	"net/http"

	"github.com/payrollhq/payrun-backend-go/internal/domain/payrun"
	"github.com/payrollhq/payrun-backend-go/internal/pkg/paycalc"
	"github.com/payrollhq/payrun-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Calculation service errors carry the upstream message verbatim.
	var apiErr *paycalc.APIError
	if errors.As(err, &apiErr) {
		BadGateway(w, apiErr.Error())
		return
	}

	// Payroll run domain errors
	switch {
	case errors.Is(err, payrun.ErrNoActiveSession),
		errors.Is(err, payrun.ErrDraftNotFound):
		NotFound(w, "No active adjustment session")
	case errors.Is(err, payrun.ErrSessionExpired):
		Gone(w, "Preview session expired, return to the payroll registry")
	case errors.Is(err, payrun.ErrDraftInProgress):
		Conflict(w, "Another adjustment draft is in progress, discard or submit it first")
	case errors.Is(err, payrun.ErrDuplicateComponent):
		Conflict(w, "Component already added to this draft")
	case errors.Is(err, payrun.ErrInvalidAmount):
		BadRequest(w, "Component amount must be greater than zero", nil)
	case errors.Is(err, payrun.ErrPeriodLocked):
		Forbidden(w, "Payroll edits are limited to the current period")
	case errors.Is(err, payrun.ErrRowNotAdjustable):
		Conflict(w, "Payroll row is not in an adjustable status")
	case errors.Is(err, payrun.ErrNotVoidable):
		Conflict(w, "Only paid payroll records can be voided")
	case errors.Is(err, payrun.ErrVoidNotPermitted),
		errors.Is(err, payrun.ErrRunNotPermitted):
		Forbidden(w, err.Error())
	case errors.Is(err, payrun.ErrEmailInFlight):
		Conflict(w, "Payslip email already being sent")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
