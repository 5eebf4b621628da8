package payrun

import "errors"

var (
	ErrNoActiveSession    = errors.New("no active adjustment session")
	ErrDraftNotFound      = errors.New("adjustment draft not found")
	ErrDraftInProgress    = errors.New("another adjustment draft is in progress")
	ErrDuplicateComponent = errors.New("component already added to this draft")
	ErrInvalidAmount      = errors.New("component amount must be greater than zero")
	ErrPeriodLocked       = errors.New("payroll edits are limited to the current period")
	ErrRowNotAdjustable   = errors.New("payroll row is not in an adjustable status")
	ErrSessionExpired     = errors.New("preview session expired")
	ErrNotVoidable        = errors.New("only paid payroll records can be voided")
	ErrVoidNotPermitted   = errors.New("void requires admin privileges")
	ErrRunNotPermitted    = errors.New("payroll processing not permitted for this role")
	ErrEmailInFlight      = errors.New("payslip email already being sent")
)
