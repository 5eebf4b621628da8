package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/payrollhq/payrun-backend-go/internal/domain/payrun"
	"github.com/payrollhq/payrun-backend-go/internal/domain/session"
	"github.com/payrollhq/payrun-backend-go/internal/handler/http/response"
	payrunService "github.com/payrollhq/payrun-backend-go/internal/service/payrun"
)

type PayrunHandler interface {
	// Registry
	LoadPeriod(w http.ResponseWriter, r *http.Request)
	RunOrResume(w http.ResponseWriter, r *http.Request)
	Void(w http.ResponseWriter, r *http.Request)
	EmailPayslip(w http.ResponseWriter, r *http.Request)

	// Adjustment stage
	GetDraft(w http.ResponseWriter, r *http.Request)
	UpdateBaseInput(w http.ResponseWriter, r *http.Request)
	AddComponent(w http.ResponseWriter, r *http.Request)
	RemoveComponent(w http.ResponseWriter, r *http.Request)
	DiscardDraft(w http.ResponseWriter, r *http.Request)
	SubmitForPreview(w http.ResponseWriter, r *http.Request)

	// Preview & finalize
	GoBack(w http.ResponseWriter, r *http.Request)
	Finalize(w http.ResponseWriter, r *http.Request)

	// History
	History(w http.ResponseWriter, r *http.Request)
}

type payrunHandlerImpl struct {
	registry   *payrunService.RegistryService
	adjustment *payrunService.AdjustmentService
	preview    *payrunService.PreviewService
	history    *payrunService.HistoryService
}

func NewPayrunHandler(
	registry *payrunService.RegistryService,
	adjustment *payrunService.AdjustmentService,
	preview *payrunService.PreviewService,
	history *payrunService.HistoryService,
) PayrunHandler {
	return &payrunHandlerImpl{
		registry:   registry,
		adjustment: adjustment,
		preview:    preview,
		history:    history,
	}
}

func toRowResponse(row payrun.PayrollRow) payrun.PayrollRowResponse {
	return payrun.PayrollRowResponse{
		EmployeeID:      row.EmployeeID,
		FullName:        row.FullName,
		BasicSalary:     row.BasicSalary,
		EarnedSalary:    row.EarnedSalary,
		FestivalBonus:   row.FestivalBonus,
		OtherBonuses:    row.OtherBonuses,
		CITContribution: row.CITContribution,
		Status:          string(row.Status),
		PayrollID:       row.PayrollID,
	}
}

// ========== REGISTRY ==========

func (h *payrunHandlerImpl) LoadPeriod(w http.ResponseWriter, r *http.Request) {
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		response.BadRequest(w, "Invalid month", nil)
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2020 {
		response.BadRequest(w, "Invalid year", nil)
		return
	}

	view, err := h.registry.LoadPeriod(r.Context(), month, year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	rows := h.registry.Filter(view.Rows, r.URL.Query().Get("search"), r.URL.Query().Get("status"))
	rowResponses := make([]payrun.PayrollRowResponse, 0, len(rows))
	for _, row := range rows {
		rowResponses = append(rowResponses, toRowResponse(row))
	}

	response.SuccessWithMeta(w, map[string]interface{}{
		"period":          view.Period,
		"locked":          view.Locked,
		"rows":            rowResponses,
		"payment_methods": view.PaymentMethods,
	}, &response.Meta{Degraded: view.RowsDegraded})
}

func (h *payrunHandlerImpl) RunOrResume(w http.ResponseWriter, r *http.Request) {
	empID, err := strconv.ParseInt(chi.URLParam(r, "empID"), 10, 64)
	if err != nil || empID <= 0 {
		response.BadRequest(w, "Invalid employee ID", nil)
		return
	}

	var req payrun.StartDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = empID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	sess, err := session.FromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	row := payrun.PayrollRow{
		EmployeeID:      empID,
		FullName:        req.FullName,
		BasicSalary:     req.BasicSalary,
		FestivalBonus:   req.Seed.FestivalBonus,
		OtherBonuses:    req.Seed.OtherBonus,
		CITContribution: req.Seed.CITContribution,
		Status:          payrun.ParseRunStatus(req.Status),
	}

	draft, err := h.registry.RunOrResume(r.Context(), sess, row, req.Period, req.PaymentMethodID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Adjustment draft ready", draft)
}

func (h *payrunHandlerImpl) Void(w http.ResponseWriter, r *http.Request) {
	payrollID := chi.URLParam(r, "payrollID")
	if payrollID == "" {
		response.BadRequest(w, "Payroll ID is required", nil)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	sess, err := session.FromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	updated, err := h.registry.Void(r.Context(), sess, payrollID, payrun.ParseRunStatus(req.Status))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll record voided", map[string]string{"status": string(updated)})
}

func (h *payrunHandlerImpl) EmailPayslip(w http.ResponseWriter, r *http.Request) {
	payrollID := chi.URLParam(r, "payrollID")
	if payrollID == "" {
		response.BadRequest(w, "Payroll ID is required", nil)
		return
	}

	if err := h.registry.EmailPayslip(r.Context(), payrollID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payslip email queued", nil)
}

// ========== ADJUSTMENT STAGE ==========

func (h *payrunHandlerImpl) GetDraft(w http.ResponseWriter, r *http.Request) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	draft, err := h.adjustment.Active(r.Context(), sess.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, draft)
}

func (h *payrunHandlerImpl) UpdateBaseInput(w http.ResponseWriter, r *http.Request) {
	var req payrun.UpdateBaseInputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	sess, err := session.FromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	draft, err := h.adjustment.UpdateBaseInput(r.Context(), sess.UserID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, draft)
}

func (h *payrunHandlerImpl) AddComponent(w http.ResponseWriter, r *http.Request) {
	var req payrun.AddComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	sess, err := session.FromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	draft, err := h.adjustment.AddComponent(r.Context(), sess.UserID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, draft)
}

func (h *payrunHandlerImpl) RemoveComponent(w http.ResponseWriter, r *http.Request) {
	componentID := chi.URLParam(r, "componentID")
	if componentID == "" {
		response.BadRequest(w, "Component ID is required", nil)
		return
	}

	sess, err := session.FromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	draft, err := h.adjustment.RemoveComponent(r.Context(), sess.UserID, componentID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, draft)
}

func (h *payrunHandlerImpl) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	if err := h.adjustment.Discard(r.Context(), sess.UserID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Adjustment draft discarded", nil)
}

func (h *payrunHandlerImpl) SubmitForPreview(w http.ResponseWriter, r *http.Request) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	previewResult, original, err := h.adjustment.SubmitForPreview(r.Context(), sess.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	page, err := h.preview.Render(&previewResult, &original)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, page)
}

// ========== PREVIEW & FINALIZE ==========

func (h *payrunHandlerImpl) GoBack(w http.ResponseWriter, r *http.Request) {
	var original payrun.AdjustmentDraft
	if err := json.NewDecoder(r.Body).Decode(&original); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	sess, err := session.FromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}
	// The draft slot belongs to the caller's session, whatever the payload says.
	original.SessionID = sess.UserID

	draft, err := h.preview.GoBack(r.Context(), original)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, draft)
}

func (h *payrunHandlerImpl) Finalize(w http.ResponseWriter, r *http.Request) {
	var original payrun.AdjustmentDraft
	if err := json.NewDecoder(r.Body).Decode(&original); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	sess, err := session.FromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}
	original.SessionID = sess.UserID

	result, err := h.preview.Finalize(r.Context(), sess, original)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	resp := payrun.FinalizeResponse{
		PayrollID:           result.PayrollID,
		DisbursementPending: result.DisbursementPending,
		DisbursementError:   result.DisbursementError,
		Next:                "registry",
	}
	if !result.DisbursementPending {
		resp.Handoff = &result.Handoff
	}

	response.Created(w, "Payroll record created", resp)
}

// ========== HISTORY ==========

func (h *payrunHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	empID, err := strconv.ParseInt(chi.URLParam(r, "empID"), 10, 64)
	if err != nil || empID <= 0 {
		response.BadRequest(w, "Invalid employee ID", nil)
		return
	}

	var period *payrun.Period
	monthStr := r.URL.Query().Get("month")
	yearStr := r.URL.Query().Get("year")
	if monthStr != "" && yearStr != "" {
		month, errM := strconv.Atoi(monthStr)
		year, errY := strconv.Atoi(yearStr)
		if errM != nil || errY != nil {
			response.BadRequest(w, "Invalid period filter", nil)
			return
		}
		period = &payrun.Period{Month: month, Year: year}
	}

	sess, err := session.FromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	records, err := h.history.History(r.Context(), sess, empID, period)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]payrun.HistoryRecordResponse, 0, len(records))
	for _, rec := range records {
		var voidedAt *string
		if rec.VoidedAt != nil {
			str := rec.VoidedAt.Format(time.RFC3339)
			voidedAt = &str
		}
		result = append(result, payrun.HistoryRecordResponse{
			PayrollID:       rec.PayrollID,
			PeriodMonth:     rec.Period.Month,
			PeriodYear:      rec.Period.Year,
			Status:          string(rec.Status),
			BasicSalary:     rec.BasicSalary,
			GrossSalary:     rec.GrossSalary,
			TotalDeductions: rec.TotalDeductions,
			NetSalary:       rec.NetSalary,
			ApprovedBy:      rec.ApprovedBy,
			VoidedAt:        voidedAt,
			VoidedBy:        rec.VoidedBy,
		})
	}

	response.Success(w, result)
}
