package paycalc

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/payrollhq/payrun-backend-go/internal/domain/catalog"
	"github.com/payrollhq/payrun-backend-go/internal/domain/payrun"
	"github.com/shopspring/decimal"
)

// Wire formats of the calculation service. Field names follow its API, not
// the engine's domain model.

type componentWire struct {
	ComponentID   string `json:"componentId"`
	ComponentName string `json:"componentName"`
}

type payrollRowWire struct {
	EmpID           int64           `json:"empId"`
	FullName        string          `json:"fullName"`
	BasicSalary     decimal.Decimal `json:"basicSalary"`
	EarnedSalary    decimal.Decimal `json:"earnedSalary"`
	FestivalBonus   decimal.Decimal `json:"festivalBonus"`
	OtherBonuses    decimal.Decimal `json:"otherBonuses"`
	CITContribution decimal.Decimal `json:"citContribution"`
	Status          string          `json:"status"`
	PayrollID       *string         `json:"payrollId,omitempty"`
}

type paymentMethodWire struct {
	PaymentMethodID string `json:"paymentMethodId"`
	MethodName      string `json:"methodName"`
}

type draftComponentWire struct {
	ComponentID string          `json:"componentId"`
	Label       string          `json:"label"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        string          `json:"kind"`
}

type draftWire struct {
	EmpID           int64                `json:"empId"`
	Month           int                  `json:"month"`
	Year            int                  `json:"year"`
	FestivalBonus   decimal.Decimal      `json:"festivalBonus"`
	OtherBonus      decimal.Decimal      `json:"otherBonus"`
	CITContribution decimal.Decimal      `json:"citContribution"`
	PaymentMethodID string               `json:"paymentMethodId,omitempty"`
	ExtraComponents []draftComponentWire `json:"extraComponents"`
}

type previewComponentWire struct {
	ComponentID string          `json:"componentId"`
	Label       string          `json:"label"`
	Amount      decimal.Decimal `json:"amount"`
}

type previewWire struct {
	GrossSalary         decimal.Decimal        `json:"grossSalary"`
	TaxableIncome       decimal.Decimal        `json:"taxableIncome"`
	TotalTax            decimal.Decimal        `json:"totalTax"`
	TotalDeductions     decimal.Decimal        `json:"totalDeductions"`
	NetSalary           decimal.Decimal        `json:"netSalary"`
	Earnings            []previewComponentWire `json:"earnings"`
	StatutoryDeductions []previewComponentWire `json:"statutoryDeductions"`
	OtherDeductions     []previewComponentWire `json:"otherDeductions"`
}

type processResultWire struct {
	PayrollID string `json:"payrollId"`
}

type disbursementWire struct {
	RedirectURL string            `json:"redirectUrl"`
	Params      map[string]string `json:"params"`
}

type voidResultWire struct {
	Status string `json:"status"`
}

type historyRecordWire struct {
	PayrollID       string          `json:"payrollId"`
	Month           int             `json:"month"`
	Year            int             `json:"year"`
	Status          string          `json:"status"`
	BasicSalary     decimal.Decimal `json:"basicSalary"`
	GrossSalary     decimal.Decimal `json:"grossSalary"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	NetSalary       decimal.Decimal `json:"netSalary"`
	ApprovedBy      *string         `json:"approvedBy,omitempty"`
	VoidedAt        *time.Time      `json:"voidedAt,omitempty"`
	VoidedBy        *string         `json:"voidedBy,omitempty"`
}

func toDraftWire(d payrun.AdjustmentDraft) draftWire {
	components := make([]draftComponentWire, 0, len(d.Components))
	for _, c := range d.Components {
		components = append(components, draftComponentWire{
			ComponentID: c.ComponentID,
			Label:       c.Label,
			Amount:      c.Amount,
			Kind:        string(c.Kind),
		})
	}
	return draftWire{
		EmpID:           d.Employee.ID,
		Month:           d.Period.Month,
		Year:            d.Period.Year,
		FestivalBonus:   d.FestivalBonus,
		OtherBonus:      d.OtherBonus,
		CITContribution: d.CITContribution,
		PaymentMethodID: d.PaymentMethodID,
		ExtraComponents: components,
	}
}

func toPreviewComponents(in []previewComponentWire) []payrun.PreviewComponent {
	out := make([]payrun.PreviewComponent, 0, len(in))
	for _, c := range in {
		out = append(out, payrun.PreviewComponent{
			ComponentID: c.ComponentID,
			Label:       c.Label,
			Amount:      c.Amount,
		})
	}
	return out
}

// Components implements catalog.Source.
func (c *Client) Components(ctx context.Context) ([]catalog.ComponentDef, error) {
	var wire []componentWire
	if err := c.do(ctx, http.MethodGet, "/components", nil, nil, &wire); err != nil {
		return nil, err
	}

	defs := make([]catalog.ComponentDef, 0, len(wire))
	for _, w := range wire {
		defs = append(defs, catalog.ComponentDef{
			ComponentID:   w.ComponentID,
			ComponentName: w.ComponentName,
		})
	}
	return defs, nil
}

func (c *Client) PayrollRows(ctx context.Context, month, year int) ([]payrun.PayrollRow, error) {
	query := url.Values{}
	query.Set("month", strconv.Itoa(month))
	query.Set("year", strconv.Itoa(year))

	var wire []payrollRowWire
	if err := c.do(ctx, http.MethodGet, "/payroll-rows", query, nil, &wire); err != nil {
		return nil, err
	}

	rows := make([]payrun.PayrollRow, 0, len(wire))
	for _, w := range wire {
		rows = append(rows, payrun.PayrollRow{
			EmployeeID:      w.EmpID,
			FullName:        w.FullName,
			BasicSalary:     w.BasicSalary,
			EarnedSalary:    w.EarnedSalary,
			FestivalBonus:   w.FestivalBonus,
			OtherBonuses:    w.OtherBonuses,
			CITContribution: w.CITContribution,
			Status:          payrun.ParseRunStatus(w.Status),
			PayrollID:       w.PayrollID,
		})
	}
	return rows, nil
}

func (c *Client) PaymentMethods(ctx context.Context) ([]payrun.PaymentMethod, error) {
	var wire []paymentMethodWire
	if err := c.do(ctx, http.MethodGet, "/payment-methods", nil, nil, &wire); err != nil {
		return nil, err
	}

	methods := make([]payrun.PaymentMethod, 0, len(wire))
	for _, w := range wire {
		methods = append(methods, payrun.PaymentMethod{ID: w.PaymentMethodID, Name: w.MethodName})
	}
	return methods, nil
}

func (c *Client) Preview(ctx context.Context, draft payrun.AdjustmentDraft) (payrun.PreviewResult, error) {
	var wire previewWire
	if err := c.do(ctx, http.MethodPost, "/payroll-preview", nil, toDraftWire(draft), &wire); err != nil {
		return payrun.PreviewResult{}, err
	}

	return payrun.PreviewResult{
		GrossSalary:         wire.GrossSalary,
		TaxableIncome:       wire.TaxableIncome,
		TotalTax:            wire.TotalTax,
		TotalDeductions:     wire.TotalDeductions,
		NetSalary:           wire.NetSalary,
		Earnings:            toPreviewComponents(wire.Earnings),
		StatutoryDeductions: toPreviewComponents(wire.StatutoryDeductions),
		OtherDeductions:     toPreviewComponents(wire.OtherDeductions),
	}, nil
}

func (c *Client) Process(ctx context.Context, draft payrun.AdjustmentDraft) (string, error) {
	var wire processResultWire
	if err := c.do(ctx, http.MethodPost, "/payroll-process", nil, toDraftWire(draft), &wire); err != nil {
		return "", err
	}
	return wire.PayrollID, nil
}

func (c *Client) InitiateDisbursement(ctx context.Context, payrollID string) (payrun.DisbursementHandoff, error) {
	query := url.Values{}
	query.Set("payrollId", payrollID)

	var wire disbursementWire
	if err := c.do(ctx, http.MethodGet, "/disbursement-initiate", query, nil, &wire); err != nil {
		return payrun.DisbursementHandoff{}, err
	}
	return payrun.DisbursementHandoff{RedirectURL: wire.RedirectURL, Params: wire.Params}, nil
}

func (c *Client) Void(ctx context.Context, payrollID string) (payrun.RunStatus, error) {
	var wire voidResultWire
	if err := c.do(ctx, http.MethodPut, "/payroll-void/"+url.PathEscape(payrollID), nil, nil, &wire); err != nil {
		return payrun.StatusUnknown, err
	}
	return payrun.ParseRunStatus(wire.Status), nil
}

func (c *Client) EmailPayslip(ctx context.Context, payrollID string) error {
	return c.do(ctx, http.MethodPost, "/payroll-email/"+url.PathEscape(payrollID), nil, nil, nil)
}

func (c *Client) History(ctx context.Context, employeeID int64) ([]payrun.HistoryRecord, error) {
	query := url.Values{}
	query.Set("empId", strconv.FormatInt(employeeID, 10))

	var wire []historyRecordWire
	if err := c.do(ctx, http.MethodGet, "/payroll-history", query, nil, &wire); err != nil {
		return nil, err
	}

	records := make([]payrun.HistoryRecord, 0, len(wire))
	for _, w := range wire {
		records = append(records, payrun.HistoryRecord{
			PayrollID:       w.PayrollID,
			Period:          payrun.Period{Month: w.Month, Year: w.Year},
			Status:          payrun.ParseRunStatus(w.Status),
			BasicSalary:     w.BasicSalary,
			GrossSalary:     w.GrossSalary,
			TotalDeductions: w.TotalDeductions,
			NetSalary:       w.NetSalary,
			ApprovedBy:      w.ApprovedBy,
			VoidedAt:        w.VoidedAt,
			VoidedBy:        w.VoidedBy,
		})
	}
	return records, nil
}
