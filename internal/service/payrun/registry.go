package payrun

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/payrollhq/payrun-backend-go/internal/domain/payrun"
	"github.com/payrollhq/payrun-backend-go/internal/domain/session"
)

// RegistryService is the command center over all employees' payroll status
// for a selected period. It observes row state, gates the mutating actions
// on the current period and the caller's capabilities, and dispatches into
// the Adjustment Stage.
type RegistryService struct {
	gateway    payrun.Gateway
	adjustment *AdjustmentService
	logger     *slog.Logger
	clock      func() time.Time

	mu             sync.Mutex
	emailsInFlight map[string]struct{}
}

func NewRegistryService(gateway payrun.Gateway, adjustment *AdjustmentService, logger *slog.Logger) *RegistryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegistryService{
		gateway:        gateway,
		adjustment:     adjustment,
		logger:         logger,
		clock:          time.Now,
		emailsInFlight: make(map[string]struct{}),
	}
}

// WithClock pins the clock; tests use it to control the current period.
func (s *RegistryService) WithClock(clock func() time.Time) *RegistryService {
	s.clock = clock
	s.adjustment.WithClock(clock)
	return s
}

// IsCurrentPeriod reports whether the period matches the system clock's
// month and year. All mutating actions are locked outside of it.
func (s *RegistryService) IsCurrentPeriod(period payrun.Period) bool {
	now := s.clock()
	return period.Month == int(now.Month()) && period.Year == now.Year()
}

// LoadPeriod fetches payment methods and the row set for a period. A row
// fetch failure degrades to an empty set instead of failing the whole view;
// payment methods load independently, and the other way around.
func (s *RegistryService) LoadPeriod(ctx context.Context, month, year int) (payrun.RegistryView, error) {
	period := payrun.Period{Month: month, Year: year}
	if !period.Valid() {
		return payrun.RegistryView{}, payrun.ErrNoActiveSession
	}

	methods, err := s.gateway.PaymentMethods(ctx)
	if err != nil {
		s.logger.Warn("payment methods unavailable", "error", err)
		methods = []payrun.PaymentMethod{}
	}

	view := payrun.RegistryView{
		Period:         period,
		Locked:         !s.IsCurrentPeriod(period),
		PaymentMethods: methods,
	}

	rows, err := s.gateway.PayrollRows(ctx, month, year)
	if err != nil {
		s.logger.Warn("payroll rows unavailable", "period", period.String(), "error", err)
		view.Rows = []payrun.PayrollRow{}
		view.RowsDegraded = true
		return view, nil
	}

	sortRows(rows)
	view.Rows = rows
	return view, nil
}

// sortRows orders descending by employee id: most-recently-added employees
// first, independent of fetch order.
func sortRows(rows []payrun.PayrollRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].EmployeeID > rows[j].EmployeeID
	})
}

// Filter narrows rows by a case-insensitive search on name or numeric id
// and an optional status filter. "PENDING" is accepted as an alias for
// PENDING_PAYMENT; unrecognized row statuses only match an explicit UNKNOWN
// filter. The result keeps the descending-id order.
func (s *RegistryService) Filter(rows []payrun.PayrollRow, search, statusFilter string) []payrun.PayrollRow {
	search = strings.ToLower(strings.TrimSpace(search))

	var wantStatus payrun.RunStatus
	filterByStatus := statusFilter != ""
	if filterByStatus {
		if strings.EqualFold(strings.TrimSpace(statusFilter), "PENDING") {
			wantStatus = payrun.StatusPendingPayment
		} else {
			wantStatus = payrun.ParseRunStatus(statusFilter)
		}
	}

	out := make([]payrun.PayrollRow, 0, len(rows))
	for _, row := range rows {
		if filterByStatus && row.Status != wantStatus {
			continue
		}
		if search != "" {
			name := strings.ToLower(row.FullName)
			id := strconv.FormatInt(row.EmployeeID, 10)
			if !strings.Contains(name, search) && !strings.Contains(id, search) {
				continue
			}
		}
		out = append(out, row)
	}

	sortRows(out)
	return out
}

// RunOrResume dispatches one row into the Adjustment Stage, seeding the
// draft from the row's persisted bonus/CIT values and the selected payment
// method. A no-op outside the current period.
func (s *RegistryService) RunOrResume(ctx context.Context, sess session.Session, row payrun.PayrollRow, period payrun.Period, paymentMethodID string) (payrun.AdjustmentDraft, error) {
	if !sess.CanProcessPayroll {
		return payrun.AdjustmentDraft{}, payrun.ErrRunNotPermitted
	}
	if !s.IsCurrentPeriod(period) {
		return payrun.AdjustmentDraft{}, payrun.ErrPeriodLocked
	}
	if !row.Status.Adjustable() {
		return payrun.AdjustmentDraft{}, payrun.ErrRowNotAdjustable
	}

	emp := payrun.EmployeeRef{
		ID:          row.EmployeeID,
		FullName:    row.FullName,
		BasicSalary: row.BasicSalary,
	}
	seed := payrun.DraftSeed{
		FestivalBonus:   row.FestivalBonus,
		OtherBonus:      row.OtherBonuses,
		CITContribution: row.CITContribution,
		PaymentMethodID: paymentMethodID,
	}

	return s.adjustment.LoadOrResume(ctx, sess.UserID, emp, period, seed)
}

// Void reverses a paid record. Admin capability only; rejected for any row
// that has not been disbursed. On gateway failure the row is left untouched
// and the error is surfaced.
func (s *RegistryService) Void(ctx context.Context, sess session.Session, payrollID string, status payrun.RunStatus) (payrun.RunStatus, error) {
	if !sess.CanVoid {
		return status, payrun.ErrVoidNotPermitted
	}
	if !status.Voidable() {
		return status, payrun.ErrNotVoidable
	}

	updated, err := s.gateway.Void(ctx, payrollID)
	if err != nil {
		return status, err
	}
	return updated, nil
}

// EmailPayslip triggers a payslip notification, fire-and-forget. At most one
// send per payrollID is in flight; a second invocation while one is pending
// is ignored, not queued.
func (s *RegistryService) EmailPayslip(ctx context.Context, payrollID string) error {
	s.mu.Lock()
	if _, busy := s.emailsInFlight[payrollID]; busy {
		s.mu.Unlock()
		return payrun.ErrEmailInFlight
	}
	s.emailsInFlight[payrollID] = struct{}{}
	s.mu.Unlock()

	// Outlives the request; delivery outcome is reported out-of-band.
	sendCtx := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.emailsInFlight, payrollID)
			s.mu.Unlock()
		}()

		if err := s.gateway.EmailPayslip(sendCtx, payrollID); err != nil {
			s.logger.Warn("payslip email failed", "payroll_id", payrollID, "error", err)
		}
	}()

	return nil
}
