package payrun

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payrollhq/payrun-backend-go/internal/domain/payrun"
	"github.com/payrollhq/payrun-backend-go/internal/domain/session"
)

func newRegistryFixture(gateway *stubGateway) *RegistryService {
	adjustment, _ := newAdjustmentFixture(gateway)
	return NewRegistryService(gateway, adjustment, nil).WithClock(fixedClock)
}

func adminSession() session.Session {
	return session.Session{
		UserID:       "user-admin",
		Role:         session.RoleAdmin,
		Capabilities: session.Resolve(session.RoleAdmin),
	}
}

func accountantSession() session.Session {
	return session.Session{
		UserID:       "user-acct",
		Role:         session.RoleAccountant,
		Capabilities: session.Resolve(session.RoleAccountant),
	}
}

func employeeSession() session.Session {
	return session.Session{
		UserID:       "user-emp",
		Role:         session.RoleEmployee,
		Capabilities: session.Resolve(session.RoleEmployee),
	}
}

func sampleRows() []payrun.PayrollRow {
	return []payrun.PayrollRow{
		{EmployeeID: 7, FullName: "Anita Rai", Status: payrun.StatusPendingPayment, BasicSalary: decimal.NewFromInt(50000)},
		{EmployeeID: 31, FullName: "Bikash Thapa", Status: payrun.StatusPaid, BasicSalary: decimal.NewFromInt(60000)},
		{EmployeeID: 12, FullName: "Clara Shrestha", Status: payrun.StatusReady, BasicSalary: decimal.NewFromInt(55000)},
	}
}

func TestRegistryService_LoadPeriod_SortsRowsByEmployeeIDDescending(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newRegistryFixture(&stubGateway{rows: sampleRows()})

	view, err := svc.LoadPeriod(ctx, 3, 2026)

	require.NoError(t, err)
	assert.False(t, view.Locked)
	require.Len(t, view.Rows, 3)
	assert.Equal(t, int64(31), view.Rows[0].EmployeeID)
	assert.Equal(t, int64(12), view.Rows[1].EmployeeID)
	assert.Equal(t, int64(7), view.Rows[2].EmployeeID)
}

func TestRegistryService_LoadPeriod_PastPeriodIsLocked(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newRegistryFixture(&stubGateway{rows: sampleRows()})

	view, err := svc.LoadPeriod(ctx, 1, 2026)

	require.NoError(t, err)
	assert.True(t, view.Locked)
}

func TestRegistryService_LoadPeriod_RowFailureDegradesToEmpty(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newRegistryFixture(&stubGateway{
		rowsErr: errors.New("upstream timeout"),
		methods: []payrun.PaymentMethod{{ID: "pm-1", Name: "Bank Transfer"}},
	})

	view, err := svc.LoadPeriod(ctx, 3, 2026)

	require.NoError(t, err)
	assert.Empty(t, view.Rows)
	assert.True(t, view.RowsDegraded)
	// Payment methods loaded independently of the row failure.
	require.Len(t, view.PaymentMethods, 1)
}

func TestRegistryService_LoadPeriod_MethodFailureDegradesIndependently(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newRegistryFixture(&stubGateway{
		rows:       sampleRows(),
		methodsErr: errors.New("upstream timeout"),
	})

	view, err := svc.LoadPeriod(ctx, 3, 2026)

	require.NoError(t, err)
	assert.Empty(t, view.PaymentMethods)
	assert.Len(t, view.Rows, 3)
	assert.False(t, view.RowsDegraded)
}

func TestRegistryService_Filter_SearchMatchesNameAndID(t *testing.T) {
	t.Parallel()
	svc := newRegistryFixture(&stubGateway{})
	rows := sampleRows()

	byName := svc.Filter(rows, "anita", "")
	require.Len(t, byName, 1)
	assert.Equal(t, int64(7), byName[0].EmployeeID)

	byID := svc.Filter(rows, "31", "")
	require.Len(t, byID, 1)
	assert.Equal(t, "Bikash Thapa", byID[0].FullName)

	assert.Empty(t, svc.Filter(rows, "zzz", ""))
}

func TestRegistryService_Filter_PendingAliasesPendingPayment(t *testing.T) {
	t.Parallel()
	svc := newRegistryFixture(&stubGateway{})

	out := svc.Filter(sampleRows(), "", "pending")

	require.Len(t, out, 1)
	assert.Equal(t, payrun.StatusPendingPayment, out[0].Status)
}

func TestRegistryService_Filter_UnknownStatusNeedsExplicitFilter(t *testing.T) {
	t.Parallel()
	svc := newRegistryFixture(&stubGateway{})
	rows := append(sampleRows(), payrun.PayrollRow{EmployeeID: 88, FullName: "Dev Gurung", Status: payrun.StatusUnknown})

	// An unrecognized status never leaks into a recognized bucket.
	assert.Len(t, svc.Filter(rows, "", "PAID"), 1)

	unknown := svc.Filter(rows, "", "UNKNOWN")
	require.Len(t, unknown, 1)
	assert.Equal(t, int64(88), unknown[0].EmployeeID)
}

func TestRegistryService_RunOrResume_RequiresProcessCapability(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newRegistryFixture(&stubGateway{})

	row := sampleRows()[0]
	_, err := svc.RunOrResume(ctx, employeeSession(), row, currentPeriod, "")

	assert.ErrorIs(t, err, payrun.ErrRunNotPermitted)
}

func TestRegistryService_RunOrResume_LockedOutsideCurrentPeriod(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newRegistryFixture(&stubGateway{})

	row := sampleRows()[0]
	past := payrun.Period{Month: 12, Year: 2025}
	_, err := svc.RunOrResume(ctx, adminSession(), row, past, "")

	assert.ErrorIs(t, err, payrun.ErrPeriodLocked)
}

func TestRegistryService_RunOrResume_RejectsDisbursedRow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newRegistryFixture(&stubGateway{})

	paid := sampleRows()[1]
	_, err := svc.RunOrResume(ctx, adminSession(), paid, currentPeriod, "")

	assert.ErrorIs(t, err, payrun.ErrRowNotAdjustable)
}

func TestRegistryService_RunOrResume_SeedsDraftFromRow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newRegistryFixture(&stubGateway{})

	row := payrun.PayrollRow{
		EmployeeID:      7,
		FullName:        "Anita Rai",
		BasicSalary:     decimal.NewFromInt(50000),
		FestivalBonus:   decimal.NewFromInt(4000),
		OtherBonuses:    decimal.NewFromInt(500),
		CITContribution: decimal.NewFromInt(2500),
		Status:          payrun.StatusReady,
	}

	draft, err := svc.RunOrResume(ctx, accountantSession(), row, currentPeriod, "pm-1")

	require.NoError(t, err)
	assert.Equal(t, "user-acct", draft.SessionID)
	assert.Equal(t, "Anita Rai", draft.Employee.FullName)
	assert.True(t, draft.FestivalBonus.Equal(decimal.NewFromInt(4000)))
	assert.True(t, draft.OtherBonus.Equal(decimal.NewFromInt(500)))
	assert.True(t, draft.CITContribution.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, "pm-1", draft.PaymentMethodID)
}

func TestRegistryService_Void_RequiresVoidCapability(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newRegistryFixture(&stubGateway{voidStatus: payrun.StatusVoided})

	// Accountants can run payroll but not reverse it.
	_, err := svc.Void(ctx, accountantSession(), "pay-1", payrun.StatusPaid)

	assert.ErrorIs(t, err, payrun.ErrVoidNotPermitted)
}

func TestRegistryService_Void_OnlyPaidRecords(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newRegistryFixture(&stubGateway{voidStatus: payrun.StatusVoided})

	for _, status := range []payrun.RunStatus{payrun.StatusPendingPayment, payrun.StatusReady, payrun.StatusVoided} {
		_, err := svc.Void(ctx, adminSession(), "pay-1", status)
		assert.ErrorIs(t, err, payrun.ErrNotVoidable)
	}
}

func TestRegistryService_Void_Success(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newRegistryFixture(&stubGateway{voidStatus: payrun.StatusVoided})

	updated, err := svc.Void(ctx, adminSession(), "pay-1", payrun.StatusPaid)

	require.NoError(t, err)
	assert.Equal(t, payrun.StatusVoided, updated)
}

func TestRegistryService_Void_GatewayFailureKeepsStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newRegistryFixture(&stubGateway{voidErr: errors.New("void rejected upstream")})

	status, err := svc.Void(ctx, adminSession(), "pay-1", payrun.StatusPaid)

	require.Error(t, err)
	assert.Equal(t, payrun.StatusPaid, status)
}

func TestRegistryService_EmailPayslip_SingleInFlightPerPayroll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gateway := &stubGateway{
		emailStarted: make(chan struct{}, 1),
		emailRelease: make(chan struct{}),
	}
	svc := newRegistryFixture(gateway)

	require.NoError(t, svc.EmailPayslip(ctx, "pay-1"))
	<-gateway.emailStarted

	// Second trigger while the first is pending is dropped, not queued.
	assert.ErrorIs(t, svc.EmailPayslip(ctx, "pay-1"), payrun.ErrEmailInFlight)

	close(gateway.emailRelease)
	require.Eventually(t, func() bool {
		return svc.EmailPayslip(ctx, "pay-1") == nil
	}, time.Second, 10*time.Millisecond)
}

func TestRegistryService_EmailPayslip_DistinctPayrollsRunConcurrently(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gateway := &stubGateway{
		emailStarted: make(chan struct{}, 2),
		emailRelease: make(chan struct{}),
	}
	svc := newRegistryFixture(gateway)

	require.NoError(t, svc.EmailPayslip(ctx, "pay-1"))
	require.NoError(t, svc.EmailPayslip(ctx, "pay-2"))

	<-gateway.emailStarted
	<-gateway.emailStarted
	close(gateway.emailRelease)
}
