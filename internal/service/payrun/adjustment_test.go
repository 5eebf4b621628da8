package payrun

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payrollhq/payrun-backend-go/internal/domain/payrun"
	"github.com/payrollhq/payrun-backend-go/internal/pkg/validator"
	"github.com/payrollhq/payrun-backend-go/internal/repository/memory"
)

// stubGateway is a programmable in-process stand-in for the calculation
// service. Shared by the service tests in this package.
type stubGateway struct {
	rows        []payrun.PayrollRow
	rowsErr     error
	methods     []payrun.PaymentMethod
	methodsErr  error
	preview     payrun.PreviewResult
	previewErr  error
	payrollID   string
	processErr  error
	handoff     payrun.DisbursementHandoff
	disburseErr error
	voidStatus  payrun.RunStatus
	voidErr     error
	emailErr    error
	history     []payrun.HistoryRecord
	historyErr  error

	mu            sync.Mutex
	previewCalls  int
	processCalls  int
	disburseCalls int
	emailCalls    []string
	lastProcessed payrun.AdjustmentDraft

	emailStarted chan struct{}
	emailRelease chan struct{}
}

func (g *stubGateway) PayrollRows(ctx context.Context, month, year int) ([]payrun.PayrollRow, error) {
	return g.rows, g.rowsErr
}

func (g *stubGateway) PaymentMethods(ctx context.Context) ([]payrun.PaymentMethod, error) {
	return g.methods, g.methodsErr
}

func (g *stubGateway) Preview(ctx context.Context, draft payrun.AdjustmentDraft) (payrun.PreviewResult, error) {
	g.mu.Lock()
	g.previewCalls++
	g.mu.Unlock()
	return g.preview, g.previewErr
}

func (g *stubGateway) Process(ctx context.Context, draft payrun.AdjustmentDraft) (string, error) {
	g.mu.Lock()
	g.processCalls++
	g.lastProcessed = draft
	g.mu.Unlock()
	if g.processErr != nil {
		return "", g.processErr
	}
	return g.payrollID, nil
}

func (g *stubGateway) InitiateDisbursement(ctx context.Context, payrollID string) (payrun.DisbursementHandoff, error) {
	g.mu.Lock()
	g.disburseCalls++
	g.mu.Unlock()
	if g.disburseErr != nil {
		return payrun.DisbursementHandoff{}, g.disburseErr
	}
	return g.handoff, nil
}

func (g *stubGateway) Void(ctx context.Context, payrollID string) (payrun.RunStatus, error) {
	if g.voidErr != nil {
		return payrun.StatusUnknown, g.voidErr
	}
	return g.voidStatus, nil
}

func (g *stubGateway) EmailPayslip(ctx context.Context, payrollID string) error {
	g.mu.Lock()
	g.emailCalls = append(g.emailCalls, payrollID)
	g.mu.Unlock()

	if g.emailStarted != nil {
		g.emailStarted <- struct{}{}
	}
	if g.emailRelease != nil {
		<-g.emailRelease
	}
	return g.emailErr
}

func (g *stubGateway) History(ctx context.Context, employeeID int64) ([]payrun.HistoryRecord, error) {
	return g.history, g.historyErr
}

// March 2026 is the current period for every test in this package.
var testNow = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

var currentPeriod = payrun.Period{Month: 3, Year: 2026}

func newAdjustmentFixture(gateway *stubGateway) (*AdjustmentService, *memory.DraftStore) {
	store := memory.NewDraftStore()
	svc := NewAdjustmentService(store, gateway).WithClock(fixedClock)
	return svc, store
}

func testEmployee() payrun.EmployeeRef {
	return payrun.EmployeeRef{
		ID:          42,
		FullName:    "Anita Rai",
		BasicSalary: decimal.NewFromInt(50000),
	}
}

func testSeed() payrun.DraftSeed {
	return payrun.DraftSeed{
		FestivalBonus:   decimal.NewFromInt(5000),
		OtherBonus:      decimal.Zero,
		CITContribution: decimal.NewFromInt(2000),
	}
}

func TestAdjustmentService_LoadOrResume_CreatesFreshDraft(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newAdjustmentFixture(&stubGateway{})

	draft, err := svc.LoadOrResume(ctx, "sess-1", testEmployee(), currentPeriod, testSeed())

	require.NoError(t, err)
	assert.NotEmpty(t, draft.ID)
	assert.Equal(t, "sess-1", draft.SessionID)
	assert.Equal(t, int64(42), draft.Employee.ID)
	assert.True(t, draft.FestivalBonus.Equal(decimal.NewFromInt(5000)))
	assert.True(t, draft.CITContribution.Equal(decimal.NewFromInt(2000)))
	assert.Empty(t, draft.Components)

	stored, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, draft.ID, stored.ID)
}

func TestAdjustmentService_LoadOrResume_ResumesVerbatim(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newAdjustmentFixture(&stubGateway{})

	first, err := svc.LoadOrResume(ctx, "sess-1", testEmployee(), currentPeriod, testSeed())
	require.NoError(t, err)

	_, err = svc.AddComponent(ctx, "sess-1", payrun.AddComponentRequest{
		ComponentID: "comp-ot",
		Label:       "Overtime",
		Amount:      decimal.NewFromInt(1500),
		Kind:        "EARNING",
	})
	require.NoError(t, err)

	// Navigating away and re-selecting the same employee must restore the
	// queued component, not re-seed from the registry row.
	resumed, err := svc.LoadOrResume(ctx, "sess-1", testEmployee(), currentPeriod, payrun.DraftSeed{})
	require.NoError(t, err)
	assert.Equal(t, first.ID, resumed.ID)
	require.Len(t, resumed.Components, 1)
	assert.Equal(t, "comp-ot", resumed.Components[0].ComponentID)
	assert.True(t, resumed.FestivalBonus.Equal(decimal.NewFromInt(5000)))
}

func TestAdjustmentService_LoadOrResume_AnotherDraftInProgress(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newAdjustmentFixture(&stubGateway{})

	_, err := svc.LoadOrResume(ctx, "sess-1", testEmployee(), currentPeriod, testSeed())
	require.NoError(t, err)

	other := payrun.EmployeeRef{ID: 99, FullName: "Bikash Thapa", BasicSalary: decimal.NewFromInt(60000)}
	_, err = svc.LoadOrResume(ctx, "sess-1", other, currentPeriod, payrun.DraftSeed{})

	assert.ErrorIs(t, err, payrun.ErrDraftInProgress)
}

func TestAdjustmentService_LoadOrResume_PeriodLocked(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newAdjustmentFixture(&stubGateway{})

	past := payrun.Period{Month: 2, Year: 2026}
	_, err := svc.LoadOrResume(ctx, "sess-1", testEmployee(), past, testSeed())

	assert.ErrorIs(t, err, payrun.ErrPeriodLocked)
}

func TestAdjustmentService_Active_NoDraft(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newAdjustmentFixture(&stubGateway{})

	_, err := svc.Active(ctx, "sess-empty")

	assert.ErrorIs(t, err, payrun.ErrNoActiveSession)
}

func TestAdjustmentService_AddComponent_RejectsDuplicate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newAdjustmentFixture(&stubGateway{})

	_, err := svc.LoadOrResume(ctx, "sess-1", testEmployee(), currentPeriod, testSeed())
	require.NoError(t, err)

	req := payrun.AddComponentRequest{
		ComponentID: "comp-ot",
		Label:       "Overtime",
		Amount:      decimal.NewFromInt(1500),
		Kind:        "EARNING",
	}
	_, err = svc.AddComponent(ctx, "sess-1", req)
	require.NoError(t, err)

	_, err = svc.AddComponent(ctx, "sess-1", req)
	assert.ErrorIs(t, err, payrun.ErrDuplicateComponent)

	// The duplicate attempt must not have touched the queue.
	draft, err := svc.Active(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, draft.Components, 1)
}

func TestAdjustmentService_AddComponent_RejectsNonPositiveAmount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newAdjustmentFixture(&stubGateway{})

	_, err := svc.LoadOrResume(ctx, "sess-1", testEmployee(), currentPeriod, testSeed())
	require.NoError(t, err)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-100)} {
		_, err = svc.AddComponent(ctx, "sess-1", payrun.AddComponentRequest{
			ComponentID: "comp-x",
			Label:       "Bad",
			Amount:      amount,
			Kind:        "DEDUCTION",
		})
		assert.ErrorIs(t, err, payrun.ErrInvalidAmount)
	}
}

func TestAdjustmentService_AddComponent_RejectsUnknownKind(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newAdjustmentFixture(&stubGateway{})

	_, err := svc.AddComponent(ctx, "sess-1", payrun.AddComponentRequest{
		ComponentID: "comp-x",
		Amount:      decimal.NewFromInt(100),
		Kind:        "BONUS",
	})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
}

func TestAdjustmentService_RemoveComponent_AbsentIsNoop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newAdjustmentFixture(&stubGateway{})

	_, err := svc.LoadOrResume(ctx, "sess-1", testEmployee(), currentPeriod, testSeed())
	require.NoError(t, err)

	draft, err := svc.RemoveComponent(ctx, "sess-1", "never-added")

	assert.NoError(t, err)
	assert.Empty(t, draft.Components)
}

func TestAdjustmentService_UpdateBaseInput_AppliesEachField(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newAdjustmentFixture(&stubGateway{})

	_, err := svc.LoadOrResume(ctx, "sess-1", testEmployee(), currentPeriod, testSeed())
	require.NoError(t, err)

	cases := []struct {
		field string
		value decimal.Decimal
	}{
		{payrun.FieldFestivalBonus, decimal.NewFromInt(7500)},
		{payrun.FieldOtherBonus, decimal.NewFromInt(1200)},
		{payrun.FieldCITContribution, decimal.NewFromInt(3000)},
	}
	for _, tc := range cases {
		_, err = svc.UpdateBaseInput(ctx, "sess-1", payrun.UpdateBaseInputRequest{Field: tc.field, Value: tc.value})
		require.NoError(t, err)
	}

	draft, err := svc.Active(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, draft.FestivalBonus.Equal(decimal.NewFromInt(7500)))
	assert.True(t, draft.OtherBonus.Equal(decimal.NewFromInt(1200)))
	assert.True(t, draft.CITContribution.Equal(decimal.NewFromInt(3000)))
}

func TestAdjustmentService_UpdateBaseInput_RejectsUnknownField(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newAdjustmentFixture(&stubGateway{})

	_, err := svc.UpdateBaseInput(ctx, "sess-1", payrun.UpdateBaseInputRequest{
		Field: "basic_salary",
		Value: decimal.NewFromInt(1),
	})

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
}

func TestAdjustmentService_Discard_ThenFreshDraft(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newAdjustmentFixture(&stubGateway{})

	first, err := svc.LoadOrResume(ctx, "sess-1", testEmployee(), currentPeriod, testSeed())
	require.NoError(t, err)

	_, err = svc.AddComponent(ctx, "sess-1", payrun.AddComponentRequest{
		ComponentID: "comp-ot",
		Label:       "Overtime",
		Amount:      decimal.NewFromInt(1500),
		Kind:        "EARNING",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Discard(ctx, "sess-1"))

	// Re-selecting the same employee starts clean: new identity, no queue.
	fresh, err := svc.LoadOrResume(ctx, "sess-1", testEmployee(), currentPeriod, testSeed())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, fresh.ID)
	assert.Empty(t, fresh.Components)
}

func TestAdjustmentService_SubmitForPreview_KeepsDraftOnFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gateway := &stubGateway{previewErr: errors.New("calculation engine rejected the request")}
	svc, _ := newAdjustmentFixture(gateway)

	_, err := svc.LoadOrResume(ctx, "sess-1", testEmployee(), currentPeriod, testSeed())
	require.NoError(t, err)

	_, _, err = svc.SubmitForPreview(ctx, "sess-1")
	require.Error(t, err)

	// The staged draft survives a failed submission.
	draft, err := svc.Active(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), draft.Employee.ID)
}

func TestAdjustmentService_SubmitForPreview_SnapshotIsIndependent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gateway := &stubGateway{
		preview: payrun.PreviewResult{NetSalary: decimal.NewFromInt(47500)},
	}
	svc, store := newAdjustmentFixture(gateway)

	_, err := svc.LoadOrResume(ctx, "sess-1", testEmployee(), currentPeriod, testSeed())
	require.NoError(t, err)
	_, err = svc.AddComponent(ctx, "sess-1", payrun.AddComponentRequest{
		ComponentID: "comp-ot",
		Label:       "Overtime",
		Amount:      decimal.NewFromInt(1500),
		Kind:        "EARNING",
	})
	require.NoError(t, err)

	preview, snapshot, err := svc.SubmitForPreview(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, preview.NetSalary.Equal(decimal.NewFromInt(47500)))

	// Mutating the snapshot must not reach the staged draft.
	snapshot.Components[0].Label = "tampered"
	stored, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "Overtime", stored.Components[0].Label)
}
