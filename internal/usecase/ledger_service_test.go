package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/flaviojulio/ir-app/internal/domain"
)

type MockOperationRepository struct {
	mock.Mock
}

func (m *MockOperationRepository) Insert(ctx context.Context, op domain.Operation) (int64, error) {
	args := m.Called(ctx, op)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOperationRepository) Get(ctx context.Context, id, userID int64) (domain.Operation, error) {
	args := m.Called(ctx, id, userID)
	return args.Get(0).(domain.Operation), args.Error(1)
}

func (m *MockOperationRepository) List(ctx context.Context, userID int64) ([]domain.Operation, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Operation), args.Error(1)
}

func (m *MockOperationRepository) Update(ctx context.Context, op domain.Operation) (bool, error) {
	args := m.Called(ctx, op)
	return args.Bool(0), args.Error(1)
}

func (m *MockOperationRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOperationRepository) DeleteAllForUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockPortfolioRepository struct {
	mock.Mock
}

func (m *MockPortfolioRepository) Upsert(ctx context.Context, userID int64, entry domain.PortfolioEntry) error {
	args := m.Called(ctx, userID, entry)
	return args.Error(0)
}

func (m *MockPortfolioRepository) List(ctx context.Context, userID int64) ([]domain.PortfolioEntry, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.PortfolioEntry), args.Error(1)
}

func (m *MockPortfolioRepository) DeleteAllForUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockMonthlyResultRepository struct {
	mock.Mock
}

func (m *MockMonthlyResultRepository) Upsert(ctx context.Context, result domain.MonthlyResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockMonthlyResultRepository) List(ctx context.Context, userID int64) ([]domain.MonthlyResult, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.MonthlyResult), args.Error(1)
}

func (m *MockMonthlyResultRepository) DeleteAllForUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockClosedPositionRepository struct {
	mock.Mock
}

func (m *MockClosedPositionRepository) Clear(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockClosedPositionRepository) SaveAll(ctx context.Context, positions []domain.ClosedPosition) error {
	args := m.Called(ctx, positions)
	return args.Error(0)
}

func (m *MockClosedPositionRepository) List(ctx context.Context, userID int64) ([]domain.ClosedPosition, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.ClosedPosition), args.Error(1)
}

type MockMaintenanceRepository struct {
	mock.Mock
}

func (m *MockMaintenanceRepository) WipeEngineData(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type ledgerMocks struct {
	operations  *MockOperationRepository
	portfolio   *MockPortfolioRepository
	monthly     *MockMonthlyResultRepository
	closed      *MockClosedPositionRepository
	maintenance *MockMaintenanceRepository
}

func newTestLedgerService(t *testing.T) (*LedgerService, ledgerMocks) {
	t.Helper()
	mocks := ledgerMocks{
		operations:  new(MockOperationRepository),
		portfolio:   new(MockPortfolioRepository),
		monthly:     new(MockMonthlyResultRepository),
		closed:      new(MockClosedPositionRepository),
		maintenance: new(MockMaintenanceRepository),
	}
	service, err := NewLedgerService(mocks.operations, mocks.portfolio, mocks.monthly, mocks.closed, mocks.maintenance)
	require.NoError(t, err)
	return service, mocks
}

func (m ledgerMocks) expectRecompute(userID int64, history []domain.Operation) {
	m.operations.On("List", mock.Anything, userID).Return(history, nil)
	m.portfolio.On("DeleteAllForUser", mock.Anything, userID).Return(nil)
	m.portfolio.On("Upsert", mock.Anything, userID, mock.Anything).Return(nil)
	m.closed.On("Clear", mock.Anything, userID).Return(nil)
	m.closed.On("SaveAll", mock.Anything, mock.Anything).Return(nil)
	m.monthly.On("DeleteAllForUser", mock.Anything, userID).Return(nil)
	m.monthly.On("Upsert", mock.Anything, mock.Anything).Return(nil)
}

func TestCreateOperationRunsRecompute(t *testing.T) {
	service, mocks := newTestLedgerService(t)

	buy := op(0, day(2025, 1, 10), "petr4 ", domain.OperationSideBuy, 100, 28.50, 5.20)
	stored := buy
	stored.ID = 42
	stored.Ticker = "PETR4"

	mocks.operations.On("Insert", mock.Anything, mock.MatchedBy(func(o domain.Operation) bool {
		// Ticker is normalized before it reaches the repository.
		return o.Ticker == "PETR4" && o.UserID == 1
	})).Return(int64(42), nil)
	mocks.expectRecompute(1, []domain.Operation{stored})

	id, err := service.CreateOperation(context.Background(), buy)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	mocks.portfolio.AssertCalled(t, "DeleteAllForUser", mock.Anything, int64(1))
	mocks.closed.AssertCalled(t, "Clear", mock.Anything, int64(1))
	mocks.monthly.AssertCalled(t, "DeleteAllForUser", mock.Anything, int64(1))
}

func TestCreateOperationRejectsInvalidInput(t *testing.T) {
	service, mocks := newTestLedgerService(t)

	bad := op(0, day(2025, 1, 10), "PETR4", "hold", 100, 28.50, 0)
	_, err := service.CreateOperation(context.Background(), bad)
	require.Error(t, err)

	negativeQty := op(0, day(2025, 1, 10), "PETR4", domain.OperationSideBuy, -5, 28.50, 0)
	_, err = service.CreateOperation(context.Background(), negativeQty)
	require.Error(t, err)

	mocks.operations.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestDeleteOperationNotFoundSkipsRecompute(t *testing.T) {
	service, mocks := newTestLedgerService(t)

	mocks.operations.On("Delete", mock.Anything, int64(99), int64(1)).Return(false, nil)

	ok, err := service.DeleteOperation(context.Background(), 99, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	mocks.operations.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestImportOperationsRecomputesOnce(t *testing.T) {
	service, mocks := newTestLedgerService(t)

	ops := []domain.Operation{
		op(0, day(2025, 1, 10), "PETR4", domain.OperationSideBuy, 100, 28.50, 5.20),
		op(0, day(2025, 1, 15), "PETR4", domain.OperationSideSell, 50, 30.00, 3.10),
	}

	mocks.operations.On("Insert", mock.Anything, mock.Anything).Return(int64(1), nil)
	mocks.expectRecompute(1, ops)

	count, err := service.ImportOperations(context.Background(), 1, ops)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	mocks.operations.AssertNumberOfCalls(t, "Insert", 2)
	mocks.operations.AssertNumberOfCalls(t, "List", 1)
}

func TestOverridePortfolioEntryValidation(t *testing.T) {
	service, mocks := newTestLedgerService(t)

	err := service.OverridePortfolioEntry(context.Background(), 1, domain.PortfolioEntry{
		Ticker: "PETR4", Quantity: 0, AveragePrice: 10.00,
	})
	require.Error(t, err)

	err = service.OverridePortfolioEntry(context.Background(), 1, domain.PortfolioEntry{
		Ticker: "PETR4", Quantity: -5, AveragePrice: 10.00,
	})
	require.Error(t, err)

	mocks.portfolio.On("Upsert", mock.Anything, int64(1), mock.MatchedBy(func(e domain.PortfolioEntry) bool {
		return e.Ticker == "PETR4" && e.TotalCost == 500.00
	})).Return(nil)

	err = service.OverridePortfolioEntry(context.Background(), 1, domain.PortfolioEntry{
		Ticker: "petr4", Quantity: 50, AveragePrice: 10.00,
	})
	require.NoError(t, err)
	mocks.portfolio.AssertExpectations(t)
}

func TestDARFsOnlyMonthsWithPayable(t *testing.T) {
	service, mocks := newTestLedgerService(t)

	mocks.monthly.On("List", mock.Anything, int64(1)).Return([]domain.MonthlyResult{
		{Month: "2025-01"},
		{Month: "2025-02", DARF: &domain.DARF{Code: domain.DARFCode, Period: "2025-02", Amount: 6.00}},
		{Month: "2025-03", DARF: &domain.DARF{Code: domain.DARFCode, Period: "2025-03", Amount: 0}},
	}, nil)

	darfs, err := service.DARFs(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, darfs, 1)
	assert.Equal(t, "2025-02", darfs[0].Period)
}

func TestClosedPositionsSummary(t *testing.T) {
	service, mocks := newTestLedgerService(t)

	mocks.closed.On("List", mock.Anything, int64(1)).Return([]domain.ClosedPosition{
		{Ticker: "PETR4", Result: 100, DayTrade: false},
		{Ticker: "PETR4", Result: -40, DayTrade: false},
		{Ticker: "VALE3", Result: 190, DayTrade: true},
	}, nil)

	summary, err := service.ClosedPositionsSummary(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalPositions)
	assert.InDelta(t, 250.00, summary.TotalResult, 1e-9)
	assert.Equal(t, 1, summary.DayTradeCount)
	assert.InDelta(t, 190.00, summary.DayTradeResult, 1e-9)
	assert.Equal(t, 2, summary.SwingCount)
	assert.InDelta(t, 60.00, summary.SwingResult, 1e-9)

	require.Len(t, summary.TopGains, 2)
	assert.InDelta(t, 190.00, summary.TopGains[0].Result, 1e-9)
	require.Len(t, summary.TopLosses, 1)

	petr := summary.ByTicker["PETR4"]
	assert.Equal(t, 2, petr.Positions)
	assert.Equal(t, 1, petr.Winning)
	assert.Equal(t, 1, petr.Losing)
}

func TestRecomputeScopedToUser(t *testing.T) {
	service, mocks := newTestLedgerService(t)

	history := []domain.Operation{
		op(1, day(2025, 1, 10), "PETR4", domain.OperationSideBuy, 100, 28.50, 5.20),
	}
	for i := range history {
		history[i].UserID = 7
	}
	mocks.expectRecompute(7, history)

	require.NoError(t, service.Recompute(context.Background(), 7))

	// Every write in the pipeline carries the caller's user id.
	mocks.portfolio.AssertCalled(t, "DeleteAllForUser", mock.Anything, int64(7))
	mocks.portfolio.AssertCalled(t, "Upsert", mock.Anything, int64(7), mock.Anything)
	mocks.closed.AssertCalled(t, "Clear", mock.Anything, int64(7))
	mocks.monthly.AssertCalled(t, "DeleteAllForUser", mock.Anything, int64(7))
}

func TestResetWipesEngineData(t *testing.T) {
	service, mocks := newTestLedgerService(t)

	mocks.maintenance.On("WipeEngineData", mock.Anything).Return(nil)
	require.NoError(t, service.Reset(context.Background()))
	mocks.maintenance.AssertExpectations(t)
}
