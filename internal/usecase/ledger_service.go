package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/flaviojulio/ir-app/internal/domain"
)

const summaryTopSize = 5

// LedgerService owns the operation history and everything derived from it.
// Every mutation runs the full recompute pipeline before returning: portfolio
// rebuild, FIFO matching, monthly tax aggregation. There is no incremental
// path; derived state is always a function of the complete history.
type LedgerService struct {
	operations  domain.OperationRepository
	portfolio   domain.PortfolioRepository
	monthly     domain.MonthlyResultRepository
	closed      domain.ClosedPositionRepository
	maintenance domain.MaintenanceRepository
}

func NewLedgerService(
	operations domain.OperationRepository,
	portfolio domain.PortfolioRepository,
	monthly domain.MonthlyResultRepository,
	closed domain.ClosedPositionRepository,
	maintenance domain.MaintenanceRepository,
) (*LedgerService, error) {
	if operations == nil {
		return nil, errors.New("operation repository required")
	}
	if portfolio == nil {
		return nil, errors.New("portfolio repository required")
	}
	if monthly == nil {
		return nil, errors.New("monthly result repository required")
	}
	if closed == nil {
		return nil, errors.New("closed position repository required")
	}
	return &LedgerService{
		operations:  operations,
		portfolio:   portfolio,
		monthly:     monthly,
		closed:      closed,
		maintenance: maintenance,
	}, nil
}

func validateOperation(op domain.Operation) error {
	if op.UserID == 0 {
		return errors.New("user id required")
	}
	if op.Ticker == "" {
		return errors.New("ticker required")
	}
	if op.Side != domain.OperationSideBuy && op.Side != domain.OperationSideSell {
		return fmt.Errorf("unknown operation side %q", op.Side)
	}
	if op.Quantity <= 0 {
		return errors.New("quantity must be positive")
	}
	if op.UnitPrice <= 0 {
		return errors.New("unit price must be positive")
	}
	if op.Fees < 0 {
		return errors.New("fees cannot be negative")
	}
	if op.TradeDate.IsZero() {
		return errors.New("trade date required")
	}
	return nil
}

func normalizeOperation(op domain.Operation) domain.Operation {
	op.Ticker = domain.NormalizeTicker(op.Ticker)
	op.TradeDate = domain.DateOnly(op.TradeDate)
	return op
}

// CreateOperation records a single operation and recomputes derived state.
func (s *LedgerService) CreateOperation(ctx context.Context, op domain.Operation) (int64, error) {
	op = normalizeOperation(op)
	if err := validateOperation(op); err != nil {
		return 0, err
	}

	id, err := s.operations.Insert(ctx, op)
	if err != nil {
		return 0, fmt.Errorf("insert operation: %w", err)
	}

	return id, s.Recompute(ctx, op.UserID)
}

// ImportOperations bulk-inserts operations and recomputes once at the end.
func (s *LedgerService) ImportOperations(ctx context.Context, userID int64, ops []domain.Operation) (int, error) {
	if len(ops) == 0 {
		return 0, errors.New("no operations to import")
	}

	for i, op := range ops {
		op.UserID = userID
		op = normalizeOperation(op)
		if err := validateOperation(op); err != nil {
			return 0, fmt.Errorf("operation %d: %w", i+1, err)
		}
		if _, err := s.operations.Insert(ctx, op); err != nil {
			return 0, fmt.Errorf("insert operation %d: %w", i+1, err)
		}
	}

	return len(ops), s.Recompute(ctx, userID)
}

// UpdateOperation replaces an operation's fields. Returns false when the id
// does not belong to the user.
func (s *LedgerService) UpdateOperation(ctx context.Context, op domain.Operation) (bool, error) {
	op = normalizeOperation(op)
	if err := validateOperation(op); err != nil {
		return false, err
	}

	ok, err := s.operations.Update(ctx, op)
	if err != nil || !ok {
		return ok, err
	}
	return true, s.Recompute(ctx, op.UserID)
}

// DeleteOperation removes an operation. Returns false when the id does not
// belong to the user; that outcome is a no-op, not an error.
func (s *LedgerService) DeleteOperation(ctx context.Context, id, userID int64) (bool, error) {
	ok, err := s.operations.Delete(ctx, id, userID)
	if err != nil || !ok {
		return ok, err
	}
	return true, s.Recompute(ctx, userID)
}

func (s *LedgerService) ListOperations(ctx context.Context, userID int64) ([]domain.Operation, error) {
	return s.operations.List(ctx, userID)
}

// Recompute re-derives portfolio, closed positions, and monthly results from
// the full history, in that order.
func (s *LedgerService) Recompute(ctx context.Context, userID int64) error {
	ops, err := s.operations.List(ctx, userID)
	if err != nil {
		return fmt.Errorf("list operations: %w", err)
	}

	if err := s.portfolio.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("clear portfolio: %w", err)
	}
	for _, entry := range RebuildPortfolio(ops) {
		if err := s.portfolio.Upsert(ctx, userID, entry); err != nil {
			return fmt.Errorf("save portfolio entry %s: %w", entry.Ticker, err)
		}
	}

	if err := s.closed.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear closed positions: %w", err)
	}
	if err := s.closed.SaveAll(ctx, MatchClosedPositions(ops)); err != nil {
		return fmt.Errorf("save closed positions: %w", err)
	}

	if err := s.monthly.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("clear monthly results: %w", err)
	}
	for _, result := range AggregateMonthly(ops) {
		result.UserID = userID
		if err := s.monthly.Upsert(ctx, result); err != nil {
			return fmt.Errorf("save monthly result %s: %w", result.Month, err)
		}
	}

	return nil
}

func (s *LedgerService) Portfolio(ctx context.Context, userID int64) ([]domain.PortfolioEntry, error) {
	return s.portfolio.List(ctx, userID)
}

// OverridePortfolioEntry lets the user manually set a ticker's quantity and
// average price; total cost follows from the two. The override lasts until
// the next recompute.
func (s *LedgerService) OverridePortfolioEntry(ctx context.Context, userID int64, entry domain.PortfolioEntry) error {
	entry.Ticker = domain.NormalizeTicker(entry.Ticker)
	if entry.Ticker == "" {
		return errors.New("ticker required")
	}
	if entry.Quantity < 0 {
		return errors.New("quantity cannot be negative")
	}
	if entry.AveragePrice < 0 {
		return errors.New("average price cannot be negative")
	}
	if entry.Quantity == 0 && entry.AveragePrice != 0 {
		return errors.New("average price must be zero when quantity is zero")
	}
	entry.TotalCost = float64(entry.Quantity) * entry.AveragePrice
	return s.portfolio.Upsert(ctx, userID, entry)
}

func (s *LedgerService) MonthlyResults(ctx context.Context, userID int64) ([]domain.MonthlyResult, error) {
	return s.monthly.List(ctx, userID)
}

// DARFs returns the payment slips of months with positive day-trade payable.
func (s *LedgerService) DARFs(ctx context.Context, userID int64) ([]domain.DARF, error) {
	results, err := s.monthly.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	darfs := make([]domain.DARF, 0)
	for _, result := range results {
		if result.DARF != nil && result.DARF.Amount > 0 {
			darfs = append(darfs, *result.DARF)
		}
	}
	return darfs, nil
}

func (s *LedgerService) ClosedPositions(ctx context.Context, userID int64) ([]domain.ClosedPosition, error) {
	return s.closed.List(ctx, userID)
}

// ClosedPositionsSummary aggregates the user's closed positions.
func (s *LedgerService) ClosedPositionsSummary(ctx context.Context, userID int64) (domain.ClosedPositionsSummary, error) {
	positions, err := s.closed.List(ctx, userID)
	if err != nil {
		return domain.ClosedPositionsSummary{}, err
	}

	summary := domain.ClosedPositionsSummary{
		TotalPositions: len(positions),
		ByTicker:       make(map[string]domain.TickerSummary),
	}

	for _, pos := range positions {
		summary.TotalResult += pos.Result
		if pos.DayTrade {
			summary.DayTradeCount++
			summary.DayTradeResult += pos.Result
		} else {
			summary.SwingCount++
			summary.SwingResult += pos.Result
		}

		ticker := summary.ByTicker[pos.Ticker]
		ticker.Positions++
		ticker.TotalResult += pos.Result
		if pos.Result > 0 {
			ticker.Winning++
		} else if pos.Result < 0 {
			ticker.Losing++
		}
		summary.ByTicker[pos.Ticker] = ticker
	}

	ranked := make([]domain.ClosedPosition, len(positions))
	copy(ranked, positions)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Result > ranked[j].Result })

	summary.TopGains = make([]domain.ClosedPosition, 0, summaryTopSize)
	for _, pos := range ranked {
		if pos.Result <= 0 || len(summary.TopGains) == summaryTopSize {
			break
		}
		summary.TopGains = append(summary.TopGains, pos)
	}

	summary.TopLosses = make([]domain.ClosedPosition, 0, summaryTopSize)
	for i := len(ranked) - 1; i >= 0; i-- {
		if ranked[i].Result >= 0 || len(summary.TopLosses) == summaryTopSize {
			break
		}
		summary.TopLosses = append(summary.TopLosses, ranked[i])
	}

	return summary, nil
}

// Reset wipes every user's operations and derived data.
func (s *LedgerService) Reset(ctx context.Context) error {
	if s.maintenance == nil {
		return errors.New("maintenance repository required")
	}
	return s.maintenance.WipeEngineData(ctx)
}
