package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flaviojulio/ir-app/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func op(id int64, date time.Time, ticker string, side domain.OperationSide, qty int64, price, fees float64) domain.Operation {
	return domain.Operation{
		ID:        id,
		UserID:    1,
		TradeDate: date,
		Ticker:    ticker,
		Side:      side,
		Quantity:  qty,
		UnitPrice: price,
		Fees:      fees,
	}
}

func TestMatchLongClosedAcrossDays(t *testing.T) {
	ops := []domain.Operation{
		op(1, day(2025, 1, 10), "PETR4", domain.OperationSideBuy, 100, 28.50, 5.20),
		op(2, day(2025, 1, 15), "PETR4", domain.OperationSideSell, 50, 30.00, 3.10),
	}

	closed := MatchClosedPositions(ops)
	require.Len(t, closed, 1)

	pos := closed[0]
	assert.Equal(t, domain.CloseDirectionLong, pos.Direction)
	assert.Equal(t, int64(50), pos.Quantity)
	assert.False(t, pos.DayTrade)
	// Open fees prorated to the matched half; close fees in full.
	assert.InDelta(t, 5.20/2+3.10, pos.TotalFees, 1e-9)
	assert.InDelta(t, 1500.00-1425.00-5.70, pos.Result, 1e-9)
	require.Len(t, pos.RelatedLegs, 2)
	assert.Equal(t, int64(1), pos.RelatedLegs[0].OperationID)
	assert.Equal(t, int64(2), pos.RelatedLegs[1].OperationID)
}

func TestMatchSameDayIsDayTrade(t *testing.T) {
	ops := []domain.Operation{
		op(1, day(2025, 3, 5), "VALE3", domain.OperationSideBuy, 100, 30.00, 5.00),
		op(2, day(2025, 3, 5), "VALE3", domain.OperationSideSell, 100, 32.00, 5.00),
	}

	closed := MatchClosedPositions(ops)
	require.Len(t, closed, 1)

	pos := closed[0]
	assert.True(t, pos.DayTrade)
	assert.Equal(t, domain.CloseDirectionLong, pos.Direction)
	assert.InDelta(t, 190.00, pos.Result, 1e-9)
}

func TestMatchShortCovered(t *testing.T) {
	ops := []domain.Operation{
		op(1, day(2025, 2, 3), "ITUB4", domain.OperationSideSell, 100, 20.00, 2.00),
		op(2, day(2025, 2, 7), "ITUB4", domain.OperationSideBuy, 100, 18.00, 1.50),
	}

	closed := MatchClosedPositions(ops)
	require.Len(t, closed, 1)

	pos := closed[0]
	assert.Equal(t, domain.CloseDirectionShort, pos.Direction)
	assert.False(t, pos.DayTrade)
	assert.InDelta(t, 2000.00-1800.00-3.50, pos.Result, 1e-9)
	assert.Equal(t, day(2025, 2, 3), pos.OpenDate)
	assert.Equal(t, day(2025, 2, 7), pos.CloseDate)
}

func TestPartialFillsConserveQuantityAndFees(t *testing.T) {
	ops := []domain.Operation{
		op(1, day(2025, 1, 2), "BBAS3", domain.OperationSideBuy, 100, 10.00, 10.00),
		op(2, day(2025, 1, 3), "BBAS3", domain.OperationSideSell, 30, 11.00, 3.00),
		op(3, day(2025, 1, 6), "BBAS3", domain.OperationSideSell, 30, 12.00, 3.00),
		op(4, day(2025, 1, 9), "BBAS3", domain.OperationSideSell, 40, 13.00, 4.00),
	}

	closed := MatchClosedPositions(ops)
	require.Len(t, closed, 3)

	var matchedQty int64
	var openLegFees float64
	for _, pos := range closed {
		matchedQty += pos.Quantity
		openLegFees += pos.RelatedLegs[0].Fees
	}
	assert.Equal(t, int64(100), matchedQty)
	// The buy is fully consumed, so its prorated shares sum to its fees.
	assert.InDelta(t, 10.00, openLegFees, 1e-9)
}

func TestFIFOTakesOldestLotFirst(t *testing.T) {
	ops := []domain.Operation{
		op(1, day(2025, 1, 2), "WEGE3", domain.OperationSideBuy, 50, 10.00, 0),
		op(2, day(2025, 1, 3), "WEGE3", domain.OperationSideBuy, 50, 20.00, 0),
		op(3, day(2025, 1, 4), "WEGE3", domain.OperationSideSell, 60, 25.00, 0),
	}

	closed := MatchClosedPositions(ops)
	require.Len(t, closed, 2)

	assert.Equal(t, int64(50), closed[0].Quantity)
	assert.InDelta(t, 10.00, closed[0].OpenPrice, 1e-9)
	assert.Equal(t, int64(10), closed[1].Quantity)
	assert.InDelta(t, 20.00, closed[1].OpenPrice, 1e-9)
}

func TestUnmatchedRemainderProducesNoClosure(t *testing.T) {
	ops := []domain.Operation{
		op(1, day(2025, 1, 2), "MGLU3", domain.OperationSideBuy, 100, 3.00, 1.00),
	}
	assert.Empty(t, MatchClosedPositions(ops))
}

func TestTickersMatchIndependently(t *testing.T) {
	ops := []domain.Operation{
		op(1, day(2025, 1, 2), "PETR4", domain.OperationSideBuy, 100, 28.00, 0),
		op(2, day(2025, 1, 3), "VALE3", domain.OperationSideSell, 100, 60.00, 0),
	}
	// A buy in one ticker never pairs with a sell in another.
	assert.Empty(t, MatchClosedPositions(ops))
}

func TestSameDayOrderFollowsInsertionID(t *testing.T) {
	ops := []domain.Operation{
		op(2, day(2025, 1, 2), "PETR4", domain.OperationSideSell, 100, 29.00, 0),
		op(1, day(2025, 1, 2), "PETR4", domain.OperationSideBuy, 100, 28.00, 0),
	}

	closed := MatchClosedPositions(ops)
	require.Len(t, closed, 1)
	// The lower id is processed first: the buy opens, the sell closes.
	assert.Equal(t, domain.CloseDirectionLong, closed[0].Direction)
	assert.True(t, closed[0].DayTrade)
}
