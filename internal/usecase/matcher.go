package usecase

import (
	"sort"

	"github.com/flaviojulio/ir-app/internal/domain"
)

// fragment is the still-unmatched portion of an operation sitting in one of
// the FIFO queues. The operation itself is never mutated; fee proration is
// always computed against its original quantity.
type fragment struct {
	op        domain.Operation
	remaining int64
}

// MatchClosedPositions pairs buy and sell operations into closed positions
// using FIFO lot matching, independently per ticker. Operations are processed
// in (trade date, id) order; id breaks ties so same-day matching is
// deterministic. Unmatched remainders are open positions and produce no
// output.
func MatchClosedPositions(ops []domain.Operation) []domain.ClosedPosition {
	byTicker := make(map[string][]domain.Operation)
	for _, op := range ops {
		byTicker[op.Ticker] = append(byTicker[op.Ticker], op)
	}

	tickers := make([]string, 0, len(byTicker))
	for ticker := range byTicker {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	var closed []domain.ClosedPosition
	for _, ticker := range tickers {
		closed = append(closed, matchTicker(byTicker[ticker])...)
	}
	return closed
}

func matchTicker(ops []domain.Operation) []domain.ClosedPosition {
	sorted := sortedOperations(ops)

	var closed []domain.ClosedPosition
	var pendingBuys, pendingSells []*fragment

	for _, op := range sorted {
		remaining := op.Quantity

		switch op.Side {
		case domain.OperationSideBuy:
			// A buy first covers open shorts, oldest sell first.
			for remaining > 0 && len(pendingSells) > 0 {
				open := pendingSells[0]
				matched := minInt64(remaining, open.remaining)
				closed = append(closed, buildClosedPosition(open.op, op, matched, domain.CloseDirectionShort))
				open.remaining -= matched
				remaining -= matched
				if open.remaining == 0 {
					pendingSells = pendingSells[1:]
				}
			}
			if remaining > 0 {
				pendingBuys = append(pendingBuys, &fragment{op: op, remaining: remaining})
			}

		case domain.OperationSideSell:
			// A sell closes open longs, oldest buy first; any remainder
			// opens a short.
			for remaining > 0 && len(pendingBuys) > 0 {
				open := pendingBuys[0]
				matched := minInt64(remaining, open.remaining)
				closed = append(closed, buildClosedPosition(open.op, op, matched, domain.CloseDirectionLong))
				open.remaining -= matched
				remaining -= matched
				if open.remaining == 0 {
					pendingBuys = pendingBuys[1:]
				}
			}
			if remaining > 0 {
				pendingSells = append(pendingSells, &fragment{op: op, remaining: remaining})
			}
		}
	}

	return closed
}

func buildClosedPosition(openOp, closeOp domain.Operation, quantity int64, direction domain.CloseDirection) domain.ClosedPosition {
	openFees := prorateFees(openOp, quantity)
	closeFees := prorateFees(closeOp, quantity)
	totalFees := openFees + closeFees

	openValue := float64(quantity) * openOp.UnitPrice
	closeValue := float64(quantity) * closeOp.UnitPrice

	var result, costBasis float64
	if direction == domain.CloseDirectionLong {
		result = closeValue - openValue - totalFees
		costBasis = openValue + openFees
	} else {
		// Opening leg is the short sale; profit when the cover is cheaper.
		result = openValue - closeValue - totalFees
		costBasis = closeValue + closeFees
	}

	resultPercent := 0.0
	if costBasis != 0 {
		resultPercent = result / costBasis * 100
	}

	return domain.ClosedPosition{
		UserID:        openOp.UserID,
		Ticker:        openOp.Ticker,
		OpenDate:      openOp.TradeDate,
		CloseDate:     closeOp.TradeDate,
		Direction:     direction,
		Quantity:      quantity,
		OpenPrice:     openOp.UnitPrice,
		ClosePrice:    closeOp.UnitPrice,
		TotalFees:     totalFees,
		Result:        result,
		ResultPercent: resultPercent,
		DayTrade:      openOp.TradeDate.Equal(closeOp.TradeDate),
		RelatedLegs: []domain.OperationLeg{
			{OperationID: openOp.ID, Side: openOp.Side, Date: openOp.TradeDate, Quantity: quantity, UnitPrice: openOp.UnitPrice, Fees: openFees},
			{OperationID: closeOp.ID, Side: closeOp.Side, Date: closeOp.TradeDate, Quantity: quantity, UnitPrice: closeOp.UnitPrice, Fees: closeFees},
		},
	}
}

// prorateFees assigns the share of an operation's fees belonging to a matched
// quantity. Using the original quantity as the denominator makes the shares of
// a fully consumed operation sum back to its total fees.
func prorateFees(op domain.Operation, matched int64) float64 {
	if op.Quantity <= 0 {
		return 0
	}
	return op.Fees * float64(matched) / float64(op.Quantity)
}

// sortedOperations returns a copy ordered by (trade date, id) ascending.
func sortedOperations(ops []domain.Operation) []domain.Operation {
	sorted := make([]domain.Operation, len(ops))
	copy(sorted, ops)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].TradeDate.Equal(sorted[j].TradeDate) {
			return sorted[i].TradeDate.Before(sorted[j].TradeDate)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
