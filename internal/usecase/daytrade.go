package usecase

import "github.com/flaviojulio/ir-app/internal/domain"

// DayTradeTickers classifies one calendar day's operations: a ticker is a day
// trade that day when it has both buy and sell quantity. The caller is
// expected to pass operations belonging to a single day.
func DayTradeTickers(dayOps []domain.Operation) map[string]bool {
	bought := make(map[string]int64)
	sold := make(map[string]int64)
	for _, op := range dayOps {
		switch op.Side {
		case domain.OperationSideBuy:
			bought[op.Ticker] += op.Quantity
		case domain.OperationSideSell:
			sold[op.Ticker] += op.Quantity
		}
	}

	dayTrades := make(map[string]bool)
	for ticker, qty := range bought {
		if qty > 0 && sold[ticker] > 0 {
			dayTrades[ticker] = true
		}
	}
	return dayTrades
}
