package usecase

import (
	"math"
	"sort"
	"time"

	"github.com/flaviojulio/ir-app/internal/domain"
)

const monthLayout = "2006-01"

type monthBucket struct {
	swingSales float64
	swingCost  float64
	daySales   float64
	dayCost    float64
	dayIRRF    float64
}

// AggregateMonthly folds a user's full operation history into one tax result
// per calendar month, in chronological order. Portfolio average-cost state is
// carried through the same pass, so each swing sell's cost basis uses the
// average price in effect right before that sell. Loss carry-forward is
// tracked separately for the swing and day-trade streams and only makes sense
// when months are processed oldest first, which is why this always starts
// from the beginning of the history.
func AggregateMonthly(ops []domain.Operation) []domain.MonthlyResult {
	sorted := sortedOperations(ops)

	months := make(map[string][]domain.Operation)
	for _, op := range sorted {
		key := op.TradeDate.Format(monthLayout)
		months[key] = append(months[key], op)
	}

	monthKeys := make([]string, 0, len(months))
	for key := range months {
		monthKeys = append(monthKeys, key)
	}
	sort.Strings(monthKeys)

	book := newPortfolioBook()
	var swingLossCarry, dayLossCarry float64

	results := make([]domain.MonthlyResult, 0, len(monthKeys))
	for _, month := range monthKeys {
		bucket := aggregateMonth(months[month], book)

		swingNet := bucket.swingSales - bucket.swingCost
		dayNet := bucket.daySales - bucket.dayCost

		exempt := bucket.swingSales <= domain.SwingExemptionLimit

		swingNet, swingLossCarry = applyLossCarry(swingNet, swingLossCarry)
		dayNet, dayLossCarry = applyLossCarry(dayNet, dayLossCarry)

		// Exempt months owe no swing tax regardless of gain.
		swingTaxDue := 0.0
		if !exempt {
			swingTaxDue = math.Max(0, swingNet*domain.SwingTaxRate)
		}

		dayTaxDue := math.Max(0, dayNet*domain.DayTradeTaxRate)
		dayPayable := math.Max(0, dayTaxDue-bucket.dayIRRF)

		result := domain.MonthlyResult{
			UserID:         userIDOf(months[month]),
			Month:          month,
			SwingSales:     bucket.swingSales,
			SwingCost:      bucket.swingCost,
			SwingNetGain:   swingNet,
			SwingExempt:    exempt,
			SwingTaxDue:    swingTaxDue,
			DayNetGain:     dayNet,
			DayTaxDue:      dayTaxDue,
			DayWithheld:    bucket.dayIRRF,
			DayPayable:     dayPayable,
			SwingLossCarry: swingLossCarry,
			DayLossCarry:   dayLossCarry,
		}

		if dayPayable > 0 {
			result.DARF = &domain.DARF{
				Code:    domain.DARFCode,
				Period:  month,
				Amount:  dayPayable,
				DueDate: darfDueDate(month),
			}
		}

		results = append(results, result)
	}

	return results
}

// aggregateMonth walks one month's operations day by day, splitting each day
// into day-trade and swing buckets, and advances the portfolio fold.
func aggregateMonth(monthOps []domain.Operation, book *portfolioBook) monthBucket {
	days := make(map[string][]domain.Operation)
	for _, op := range monthOps {
		key := op.TradeDate.Format(time.DateOnly)
		days[key] = append(days[key], op)
	}

	dayKeys := make([]string, 0, len(days))
	for key := range days {
		dayKeys = append(dayKeys, key)
	}
	sort.Strings(dayKeys)

	var bucket monthBucket
	for _, day := range dayKeys {
		dayOps := days[day]
		dayTrades := DayTradeTickers(dayOps)

		for _, op := range dayOps {
			value := op.GrossValue()

			if dayTrades[op.Ticker] {
				if op.Side == domain.OperationSideBuy {
					bucket.dayCost += value + op.Fees
				} else {
					bucket.daySales += value - op.Fees
					bucket.dayIRRF += value * domain.DayTradeWithholdingRate
				}
			} else if op.Side == domain.OperationSideSell {
				// Cost of goods sold at the average price before the sell.
				bucket.swingSales += value - op.Fees
				bucket.swingCost += float64(op.Quantity) * book.averagePrice(op.Ticker)
			}

			// Every operation advances the fold, day trades included, so
			// the aggregator's view matches the portfolio rebuilder's.
			book.apply(op)
		}
	}

	return bucket
}

// applyLossCarry offsets a month's net gain against the stream's accumulated
// loss. A losing month adds to the carry and reports zero taxable gain.
func applyLossCarry(netGain, carry float64) (taxable, newCarry float64) {
	if carry > 0 && netGain > 0 {
		offset := math.Min(carry, netGain)
		return netGain - offset, carry - offset
	}
	if netGain < 0 {
		return 0, carry + math.Abs(netGain)
	}
	return netGain, carry
}

// darfDueDate is the last business day of the month following the given
// competência. Only weekends are adjusted for; holidays are not considered.
func darfDueDate(month string) time.Time {
	competencia, err := time.Parse(monthLayout, month)
	if err != nil {
		return time.Time{}
	}

	// Day zero of month+2 is the last day of month+1.
	due := time.Date(competencia.Year(), competencia.Month()+2, 0, 0, 0, 0, 0, time.UTC)
	for due.Weekday() == time.Saturday || due.Weekday() == time.Sunday {
		due = due.AddDate(0, 0, -1)
	}
	return due
}

func userIDOf(ops []domain.Operation) int64 {
	if len(ops) == 0 {
		return 0
	}
	return ops[0].UserID
}
