package usecase

import (
	"sort"

	"github.com/flaviojulio/ir-app/internal/domain"
)

// portfolioBook is the running weighted-average-cost fold over a user's
// operation history. The same fold backs both the portfolio rebuild and the
// monthly tax aggregation, so swing-trade cost lookups see the average price
// as it stood immediately before each sell.
type portfolioBook struct {
	entries map[string]*domain.PortfolioEntry
}

func newPortfolioBook() *portfolioBook {
	return &portfolioBook{entries: make(map[string]*domain.PortfolioEntry)}
}

func (b *portfolioBook) apply(op domain.Operation) {
	entry, ok := b.entries[op.Ticker]
	if !ok {
		entry = &domain.PortfolioEntry{Ticker: op.Ticker}
		b.entries[op.Ticker] = entry
	}

	switch op.Side {
	case domain.OperationSideBuy:
		entry.Quantity += op.Quantity
		entry.TotalCost += op.GrossValue() + op.Fees
	case domain.OperationSideSell:
		// Cost leaves the book at the average price before this sell.
		costRemoved := 0.0
		if entry.Quantity > 0 {
			costRemoved = entry.AveragePrice * float64(op.Quantity)
		}
		entry.Quantity -= op.Quantity
		entry.TotalCost -= costRemoved
	}

	if entry.Quantity > 0 {
		entry.AveragePrice = entry.TotalCost / float64(entry.Quantity)
	} else {
		// Flat or short: no residual carrying cost.
		entry.TotalCost = 0
		entry.AveragePrice = 0
	}
}

func (b *portfolioBook) averagePrice(ticker string) float64 {
	if entry, ok := b.entries[ticker]; ok {
		return entry.AveragePrice
	}
	return 0
}

func (b *portfolioBook) snapshot() []domain.PortfolioEntry {
	out := make([]domain.PortfolioEntry, 0, len(b.entries))
	for _, entry := range b.entries {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// RebuildPortfolio recomputes every per-ticker position from the full
// operation history. It is a pure function of its input: rerunning it on the
// same history always yields the same entries.
func RebuildPortfolio(ops []domain.Operation) []domain.PortfolioEntry {
	book := newPortfolioBook()
	for _, op := range sortedOperations(ops) {
		book.apply(op)
	}
	return book.snapshot()
}
