package domain

import (
	"strings"
	"time"
)

type OperationSide string

const (
	OperationSideBuy  OperationSide = "buy"
	OperationSideSell OperationSide = "sell"
)

// Operation is a single buy or sell of an equity, as recorded by the user.
// TradeDate carries no time-of-day component; it is normalized to midnight UTC.
type Operation struct {
	ID        int64
	UserID    int64
	TradeDate time.Time
	Ticker    string
	Side      OperationSide
	Quantity  int64
	UnitPrice float64
	Fees      float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GrossValue is quantity times unit price, fees not included.
func (o Operation) GrossValue() float64 {
	return float64(o.Quantity) * o.UnitPrice
}

// NormalizeTicker uppercases and trims an instrument symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// DateOnly strips the time-of-day component, keeping the calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
