package domain

import "time"

type CloseDirection string

const (
	// CloseDirectionLong is a buy later offset by a sell.
	CloseDirectionLong CloseDirection = "long_closed"
	// CloseDirectionShort is a short sale later covered by a buy.
	CloseDirectionShort CloseDirection = "short_covered"
)

// OperationLeg is one of the two operation fragments that produced a closed
// position, with fees prorated to the matched quantity.
type OperationLeg struct {
	OperationID int64         `json:"operation_id"`
	Side        OperationSide `json:"side"`
	Date        time.Time     `json:"date"`
	Quantity    int64         `json:"quantity"`
	UnitPrice   float64       `json:"unit_price"`
	Fees        float64       `json:"fees"`
}

// ClosedPosition is a matched buy/sell pair produced by FIFO lot matching.
// It is derived state: the whole set is recomputed from the operation history
// on every reconciliation pass.
type ClosedPosition struct {
	ID            int64          `json:"id"`
	UserID        int64          `json:"-"`
	Ticker        string         `json:"ticker"`
	OpenDate      time.Time      `json:"open_date"`
	CloseDate     time.Time      `json:"close_date"`
	Direction     CloseDirection `json:"direction"`
	Quantity      int64          `json:"quantity"`
	OpenPrice     float64        `json:"open_price"`
	ClosePrice    float64        `json:"close_price"`
	TotalFees     float64        `json:"total_fees"`
	Result        float64        `json:"result"`
	ResultPercent float64        `json:"result_percent"`
	DayTrade      bool           `json:"day_trade"`
	RelatedLegs   []OperationLeg `json:"related_operations"`
}

// PortfolioEntry is the running position for one ticker. Quantity is signed:
// negative means an open short. Fully recomputed from the operation history.
type PortfolioEntry struct {
	Ticker       string  `json:"ticker"`
	Quantity     int64   `json:"quantity"`
	TotalCost    float64 `json:"total_cost"`
	AveragePrice float64 `json:"average_price"`
}
