package domain

// TickerSummary rolls up closed positions for one ticker.
type TickerSummary struct {
	Positions   int     `json:"positions"`
	TotalResult float64 `json:"total_result"`
	Winning     int     `json:"winning"`
	Losing      int     `json:"losing"`
}

// ClosedPositionsSummary is the aggregate view over a user's closed
// positions: totals, the day-trade/swing split, the best and worst closures,
// and a per-ticker rollup.
type ClosedPositionsSummary struct {
	TotalPositions int                      `json:"total_positions"`
	TotalResult    float64                  `json:"total_result"`
	DayTradeCount  int                      `json:"day_trade_count"`
	DayTradeResult float64                  `json:"day_trade_result"`
	SwingCount     int                      `json:"swing_count"`
	SwingResult    float64                  `json:"swing_result"`
	TopGains       []ClosedPosition         `json:"top_gains"`
	TopLosses      []ClosedPosition         `json:"top_losses"`
	ByTicker       map[string]TickerSummary `json:"by_ticker"`
}
