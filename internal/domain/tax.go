package domain

import "time"

// Brazilian capital-gains parameters for equities.
const (
	// SwingExemptionLimit: months with swing-trade gross sales at or below
	// this value owe no swing tax regardless of gain.
	SwingExemptionLimit = 20000.00
	SwingTaxRate        = 0.15
	DayTradeTaxRate     = 0.20
	// DayTradeWithholdingRate is the simulated IRRF of 1% on each day-trade
	// sell's gross value.
	DayTradeWithholdingRate = 0.01
	// DARFCode is the revenue code for equity capital-gains DARFs.
	DARFCode = "6015"
)

// DARF is a tax payment slip, emitted when day-trade tax payable is positive.
type DARF struct {
	Code    string    `json:"code"`
	Period  string    `json:"period"`
	Amount  float64   `json:"amount"`
	DueDate time.Time `json:"due_date"`
}

// MonthlyResult is the tax computation for one user and one calendar month
// ("2006-01"). Upserted on every recompute; months are always processed in
// chronological order so the loss carry-forward fields are consistent.
type MonthlyResult struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"-"`
	Month  string `json:"month"`

	SwingSales   float64 `json:"swing_sales"`
	SwingCost    float64 `json:"swing_cost"`
	SwingNetGain float64 `json:"swing_net_gain"`
	SwingExempt  bool    `json:"swing_exempt"`
	SwingTaxDue  float64 `json:"swing_tax_due"`

	DayNetGain  float64 `json:"day_net_gain"`
	DayTaxDue   float64 `json:"day_tax_due"`
	DayWithheld float64 `json:"day_withheld"`
	DayPayable  float64 `json:"day_payable"`

	SwingLossCarry float64 `json:"swing_loss_carry"`
	DayLossCarry   float64 `json:"day_loss_carry"`

	DARF *DARF `json:"darf,omitempty"`
}
