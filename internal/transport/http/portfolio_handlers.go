package http

import (
	"context"
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/flaviojulio/ir-app/internal/domain"
)

type PortfolioOverrideRequest struct {
	Ticker       string  `json:"ticker"`
	Quantity     int64   `json:"quantity"`
	AveragePrice float64 `json:"average_price"`
}

// getPortfolio godoc
// @Summary Current per-ticker positions
// @Tags portfolio
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.PortfolioEntry
// @Failure 401 {object} map[string]string
// @Router /portfolio [get]
func (r *Router) getPortfolio(c *fiber.Ctx) error {
	if r.ledgerService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "ledger service unavailable")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	entries, err := r.ledgerService.Portfolio(ctx, currentUser(c).ID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(entries)
}

// overridePortfolioEntry godoc
// @Summary Manually set a ticker's quantity and average price
// @Description The override holds until the next operation mutation triggers a recompute.
// @Tags portfolio
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param ticker path string true "Ticker"
// @Param request body PortfolioOverrideRequest true "Override values"
// @Success 200 {object} domain.PortfolioEntry
// @Failure 400 {object} map[string]string
// @Router /portfolio/{ticker} [put]
func (r *Router) overridePortfolioEntry(c *fiber.Ctx) error {
	if r.ledgerService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "ledger service unavailable")
	}

	ticker := domain.NormalizeTicker(c.Params("ticker"))
	if ticker == "" {
		return fiber.NewError(fiber.StatusBadRequest, "ticker required")
	}

	var req PortfolioOverrideRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}
	if req.Ticker != "" && domain.NormalizeTicker(req.Ticker) != ticker {
		return fiber.NewError(fiber.StatusBadRequest, "ticker in path and body disagree")
	}

	entry := domain.PortfolioEntry{
		Ticker:       ticker,
		Quantity:     req.Quantity,
		AveragePrice: req.AveragePrice,
		TotalCost:    float64(req.Quantity) * req.AveragePrice,
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	if err := r.ledgerService.OverridePortfolioEntry(ctx, currentUser(c).ID, entry); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(entry)
}

// listResults godoc
// @Summary Monthly tax results
// @Tags tax
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.MonthlyResult
// @Failure 401 {object} map[string]string
// @Router /results [get]
func (r *Router) listResults(c *fiber.Ctx) error {
	if r.ledgerService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "ledger service unavailable")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	results, err := r.ledgerService.MonthlyResults(ctx, currentUser(c).ID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(results)
}

// listDARFs godoc
// @Summary DARF slips for months with day-trade tax payable
// @Tags tax
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.DARF
// @Failure 401 {object} map[string]string
// @Router /darfs [get]
func (r *Router) listDARFs(c *fiber.Ctx) error {
	if r.ledgerService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "ledger service unavailable")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	darfs, err := r.ledgerService.DARFs(ctx, currentUser(c).ID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(darfs)
}
