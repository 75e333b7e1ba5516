package http

import (
	"context"
	"encoding/json"
	"io"
	"time"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/flaviojulio/ir-app/internal/domain"
)

// OperationRequest matches the B3 export format the original uploads used:
// "operation" is the side, the date carries no time component.
type OperationRequest struct {
	Date     string  `json:"date"`
	Ticker   string  `json:"ticker"`
	Side     string  `json:"operation"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
	Fees     float64 `json:"fees"`
}

type OperationResponse struct {
	ID       int64   `json:"id"`
	Date     string  `json:"date"`
	Ticker   string  `json:"ticker"`
	Side     string  `json:"operation"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
	Fees     float64 `json:"fees"`
}

const dateLayout = "2006-01-02"

func (req OperationRequest) toDomain(userID int64) (domain.Operation, error) {
	tradeDate, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return domain.Operation{}, fiber.NewError(fiber.StatusBadRequest, "invalid date, want YYYY-MM-DD")
	}
	return domain.Operation{
		UserID:    userID,
		TradeDate: tradeDate,
		Ticker:    req.Ticker,
		Side:      domain.OperationSide(req.Side),
		Quantity:  req.Quantity,
		UnitPrice: req.Price,
		Fees:      req.Fees,
	}, nil
}

func toOperationResponse(op domain.Operation) OperationResponse {
	return OperationResponse{
		ID:       op.ID,
		Date:     op.TradeDate.Format(dateLayout),
		Ticker:   op.Ticker,
		Side:     string(op.Side),
		Quantity: op.Quantity,
		Price:    op.UnitPrice,
		Fees:     op.Fees,
	}
}

// listOperations godoc
// @Summary List the caller's operations
// @Tags operations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} OperationResponse
// @Failure 401 {object} map[string]string
// @Router /operations [get]
func (r *Router) listOperations(c *fiber.Ctx) error {
	if r.ledgerService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "ledger service unavailable")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	ops, err := r.ledgerService.ListOperations(ctx, currentUser(c).ID)
	if err != nil {
		return serviceError(err)
	}

	out := make([]OperationResponse, len(ops))
	for i, op := range ops {
		out[i] = toOperationResponse(op)
	}
	return c.JSON(out)
}

// createOperation godoc
// @Summary Record a buy or sell
// @Tags operations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body OperationRequest true "Operation"
// @Success 201 {object} map[string]int64
// @Failure 400 {object} map[string]string
// @Router /operations [post]
func (r *Router) createOperation(c *fiber.Ctx) error {
	if r.ledgerService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "ledger service unavailable")
	}

	var req OperationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	op, err := req.toDomain(currentUser(c).ID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(userContext(c), 30*time.Second)
	defer cancel()

	id, err := r.ledgerService.CreateOperation(ctx, op)
	if err != nil {
		if isDomainError(err) {
			return serviceError(err)
		}
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// updateOperation godoc
// @Summary Replace an operation
// @Tags operations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Operation ID"
// @Param request body OperationRequest true "Operation"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /operations/{id} [put]
func (r *Router) updateOperation(c *fiber.Ctx) error {
	if r.ledgerService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "ledger service unavailable")
	}

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req OperationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	op, err := req.toDomain(currentUser(c).ID)
	if err != nil {
		return err
	}
	op.ID = id

	ctx, cancel := context.WithTimeout(userContext(c), 30*time.Second)
	defer cancel()

	ok, err := r.ledgerService.UpdateOperation(ctx, op)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "operation not found")
	}
	return c.JSON(fiber.Map{"status": "updated"})
}

// deleteOperation godoc
// @Summary Delete an operation
// @Tags operations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Operation ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /operations/{id} [delete]
func (r *Router) deleteOperation(c *fiber.Ctx) error {
	if r.ledgerService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "ledger service unavailable")
	}

	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(userContext(c), 30*time.Second)
	defer cancel()

	ok, err := r.ledgerService.DeleteOperation(ctx, id, currentUser(c).ID)
	if err != nil {
		return serviceError(err)
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "operation not found")
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}

// importOperations godoc
// @Summary Bulk-import operations from a JSON file
// @Description Accepts a multipart "file" field holding a JSON array of operations, or the array directly as the request body.
// @Tags operations
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "JSON array of operations"
// @Success 200 {object} map[string]int
// @Failure 400 {object} map[string]string
// @Router /operations/import [post]
func (r *Router) importOperations(c *fiber.Ctx) error {
	if r.ledgerService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "ledger service unavailable")
	}

	payload, err := importPayload(c)
	if err != nil {
		return err
	}

	var reqs []OperationRequest
	if err := json.Unmarshal(payload, &reqs); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON: expected an array of operations")
	}
	if len(reqs) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no operations in file")
	}

	userID := currentUser(c).ID
	ops := make([]domain.Operation, len(reqs))
	for i, req := range reqs {
		op, err := req.toDomain(userID)
		if err != nil {
			return err
		}
		ops[i] = op
	}

	ctx, cancel := context.WithTimeout(userContext(c), 60*time.Second)
	defer cancel()

	count, err := r.ledgerService.ImportOperations(ctx, userID, ops)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(fiber.Map{"imported": count})
}

func importPayload(c *fiber.Ctx) ([]byte, error) {
	header, err := c.FormFile("file")
	if err != nil {
		// No multipart file; fall back to the raw body.
		if len(c.Body()) == 0 {
			return nil, fiber.NewError(fiber.StatusBadRequest, "file required")
		}
		return c.Body(), nil
	}

	file, err := header.Open()
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "cannot read file")
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "cannot read file")
	}
	return payload, nil
}

// listClosedPositions godoc
// @Summary List matched buy/sell closures
// @Tags operations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.ClosedPosition
// @Failure 401 {object} map[string]string
// @Router /operations/closed [get]
func (r *Router) listClosedPositions(c *fiber.Ctx) error {
	if r.ledgerService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "ledger service unavailable")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	positions, err := r.ledgerService.ClosedPositions(ctx, currentUser(c).ID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(positions)
}

// closedPositionsSummary godoc
// @Summary Aggregate view over closed positions
// @Tags operations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.ClosedPositionsSummary
// @Failure 401 {object} map[string]string
// @Router /operations/closed/summary [get]
func (r *Router) closedPositionsSummary(c *fiber.Ctx) error {
	if r.ledgerService == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "ledger service unavailable")
	}

	ctx, cancel := context.WithTimeout(userContext(c), 10*time.Second)
	defer cancel()

	summary, err := r.ledgerService.ClosedPositionsSummary(ctx, currentUser(c).ID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(summary)
}
