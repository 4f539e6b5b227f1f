package distributions

import (
	"errors"
	"strings"

	distsvc "profitshare-backend/internal/application/distributions"
	"profitshare-backend/internal/middleware"
	"profitshare-backend/internal/pkg/response"
	"profitshare-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

const idempotencyHeader = "Idempotency-Key"

type Handlers struct {
	Service *distsvc.Service
}

type runRequest struct {
	FundingRoundID string          `json:"funding_round_id"`
	Period         string          `json:"distribution_period"`
	TotalProfit    decimal.Decimal `json:"total_profit_amount"`
	Notes          string          `json:"notes"`
	InitiatorID    string          `json:"initiator_id"`
	IdempotencyKey string          `json:"idempotency_key"`
}

func (r runRequest) problems() map[string]string {
	out := map[string]string{}
	if !validation.IsValidID(r.FundingRoundID) {
		out["funding_round_id"] = "must be a valid identifier"
	}
	if !validation.IsValidLabel(r.Period) {
		out["distribution_period"] = "is required"
	}
	if !validation.IsValidID(r.InitiatorID) {
		out["initiator_id"] = "must be a valid identifier"
	}
	if r.IdempotencyKey != "" && !validation.IsValidID(r.IdempotencyKey) {
		out["idempotency_key"] = "must be a valid identifier"
	}
	if !r.TotalProfit.IsPositive() {
		out["total_profit_amount"] = "must be greater than zero"
	}
	return out
}

// POST /api/v1/distributions/run
func (h *Handlers) Run(c *fiber.Ctx) error {
	var req runRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body", nil)
	}
	if key := strings.TrimSpace(c.Get(idempotencyHeader)); key != "" {
		req.IdempotencyKey = key
	}
	if p := req.problems(); len(p) > 0 {
		return response.BadRequest(c, "Validation failed", p)
	}

	res, err := h.Service.Run(c.UserContext(), distsvc.RunInput{
		FundingRoundID: req.FundingRoundID,
		Period:         strings.TrimSpace(req.Period),
		TotalProfit:    req.TotalProfit,
		Notes:          strings.TrimSpace(req.Notes),
		InitiatorID:    req.InitiatorID,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return writeError(c, err)
	}

	logger := middleware.Logger(c)
	logger.Info().
		Str("batch_id", res.BatchID).
		Str("status", res.Status).
		Int("success", res.SuccessCount).
		Int("failures", res.FailureCount).
		Msg("distribution run handled")

	msg := "Profit distribution completed"
	if res.FailureCount > 0 {
		msg = "Profit distribution finished with failures"
	}
	if res.Replayed {
		return response.Success(c, msg, res, nil)
	}
	return response.SuccessCreated(c, msg, res, nil)
}

// GET /api/v1/distributions
func (h *Handlers) List(c *fiber.Ctx) error {
	roundID := c.Query("funding_round_id")
	if roundID != "" && !validation.IsValidID(roundID) {
		return response.BadRequest(c, "Invalid funding_round_id", nil)
	}
	batches, err := h.Service.ListBatches(c.UserContext(), roundID)
	if err != nil {
		return err
	}
	return response.Success(c, "Distributions fetched successfully", batches, fiber.Map{"count": len(batches)})
}

// GET /api/v1/distributions/stats
func (h *Handlers) Stats(c *fiber.Ctx) error {
	stats, err := h.Service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return response.Success(c, "Distribution stats fetched successfully", stats, nil)
}

// GET /api/v1/distributions/:batch_id
func (h *Handlers) Get(c *fiber.Ctx) error {
	batchID := c.Params("batch_id")
	if !validation.IsValidID(batchID) {
		return response.BadRequest(c, "Invalid batch_id", nil)
	}
	detail, err := h.Service.GetBatch(c.UserContext(), batchID)
	if err != nil {
		return writeError(c, err)
	}
	return response.Success(c, "Distribution fetched successfully", detail, nil)
}

func writeError(c *fiber.Ctx, err error) error {
	if !distsvc.IsClientError(err) {
		return err
	}
	switch {
	case errors.Is(err, distsvc.ErrValidation):
		return response.BadRequest(c, err.Error(), nil)
	case errors.Is(err, distsvc.ErrNoEligibleRecipients):
		return response.Unprocessable(c, err.Error())
	case errors.Is(err, distsvc.ErrIdempotencyConflict):
		return response.Conflict(c, err.Error())
	case errors.Is(err, distsvc.ErrBatchNotFound):
		return response.NotFound(c, err.Error())
	default:
		return err
	}
}
