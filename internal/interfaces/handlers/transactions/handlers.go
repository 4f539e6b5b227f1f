package transactions

import (
	txsvc "profitshare-backend/internal/application/transactions"
	"profitshare-backend/internal/pkg/response"
	"profitshare-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *txsvc.Service
}

// GetTransactions serves GET /api/v1/transactions/get-transactions?investor_id=&type=
func (h *Handlers) GetTransactions(c *fiber.Ctx) error {
	investorID := c.Query("investor_id")
	txType := c.Query("type")
	problems := fiber.Map{}
	if investorID != "" && !validation.IsValidID(investorID) {
		problems["investor_id"] = "must be a valid id"
	}
	if txType != "" && !validation.IsValidID(txType) {
		problems["type"] = "must be a valid transaction type"
	}
	if len(problems) > 0 {
		return response.BadRequest(c, "Invalid query", problems)
	}

	data, errMsg, code := h.Service.ViewTransactions(c.UserContext(), investorID, txType)
	if errMsg != "" {
		return response.Error(c, errMsg, code, nil)
	}
	return response.Success(c, "Transactions fetched successfully", data, fiber.Map{"investor_id": investorID})
}
