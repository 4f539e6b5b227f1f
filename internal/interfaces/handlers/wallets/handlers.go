package wallets

import (
	walletsvc "profitshare-backend/internal/application/wallets"
	"profitshare-backend/internal/pkg/response"
	"profitshare-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *walletsvc.Service
}

// GET /api/v1/wallets/:investor_id
func (h *Handlers) GetWallet(c *fiber.Ctx) error {
	investorID := c.Params("investor_id")
	if !validation.IsValidID(investorID) {
		return response.BadRequest(c, "Invalid investor_id", nil)
	}
	data, errMsg, code := h.Service.ViewWallet(c.UserContext(), investorID)
	if errMsg != "" {
		return response.Error(c, errMsg, code, nil)
	}
	return response.Success(c, "Wallet fetched successfully", data, nil)
}
