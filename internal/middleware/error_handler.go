package middleware

import (
	"errors"

	"profitshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the global error handler. Returns the standard error format.
// Only *fiber.Error messages reach the client; anything else is a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		logger := Logger(c)
		logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return response.Error(c, message, code, nil)
}
