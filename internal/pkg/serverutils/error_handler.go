package serverutils

import (
	"errors"
	"strings"

	"sigment-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// NewErrorHandler builds the app-wide fiber error handler. Validation
// failures map to 400, everything else to the fiber error's code or 500.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
		} else if strings.HasPrefix(err.Error(), "validation failed") {
			code = fiber.StatusBadRequest
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("http", "unhandled request error", map[string]interface{}{
				"path":   ctx.Path(),
				"method": ctx.Method(),
				"error":  err.Error(),
			})
			// Do not leak internals to the client.
			return ctx.Status(code).JSON(ErrorResponse(code, "Internal server error"))
		}

		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}
