package serverutils

import (
	"errors"

	"legal-analyzer-be/internal/pkg/logger"
	"legal-analyzer-be/pkg/extract"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders handler errors as ErrorBody. Unknown errors are
// logged and reported as a generic 500.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return ctx.Status(fe.Code).JSON(ErrorResponse(fe.Code, fe.Message))
		}

		var xe *extract.Error
		if errors.As(err, &xe) {
			code := extractStatus(xe.Kind)
			return ctx.Status(code).JSON(ErrorResponse(code, xe.Message))
		}

		log.Error("http", "Unhandled error", map[string]interface{}{
			"error":  err,
			"method": ctx.Method(),
			"path":   ctx.Path(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(InternalErrorResponse())
	}
}

func extractStatus(kind extract.Kind) int {
	switch kind {
	case extract.KindTooLarge:
		return fiber.StatusRequestEntityTooLarge
	case extract.KindTimeout:
		return fiber.StatusRequestTimeout
	default:
		return fiber.StatusBadRequest
	}
}
