package serverutils

import (
	"errors"

	"vibenotes-be/internal/pkg/apperr"
	"vibenotes-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps an error kind onto an HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindInvalidAddress:
		return fiber.StatusBadRequest
	case apperr.KindNotAuthenticated:
		return fiber.StatusUnauthorized
	case apperr.KindForbidden, apperr.KindTimeWindowExpired:
		return fiber.StatusForbidden
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware turns errors returned by handlers into the JSON error envelope.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Kind != apperr.KindInternal {
			status := StatusFor(appErr.Kind)
			return ctx.Status(status).JSON(ErrorResponse(status, string(appErr.Kind), appErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			kind := apperr.KindInternal
			if fiberErr.Code >= 400 && fiberErr.Code < 500 {
				kind = apperr.KindValidation
				if fiberErr.Code == fiber.StatusNotFound {
					kind = apperr.KindNotFound
				}
			}
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, string(kind), fiberErr.Message))
		}

		log.Error("ErrorHandler", "Unhandled request error", map[string]interface{}{
			"error":  err,
			"method": ctx.Method(),
			"path":   ctx.Path(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, string(apperr.KindInternal), "Internal server error"))
	}
}
