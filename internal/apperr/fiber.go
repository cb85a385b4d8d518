package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/fgmcolas/ShakeItUp/internal/logging"
)

type errorBody struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

// FiberHandler returns the app-wide fiber error handler. Taxonomy errors map
// to their status code; fiber's own errors (404 on unknown routes, body
// limits) keep their code; everything else is logged and reported as a
// generic 500.
func FiberHandler(log logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *Error
		if errors.As(err, &appErr) {
			status := statusOf(appErr.Kind)
			if appErr.Kind == KindInternal {
				log.Error(c.UserContext(), "request failed",
					"method", c.Method(), "path", c.Path(), "err", appErr.Err)
				return c.Status(status).JSON(errorBody{Error: "internal server error"})
			}
			return c.Status(status).JSON(errorBody{Error: appErr.Message, Details: appErr.Fields})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(errorBody{Error: fiberErr.Message})
		}

		log.Error(c.UserContext(), "request failed",
			"method", c.Method(), "path", c.Path(), "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody{Error: "internal server error"})
	}
}

func statusOf(k Kind) int {
	switch k {
	case KindValidation:
		return fiber.StatusBadRequest
	case KindConflict:
		return fiber.StatusConflict
	case KindNotFound:
		return fiber.StatusNotFound
	case KindAuth:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}
