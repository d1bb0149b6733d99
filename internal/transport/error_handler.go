package transport

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/failedemails-report/internal/observability"
	"go.uber.org/zap"
)

// ErrorHandler renders errors as {"error": ...}. Unexpected errors are
// logged at error level and their text is not sent to the client.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		log := observability.WithContextLogger(logger, c.UserContext()).With(
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)
		if code >= fiber.StatusInternalServerError {
			log.Error("request error")
		} else {
			log.Warn("request rejected")
		}

		return c.Status(code).JSON(fiber.Map{
			"error": message,
		})
	}
}
