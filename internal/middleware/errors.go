package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/roadsphere/roadsphere/internal/apperr"
)

type errorBody struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorHandler renders every error as {"message", "code"}. Unclassified
// errors become a bare 500 so internals never reach the client.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		body := errorBody{RequestID: GetRequestID(c)}
		status := fiber.StatusInternalServerError

		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
			body.Message = fe.Message
		} else {
			ae := apperr.From(err)
			status = ae.Status()
			body.Message = ae.Message
			body.Code = ae.Code
			if ae.Kind == apperr.KindInternal {
				logger.Error("internal error", slog.String("path", c.Path()), slog.Any("error", err))
			}
		}
		return c.Status(status).JSON(body)
	}
}
