package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storyapi/internal/http/middleware"
	"storyapi/internal/service"
)

// errorPayload is the body of every error response.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func requestIDFromCtx(c *fiber.Ctx) string {
	id, _ := c.Locals(middleware.RequestIDLocalKey).(string)
	return id
}

// writeError sends the error envelope. message must be safe to show to clients.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

// writeServiceError maps a PublishService error onto the error envelope.
// Asset write failures carry the underlying message so the client can act on it;
// everything else is reported without internal detail.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrIDRequired),
		errors.Is(err, service.ErrOwnerRequired),
		errors.Is(err, service.ErrTitleRequired),
		errors.Is(err, service.ErrInvalidPageNumber):
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, service.ErrAssetWrite):
		return writeError(c, fiber.StatusUnprocessableEntity, "ASSET_WRITE_FAILED", err.Error())
	case errors.Is(err, service.ErrPersist), errors.Is(err, service.ErrNotPersisted):
		return writeError(c, fiber.StatusInternalServerError, "PERSIST_FAILED", "could not save record")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// fiberErrorCodes names the statuses Fiber itself raises (routing, body limit).
var fiberErrorCodes = map[int]struct{ code, message string }{
	fiber.StatusBadRequest:            {"BAD_REQUEST", "bad request"},
	fiber.StatusNotFound:              {"NOT_FOUND", "resource not found"},
	fiber.StatusMethodNotAllowed:      {"METHOD_NOT_ALLOWED", "method not allowed"},
	fiber.StatusRequestEntityTooLarge: {"PAYLOAD_TOO_LARGE", "request body too large"},
}

// ErrorHandler is the Fiber global error handler. Errors that escaped the
// handlers are reported without internal detail.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		if e, ok := fiberErrorCodes[status]; ok {
			return writeError(c, status, e.code, e.message)
		}
		return writeError(c, status, "INTERNAL_ERROR", "internal server error")
	}
}
