package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-ats/internal/logger"
	"alfredoptarigan/resume-ats/internal/models"
	"alfredoptarigan/resume-ats/internal/services"
)

const (
	kindValidation = "validation"
	kindNotFound   = "not_found"
	kindHTTP       = "http"
)

// respondError writes an assistant error as {error_kind, message}.
func respondError(c *fiber.Ctx, err error) error {
	status := services.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.Path()).Int("status", status).Msg("❌ Request failed")
	}

	return c.Status(status).JSON(models.ErrorResponse{
		ErrorKind: services.ErrorKindOf(err),
		Message:   err.Error(),
	})
}

func respondKind(c *fiber.Ctx, status int, kind, message string) error {
	return c.Status(status).JSON(models.ErrorResponse{
		ErrorKind: kind,
		Message:   message,
	})
}

// ErrorHandler is the fiber error handler. Errors that escape a handler keep
// the same body shape as assistant errors.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		kind := kindHTTP
		switch fe.Code {
		case fiber.StatusNotFound:
			kind = kindNotFound
		case fiber.StatusRequestEntityTooLarge, fiber.StatusBadRequest:
			kind = kindValidation
		}
		return respondKind(c, fe.Code, kind, fe.Message)
	}

	return respondError(c, err)
}
