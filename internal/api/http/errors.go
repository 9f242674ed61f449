package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/co2-offset-dashboard/internal/catalog"
	"github.com/i474232898/co2-offset-dashboard/internal/compensation"
	"github.com/i474232898/co2-offset-dashboard/internal/environment"
	"github.com/i474232898/co2-offset-dashboard/internal/offset"
	"github.com/i474232898/co2-offset-dashboard/internal/session"
	"github.com/i474232898/co2-offset-dashboard/internal/store"
)

// toHTTPError maps domain errors onto fiber errors. msg is used for unexpected failures.
func toHTTPError(err error, msg string) error {
	switch {
	case errors.Is(err, offset.ErrInvalidInput),
		errors.Is(err, compensation.ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, compensation.ErrAlreadyDriven):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, compensation.ErrNoMethodAvailable):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, session.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, environment.ErrIncompleteReading):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	}

	log.Error().Err(err).Msg(msg)
	return fiber.NewError(fiber.StatusInternalServerError, msg)
}

// ErrorHandler is the centralized Fiber error handler: every error becomes
// {"error": true, "message": ...} with the fiber status code or 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
