package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ricazo/pos-engine/internal/application/dto"
	"github.com/ricazo/pos-engine/internal/domain"
	"github.com/ricazo/pos-engine/pkg/logger"
)

// writeError traduce errores de dominio a respuestas HTTP. Solo los 5xx se registran en el log.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var funds *domain.InsufficientFundsError
	if errors.As(err, &funds) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.InsufficientFundsResponse{
			ErrorResponse: dto.ErrorResponse{Code: "INSUFFICIENT_FUNDS", Message: err.Error()},
			Due:           funds.Due,
			Tendered:      funds.Tendered,
			Missing:       funds.Missing(),
		})
	}

	status, code := classify(err)
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error procesando la petición")
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrPersistence):
		return fiber.StatusServiceUnavailable, "PERSISTENCE"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return fiber.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS"
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrAlreadyClosed):
		return fiber.StatusConflict, "ALREADY_CLOSED"
	case errors.Is(err, domain.ErrShiftClosed):
		return fiber.StatusConflict, "SHIFT_CLOSED"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrInvariantViolation):
		return fiber.StatusInternalServerError, "INVARIANT"
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// ErrorHandler para fiber.Config: errores no tratados por los handlers (404 de ruta, panics recuperados).
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := "INTERNAL"
			switch fe.Code {
			case fiber.StatusNotFound:
				code = "NOT_FOUND"
			case fiber.StatusMethodNotAllowed:
				code = "METHOD_NOT_ALLOWED"
			case fiber.StatusBadRequest:
				code = "INVALID_BODY"
			}
			return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
		}
		return writeError(c, log, err)
	}
}
