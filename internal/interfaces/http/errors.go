package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/distribucion-api/internal/application/dto"
	"github.com/jhoicas/distribucion-api/internal/domain"
	"github.com/jhoicas/distribucion-api/pkg/logger"
)

var errInvalidBody = errors.New("cuerpo inválido")

// writeError traduce un error de dominio a status y código HTTP.
// Los errores no clasificados responden 500 sin exponer el detalle; el detalle va al log.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	status, code, msg := classify(err)
	if status >= fiber.StatusInternalServerError && log != nil {
		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("error interno")
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func classify(err error) (status int, code, msg string) {
	var perm *domain.PermissionError
	switch {
	case errors.Is(err, errInvalidBody):
		return fiber.StatusBadRequest, "INVALID_BODY", err.Error()
	case errors.As(err, &perm):
		return fiber.StatusForbidden, "FORBIDDEN", perm.Error()
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN", err.Error()
	case errors.Is(err, domain.ErrInactiveUser):
		return fiber.StatusUnauthorized, "INACTIVE_USER", domain.ErrInactiveUser.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED", err.Error()
	case errors.Is(err, domain.ErrProductNotFound):
		return fiber.StatusBadRequest, "PRODUCT_NOT_FOUND", err.Error()
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "INSUFFICIENT_STOCK", err.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION", err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE", err.Error()
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT", err.Error()
	default:
		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
			if fe.Code == fiber.StatusNotFound {
				return fe.Code, "NOT_FOUND", fe.Message
			}
			return fe.Code, "HTTP_ERROR", fe.Message
		}
		return fiber.StatusInternalServerError, "INTERNAL", "error interno"
	}
}

// ErrorHandler manejador global de Fiber: mismas reglas que los handlers.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return writeError(c, log, err)
	}
}
