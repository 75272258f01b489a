package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Supermercado-api/internal/application/dto"
	"github.com/jhoicas/Supermercado-api/internal/domain"
)

// writeError traduce un error de caso de uso a status HTTP + dto.ErrorResponse.
// Los errores no reconocidos salen como 500 sin exponer el detalle interno.
func writeError(c *fiber.Ctx, err error) error {
	status, body := errorResponse(err)
	return c.Status(status).JSON(body)
}

func errorResponse(err error) (int, dto.ErrorResponse) {
	var (
		validation  *domain.ValidationError
		unavailable *domain.ProductUnavailableError
		stock       *domain.InsufficientStockError
		transition  *domain.InvalidStateTransitionError
		duplicate   *domain.DuplicateRequestError
	)
	switch {
	case errors.As(err, &validation):
		return fiber.StatusBadRequest, dto.ErrorResponse{
			Code: "VALIDATION", Message: validation.Message, Field: validation.Field,
		}
	case errors.As(err, &unavailable):
		return fiber.StatusConflict, dto.ErrorResponse{
			Code: "PRODUCT_UNAVAILABLE", Message: err.Error(),
			Details: map[string]any{"product_ids": unavailable.ProductIDs},
		}
	case errors.As(err, &stock):
		return fiber.StatusConflict, dto.ErrorResponse{
			Code: "INSUFFICIENT_STOCK", Message: err.Error(),
			Details: map[string]any{
				"product_id": stock.ProductID,
				"requested":  stock.Requested,
				"available":  stock.Available,
			},
		}
	case errors.As(err, &transition):
		return fiber.StatusConflict, dto.ErrorResponse{
			Code: "INVALID_STATE_TRANSITION", Message: err.Error(),
			Details: map[string]any{"order_id": transition.OrderID, "from": transition.From, "to": transition.To},
		}
	case errors.As(err, &duplicate):
		details := map[string]any{"request_id": duplicate.RequestID}
		if duplicate.OrderID != "" {
			details["order_id"] = duplicate.OrderID
		}
		return fiber.StatusConflict, dto.ErrorResponse{
			Code: "DUPLICATE_REQUEST", Message: err.Error(), Details: details,
		}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"}
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "no autorizado"}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: "acceso denegado"}
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "EMAIL_EXISTS", Message: err.Error()}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()}
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()}
	case errors.Is(err, domain.ErrPersistence):
		return fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: "PERSISTENCE", Message: "error de almacenamiento, intente de nuevo"}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

func badQuery(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros de consulta inválidos"})
}
