package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/LuisSisCode/sistema-clinica/internal/application/dto"
	"github.com/LuisSisCode/sistema-clinica/internal/domain"
)

// respondDomainError mapea la taxonomía de errores del dominio a códigos HTTP.
// Toda operación pública devuelve o un resultado completo o un error tipado;
// nunca éxito parcial silencioso.
func respondDomainError(c *fiber.Ctx, err error) error {
	var stockErr *domain.StockInsufficientError
	var anulErr *domain.AnulmentNotAllowedError
	var integrityErr *domain.IntegrityViolationError
	var txErr *domain.TransactionFailedError

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "PRODUCT_NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrLotNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "LOT_NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "recurso duplicado"})
	case errors.As(err, &stockErr):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: stockErr.Error()})
	case errors.As(err, &anulErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "ANULMENT_NOT_ALLOWED", Message: anulErr.Error()})
	case errors.As(err, &integrityErr):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INTEGRITY_VIOLATION", Message: integrityErr.Error()})
	case errors.As(err, &txErr):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "TRANSACTION_FAILED", Message: txErr.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
