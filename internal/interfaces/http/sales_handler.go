package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/LuisSisCode/sistema-clinica/internal/application/dto"
	"github.com/LuisSisCode/sistema-clinica/internal/application/inventory"
)

// SalesHandler maneja ventas y anulaciones (protegido).
type SalesHandler struct {
	facade *inventory.Facade
}

// NewSalesHandler construye el handler.
func NewSalesHandler(facade *inventory.Facade) *SalesHandler {
	return &SalesHandler{facade: facade}
}

// Create godoc
// @Summary      Registrar una venta (asignación FIFO multi-lote, atómica)
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "items: code, quantity, price"
// @Success      201  {object}  entity.SaleHeader
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SalesHandler) Create(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	header, err := h.facade.CreateSale(c.Context(), actorID, in.Items)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(header)
}

// Anul godoc
// @Summary      Anular una venta (revierte lotes, borra detalles y cabecera)
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID de la venta"
// @Param        body  body  dto.AnulSaleRequest true  "reason"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [delete]
func (h *SalesHandler) Anul(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.AnulSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := h.facade.AnulSale(c.Context(), c.Params("id"), in.Reason, actorID); err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"message": "venta anulada"})
}
