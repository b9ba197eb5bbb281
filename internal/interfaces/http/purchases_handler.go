package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/LuisSisCode/sistema-clinica/internal/application/dto"
	"github.com/LuisSisCode/sistema-clinica/internal/application/inventory"
)

// PurchasesHandler maneja compras a proveedor (protegido).
type PurchasesHandler struct {
	facade *inventory.Facade
}

// NewPurchasesHandler construye el handler.
func NewPurchasesHandler(facade *inventory.Facade) *PurchasesHandler {
	return &PurchasesHandler{facade: facade}
}

// Create godoc
// @Summary      Registrar una compra (cada línea crea un lote nuevo, atómica)
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseRequest  true  "supplier_id, items: code, quantity, expiry?, unit_cost"
// @Success      201  {object}  entity.PurchaseHeader
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchases [post]
func (h *PurchasesHandler) Create(c *fiber.Ctx) error {
	actorID := GetActorID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.CreatePurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	header, err := h.facade.CreatePurchase(c.Context(), actorID, in.SupplierID, in.Items)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(header)
}
