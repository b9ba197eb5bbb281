package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/LuisSisCode/sistema-clinica/internal/application/dto"
	"github.com/LuisSisCode/sistema-clinica/internal/application/inventory"
)

// InventoryHandler maneja las lecturas de stock, disponibilidad y lotes (protegido).
type InventoryHandler struct {
	facade *inventory.Facade
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(facade *inventory.Facade) *InventoryHandler {
	return &InventoryHandler{facade: facade}
}

// forceFresh lee el query param que salta la caché (para callers que acaban
// de escribir y deben observar el estado más reciente).
func forceFresh(c *fiber.Ctx) bool {
	fresh, _ := strconv.ParseBool(c.Query("fresh"))
	return fresh
}

// GetStock godoc
// @Summary      Stock derivado de un producto (suma de remanentes de lotes)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        code   path   string  true   "Código de producto"
// @Param        fresh  query  bool    false  "Saltar caché"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/{code} [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	code := c.Params("code")
	stock, err := h.facade.GetStock(code, forceFresh(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"code": code, "stock": stock})
}

// CheckAvailability godoc
// @Summary      Plan de asignación FIFO para una cantidad solicitada
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        code      query  string  true  "Código de producto"
// @Param        quantity  query  int     true  "Cantidad solicitada"
// @Success      200  {object}  allocation.Result
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/availability [get]
func (h *InventoryHandler) CheckAvailability(c *fiber.Ctx) error {
	code := c.Query("code")
	quantity, err := strconv.ParseInt(c.Query("quantity"), 10, 64)
	if err != nil || code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "code y quantity requeridos"})
	}
	res, err := h.facade.CheckAvailability(code, quantity)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(res)
}

// ListActiveLots godoc
// @Summary      Lotes activos de un producto en orden FIFO
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        code   path   string  true   "Código de producto"
// @Param        fresh  query  bool    false  "Saltar caché"
// @Success      200  {array}   entity.Lot
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/lots/{code} [get]
func (h *InventoryHandler) ListActiveLots(c *fiber.Ctx) error {
	lots, err := h.facade.ListActiveLots(c.Params("code"), forceFresh(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(lots), "lots": lots})
}

// DailySalesTotal godoc
// @Summary      Total vendido en un día (UTC)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        date   query  string  false  "Fecha YYYY-MM-DD (por defecto hoy)"
// @Param        fresh  query  bool    false  "Saltar caché"
// @Success      200  {object}  map[string]any
// @Router       /api/inventory/daily-sales [get]
func (h *InventoryHandler) DailySalesTotal(c *fiber.Ctx) error {
	day := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date debe ser YYYY-MM-DD"})
		}
		day = parsed
	}
	total, err := h.facade.DailySalesTotal(day, forceFresh(c))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(fiber.Map{"date": day.Format("2006-01-02"), "total": total})
}

// CacheStats godoc
// @Summary      Estadísticas de la caché de consultas
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  cache.Stats
// @Router       /api/inventory/cache-stats [get]
func (h *InventoryHandler) CacheStats(c *fiber.Ctx) error {
	return c.JSON(h.facade.CacheStats())
}
