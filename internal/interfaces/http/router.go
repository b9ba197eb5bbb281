package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/LuisSisCode/sistema-clinica/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Facade    *inventory.Facade
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Todo el libro de inventario requiere Bearer Token.
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Catálogo (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.Facade)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:code", productHandler.GetByCode)
	products.Put("/:code", productHandler.Update)
	products.Delete("/:code", productHandler.Delete)

	// Lecturas de inventario (protegido)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Facade)
	invGroup.Get("/stock/:code", inventoryHandler.GetStock)
	invGroup.Get("/availability", inventoryHandler.CheckAvailability)
	invGroup.Get("/lots/:code", inventoryHandler.ListActiveLots)
	invGroup.Get("/daily-sales", inventoryHandler.DailySalesTotal)
	invGroup.Get("/cache-stats", inventoryHandler.CacheStats)

	// Ventas (protegido)
	sales := protected.Group("/sales")
	salesHandler := NewSalesHandler(deps.Facade)
	sales.Post("/", salesHandler.Create)
	sales.Delete("/:id", salesHandler.Anul)

	// Compras (protegido)
	purchases := protected.Group("/purchases")
	purchasesHandler := NewPurchasesHandler(deps.Facade)
	purchases.Post("/", purchasesHandler.Create)
}
