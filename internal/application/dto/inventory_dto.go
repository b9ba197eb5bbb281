package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ErrorResponse respuesta de error estándar de la API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SaleItemInput línea de venta solicitada por el caller.
type SaleItemInput struct {
	Code     string          `json:"code"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// CreateSaleRequest cuerpo de POST /api/sales.
type CreateSaleRequest struct {
	Items []SaleItemInput `json:"items"`
}

// PurchaseItemInput línea de compra: cada una crea un lote nuevo.
// Expiry nil significa "sin vencimiento".
type PurchaseItemInput struct {
	Code     string          `json:"code"`
	Quantity int64           `json:"quantity"`
	Expiry   *time.Time      `json:"expiry,omitempty"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// CreatePurchaseRequest cuerpo de POST /api/purchases.
type CreatePurchaseRequest struct {
	SupplierID string              `json:"supplier_id"`
	Items      []PurchaseItemInput `json:"items"`
}

// AnulSaleRequest cuerpo de DELETE /api/sales/:id.
type AnulSaleRequest struct {
	Reason string `json:"reason"`
}

// ProductRequest cuerpo de creación/actualización de producto.
type ProductRequest struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	UnitMeasure string          `json:"unit_measure"`
}
