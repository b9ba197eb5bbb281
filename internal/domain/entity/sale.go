package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleHeader representa la cabecera de una venta. Inmutable tras el commit,
// salvo la anulación completa (borrar-y-revertir, nunca editar en sitio).
// Total debe ser igual a la suma de los subtotales de sus detalles.
type SaleHeader struct {
	ID        string
	Total     decimal.Decimal
	CreatedAt time.Time
	ActorID   string // opaco, lo provee el módulo de autenticación
}

// SaleDetail representa una línea de venta: referencia exactamente un lote y
// una cabecera. Una venta que consume varios lotes produce un detalle por
// lote consumido.
type SaleDetail struct {
	ID        string
	HeaderID  string
	LotID     string
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
}

// Subtotal devuelve quantity * unit_price.
func (d *SaleDetail) Subtotal() decimal.Decimal {
	return decimal.NewFromInt(d.Quantity).Mul(d.UnitPrice)
}
