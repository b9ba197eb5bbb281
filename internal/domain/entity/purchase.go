package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseHeader representa la cabecera de una compra a proveedor.
type PurchaseHeader struct {
	ID         string
	Total      decimal.Decimal
	CreatedAt  time.Time
	ActorID    string
	SupplierID string
}

// PurchaseDetail representa una línea de compra. Cada línea crea exactamente
// un lote nuevo; LotID apunta al lote creado.
type PurchaseDetail struct {
	ID        string
	HeaderID  string
	LotID     string
	ProductID string
	Quantity  int64
	UnitPrice decimal.Decimal
}

// Subtotal devuelve quantity * unit_price.
func (d *PurchaseDetail) Subtotal() decimal.Decimal {
	return decimal.NewFromInt(d.Quantity).Mul(d.UnitPrice)
}
