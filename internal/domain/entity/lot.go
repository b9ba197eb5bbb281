package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot representa un lote de stock de un producto, creado por una línea de
// compra. ExpiryDate nil significa "sin vencimiento". RemainingQuantity solo
// se muta por asignaciones de venta, reposiciones y anulaciones; nunca baja
// de cero (CHECK en la tabla).
type Lot struct {
	ID                string
	ProductID         string
	RemainingQuantity int64
	ExpiryDate        *time.Time
	UnitCost          decimal.Decimal
	CreatedAt         time.Time
}

// Expired indica si el lote está vencido respecto a now.
func (l *Lot) Expired(now time.Time) bool {
	return l.ExpiryDate != nil && l.ExpiryDate.Before(now)
}
