package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto de la farmacia de la clínica.
// Code es la clave de negocio (única, inmutable). El stock NUNCA se guarda
// aquí: siempre se deriva como la suma de los remanentes de sus lotes.
type Product struct {
	ID          string
	Code        string // clave de negocio única
	Name        string
	Price       decimal.Decimal // precio de venta
	Cost        decimal.Decimal // costo de referencia
	UnitMeasure string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
