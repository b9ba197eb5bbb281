package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/LuisSisCode/sistema-clinica/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas
// (cabecera + detalles).
type SaleRepository interface {
	CreateHeader(header *entity.SaleHeader) error
	CreateDetail(detail *entity.SaleDetail) error
	GetHeader(id string) (*entity.SaleHeader, error)
	ListDetails(headerID string) ([]*entity.SaleDetail, error)
	UpdateHeaderTotal(id string, total decimal.Decimal) error
	DeleteDetails(headerID string) error
	DeleteHeader(id string) error
	// SumTotalsByDay suma los totales de las ventas del día (UTC).
	SumTotalsByDay(day time.Time) (decimal.Decimal, error)
}
