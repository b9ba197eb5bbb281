package repository

import (
	"github.com/shopspring/decimal"

	"github.com/LuisSisCode/sistema-clinica/internal/domain/entity"
)

// PurchaseRepository define el puerto de persistencia para compras
// (cabecera + detalles).
type PurchaseRepository interface {
	CreateHeader(header *entity.PurchaseHeader) error
	CreateDetail(detail *entity.PurchaseDetail) error
	GetHeader(id string) (*entity.PurchaseHeader, error)
	ListDetails(headerID string) ([]*entity.PurchaseDetail, error)
	UpdateHeaderTotal(id string, total decimal.Decimal) error
	DeleteDetails(headerID string) error
	DeleteHeader(id string) error
}
