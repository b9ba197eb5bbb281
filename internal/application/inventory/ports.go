package inventory

import (
	"context"

	"github.com/LuisSisCode/sistema-clinica/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el orquestador de
// mutaciones: o se comprometen cabecera, detalles y deltas de lotes juntos,
// o no queda nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		lotRepo repository.LotRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		purchaseRepo repository.PurchaseRepository,
	) error) error
}
