package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LuisSisCode/sistema-clinica/internal/application/dto"
	"github.com/LuisSisCode/sistema-clinica/internal/domain"
	"github.com/LuisSisCode/sistema-clinica/internal/domain/entity"
	"github.com/LuisSisCode/sistema-clinica/internal/domain/repository"
	"github.com/LuisSisCode/sistema-clinica/internal/infrastructure/cache"
)

// pendingPurchaseItem es una línea de compra validada.
type pendingPurchaseItem struct {
	product  *entity.Product
	quantity int64
	expiry   *time.Time
	unitCost decimal.Decimal
}

// CreatePurchase ejecuta una compra como unidad atómica. Es simétrica a
// CreateSale con la asignación reemplazada por creación de lotes: cada línea
// crea exactamente un lote nuevo y un detalle que lo referencia. Si algo
// falla a mitad de camino, la transacción revierte cabecera, detalles Y los
// lotes creados por esta misma compra (los lotes preexistentes no se tocan
// en una compra).
func (f *Facade) CreatePurchase(ctx context.Context, actorID, supplierID string, items []dto.PurchaseItemInput) (*entity.PurchaseHeader, error) {
	if len(items) == 0 || supplierID == "" {
		return nil, domain.ErrInvalidInput
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	pending := make([]pendingPurchaseItem, 0, len(items))
	for _, item := range items {
		if item.Code == "" || item.Quantity <= 0 || item.UnitCost.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product, err := f.productRepo.GetByCode(item.Code)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%s: %w", item.Code, domain.ErrProductNotFound)
		}
		pending = append(pending, pendingPurchaseItem{
			product:  product,
			quantity: item.Quantity,
			expiry:   item.Expiry,
			unitCost: item.UnitCost,
		})
	}

	header := &entity.PurchaseHeader{
		Total:      decimal.Zero,
		CreatedAt:  now,
		ActorID:    actorID,
		SupplierID: supplierID,
	}
	err := f.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		_ repository.ProductRepository,
		_ repository.SaleRepository,
		purchaseRepo repository.PurchaseRepository,
	) error {
		if err := purchaseRepo.CreateHeader(header); err != nil {
			return err
		}
		for _, p := range pending {
			lot := &entity.Lot{
				ProductID:         p.product.ID,
				RemainingQuantity: p.quantity,
				ExpiryDate:        p.expiry,
				UnitCost:          p.unitCost,
				CreatedAt:         now,
			}
			if err := lotRepo.Create(lot); err != nil {
				return err
			}
			detail := &entity.PurchaseDetail{
				HeaderID:  header.ID,
				LotID:     lot.ID,
				ProductID: p.product.ID,
				Quantity:  p.quantity,
				UnitPrice: p.unitCost,
			}
			if err := purchaseRepo.CreateDetail(detail); err != nil {
				return err
			}
		}
		committed, err := purchaseRepo.ListDetails(header.ID)
		if err != nil {
			return err
		}
		total := decimal.Zero
		for _, d := range committed {
			total = total.Add(d.Subtotal())
		}
		header.Total = total
		return purchaseRepo.UpdateHeaderTotal(header.ID, total)
	})
	if err != nil {
		return nil, &domain.TransactionFailedError{Cause: err}
	}

	invalidated := f.cache.InvalidateFor(cache.TypePurchase)
	f.log.Info().
		Str("purchase_id", header.ID).
		Str("actor_id", actorID).
		Str("supplier_id", supplierID).
		Str("total", header.Total.String()).
		Int("cache_invalidated", invalidated).
		Msg("compra registrada")
	return header, nil
}
