package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/LuisSisCode/sistema-clinica/internal/application/dto"
	"github.com/LuisSisCode/sistema-clinica/internal/domain"
	"github.com/LuisSisCode/sistema-clinica/internal/domain/allocation"
	"github.com/LuisSisCode/sistema-clinica/internal/domain/entity"
	"github.com/LuisSisCode/sistema-clinica/internal/domain/repository"
	"github.com/LuisSisCode/sistema-clinica/internal/infrastructure/cache"
)

// pendingSaleItem es una línea validada con su plan de asignación ya
// resuelto, lista para escribirse.
type pendingSaleItem struct {
	product *entity.Product
	price   decimal.Decimal
	plan    allocation.Result
}

// CreateSale ejecuta una venta como unidad atómica:
//
//	VALIDATING/ALLOCATING: por cada línea verifica el producto y resuelve el
//	plan FIFO completo ANTES de escribir nada; cualquier fallo sale directo
//	sin cabecera parcial.
//	WRITING: dentro de la transacción inserta la cabecera (total
//	provisional), decrementa cada lote del plan e inserta un detalle por
//	lote consumido.
//	COMMITTING: recalcula el total desde los detalles comprometidos (no
//	desde la estimación), lo persiste y hace commit.
//
// Un fallo de escritura (ej. modificación concurrente que dejó el lote
// corto) revierte la transacción completa y se devuelve como
// TransactionFailedError. Tras el commit se invalida la caché según el
// fan-out de Sale, de forma síncrona.
func (f *Facade) CreateSale(ctx context.Context, actorID string, items []dto.SaleItemInput) (*entity.SaleHeader, error) {
	if len(items) == 0 {
		return nil, domain.ErrInvalidInput
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	pending := make([]pendingSaleItem, 0, len(items))
	for _, item := range items {
		if item.Code == "" || item.Quantity <= 0 {
			return nil, domain.ErrInvalidInput
		}
		product, err := f.productRepo.GetByCode(item.Code)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, fmt.Errorf("%s: %w", item.Code, domain.ErrProductNotFound)
		}
		lots, err := f.lotRepo.ListActive(product.ID)
		if err != nil {
			return nil, err
		}
		plan := f.engine.Plan(lots, item.Quantity, now)
		if !plan.Available {
			return nil, &domain.StockInsufficientError{
				Code:      item.Code,
				Available: plan.TotalAvailable,
				Requested: item.Quantity,
			}
		}
		pending = append(pending, pendingSaleItem{product: product, price: item.Price, plan: plan})
	}

	header := &entity.SaleHeader{Total: decimal.Zero, CreatedAt: now, ActorID: actorID}
	err := f.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		_ repository.ProductRepository,
		saleRepo repository.SaleRepository,
		_ repository.PurchaseRepository,
	) error {
		// Cabecera antes que detalles: el orden de escritura garantiza que
		// quien observe la invalidación de caché vea un store al menos tan
		// fresco como el commit.
		if err := saleRepo.CreateHeader(header); err != nil {
			return err
		}
		for _, p := range pending {
			for _, e := range p.plan.Plan {
				// Chequeo defensivo final: si otro proceso dejó el lote
				// corto, Decrement falla y revierte todo.
				if _, err := lotRepo.Decrement(e.LotID, e.QuantityToTake); err != nil {
					return err
				}
				detail := &entity.SaleDetail{
					HeaderID:  header.ID,
					LotID:     e.LotID,
					ProductID: p.product.ID,
					Quantity:  e.QuantityToTake,
					UnitPrice: p.price,
				}
				if err := saleRepo.CreateDetail(detail); err != nil {
					return err
				}
			}
		}
		// Total definitivo desde los detalles comprometidos.
		committed, err := saleRepo.ListDetails(header.ID)
		if err != nil {
			return err
		}
		total := decimal.Zero
		for _, d := range committed {
			total = total.Add(d.Subtotal())
		}
		header.Total = total
		return saleRepo.UpdateHeaderTotal(header.ID, total)
	})
	if err != nil {
		return nil, &domain.TransactionFailedError{Cause: err}
	}

	// Invalidación síncrona, después de todas las escrituras.
	invalidated := f.cache.InvalidateFor(cache.TypeSale)
	f.log.Info().
		Str("sale_id", header.ID).
		Str("actor_id", actorID).
		Str("total", header.Total.String()).
		Int("cache_invalidated", invalidated).
		Msg("venta registrada")
	return header, nil
}
