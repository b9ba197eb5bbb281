package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/LuisSisCode/sistema-clinica/internal/domain"
	"github.com/LuisSisCode/sistema-clinica/internal/domain/repository"
	"github.com/LuisSisCode/sistema-clinica/internal/infrastructure/cache"
)

// AnulSale anula una venta comprometida: el único mecanismo para deshacerla
// (borrar-y-revertir, nunca editar en sitio). Reincrementa cada lote
// referenciado por sus detalles, borra los detalles y borra la cabecera,
// todo en una transacción.
//
// Guardas previas a cualquier escritura:
//   - la venta debe existir (anular dos veces falla: ya no hay cabecera);
//   - no debe haber pasado más que la ventana configurada desde la venta;
//   - el total de la cabecera debe coincidir con la suma de subtotales de
//     sus detalles (guarda contra corrupción de datos).
func (f *Facade) AnulSale(ctx context.Context, saleID, reason, actorID string) error {
	if saleID == "" {
		return domain.ErrInvalidInput
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	header, err := f.saleRepo.GetHeader(saleID)
	if err != nil {
		return err
	}
	if header == nil {
		return &domain.AnulmentNotAllowedError{Reason: "la venta no existe o ya fue anulada"}
	}
	if elapsed := f.now().Sub(header.CreatedAt); elapsed > f.anulWindow {
		return &domain.AnulmentNotAllowedError{
			Reason: fmt.Sprintf("la venta excede la ventana de anulación (%s)", f.anulWindow),
		}
	}

	details, err := f.saleRepo.ListDetails(saleID)
	if err != nil {
		return err
	}
	sum := decimal.Zero
	for _, d := range details {
		sum = sum.Add(d.Subtotal())
	}
	if !sum.Equal(header.Total) {
		return &domain.IntegrityViolationError{
			Details: fmt.Sprintf("venta %s: total %s no coincide con suma de detalles %s",
				saleID, header.Total, sum),
		}
	}

	err = f.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		_ repository.ProductRepository,
		saleRepo repository.SaleRepository,
		_ repository.PurchaseRepository,
	) error {
		// Delta inverso: devolver a cada lote exactamente lo que la venta
		// le quitó.
		for _, d := range details {
			if err := lotRepo.Increment(d.LotID, d.Quantity); err != nil {
				return err
			}
		}
		if err := saleRepo.DeleteDetails(saleID); err != nil {
			return err
		}
		return saleRepo.DeleteHeader(saleID)
	})
	if err != nil {
		return &domain.TransactionFailedError{Cause: err}
	}

	invalidated := f.cache.InvalidateFor(cache.TypeSale)
	f.log.Info().
		Str("sale_id", saleID).
		Str("actor_id", actorID).
		Str("reason", reason).
		Int("cache_invalidated", invalidated).
		Msg("venta anulada")
	return nil
}
