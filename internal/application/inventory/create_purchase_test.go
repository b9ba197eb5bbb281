package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuisSisCode/sistema-clinica/internal/application/dto"
	"github.com/LuisSisCode/sistema-clinica/internal/domain"
)

func purchaseItem(code string, qty, cost int64, expiry string) dto.PurchaseItemInput {
	item := dto.PurchaseItemInput{Code: code, Quantity: qty, UnitCost: decimal.NewFromInt(cost)}
	if expiry != "" {
		d, err := time.Parse("2006-01-02", expiry)
		if err != nil {
			panic(err)
		}
		item.Expiry = &d
	}
	return item
}

// Cada línea de compra crea exactamente un lote nuevo y un detalle que lo
// referencia; el total es la suma de cantidad * costo por línea.
func TestCreatePurchase_CreaLotesYDetalles(t *testing.T) {
	env := newTestEnv(Config{})
	p := env.seedProduct("p1", "P001", 10)

	header, err := env.facade.CreatePurchase(context.Background(), "actor-1", "prov-1", []dto.PurchaseItemInput{
		purchaseItem("P001", 10, 3, "2025-06-01"),
		purchaseItem("P001", 20, 2, ""),
	})

	require.NoError(t, err)
	require.NotEmpty(t, header.ID)
	assert.Equal(t, "prov-1", header.SupplierID)
	assert.True(t, header.Total.Equal(decimal.NewFromInt(70)), "total = %s", header.Total)

	require.Len(t, env.store.lots, 2)
	details, err := env.facade.purchaseRepo.ListDetails(header.ID)
	require.NoError(t, err)
	require.Len(t, details, 2, "un detalle por lote creado")
	for _, d := range details {
		lot, ok := env.store.lots[d.LotID]
		require.True(t, ok, "el detalle debe referenciar un lote existente")
		assert.Equal(t, p.ID, lot.ProductID)
		assert.Equal(t, d.Quantity, lot.RemainingQuantity, "el lote nace con el remanente completo")
		assert.True(t, d.UnitPrice.Equal(lot.UnitCost))
	}
}

// El stock del producto sube tras la compra y la lectura cacheada previa se
// invalida por el fan-out de Purchase.
func TestCreatePurchase_ActualizaStockYCache(t *testing.T) {
	env := newTestEnv(Config{})
	p := env.seedProduct("p1", "P001", 10)
	env.seedLot("l1", p.ID, 5, "2025-06-01")

	before, err := env.facade.GetStock("P001", false)
	require.NoError(t, err)
	require.Equal(t, int64(5), before)

	lotsBefore, err := env.facade.ListActiveLots("P001", false)
	require.NoError(t, err)
	require.Len(t, lotsBefore, 1)

	_, err = env.facade.CreatePurchase(context.Background(), "actor-1", "prov-1", []dto.PurchaseItemInput{
		purchaseItem("P001", 10, 3, "2025-09-01"),
	})
	require.NoError(t, err)

	after, err := env.facade.GetStock("P001", false)
	require.NoError(t, err)
	assert.Equal(t, int64(15), after)

	lotsAfter, err := env.facade.ListActiveLots("P001", false)
	require.NoError(t, err)
	assert.Len(t, lotsAfter, 2, "la compra debe invalidar la lista de lotes cacheada")
}

// Un fallo a mitad de la compra revierte también los lotes ya creados por
// esa misma compra.
func TestCreatePurchase_FalloRevierteLotesCreados(t *testing.T) {
	env := newTestEnv(Config{})
	env.seedProduct("p1", "P001", 10)
	env.store.failures["purchase.CreateDetail"] = errors.New("conexión perdida")

	_, err := env.facade.CreatePurchase(context.Background(), "actor-1", "prov-1", []dto.PurchaseItemInput{
		purchaseItem("P001", 10, 3, "2025-06-01"),
	})

	var txErr *domain.TransactionFailedError
	require.ErrorAs(t, err, &txErr)
	assert.Empty(t, env.store.lots, "los lotes de la compra fallida no deben quedar")
	assert.Empty(t, env.store.purchaseHeaders)
	assert.Empty(t, env.store.purchaseDetails)
}

func TestCreatePurchase_ProductoInexistente(t *testing.T) {
	env := newTestEnv(Config{})

	_, err := env.facade.CreatePurchase(context.Background(), "actor-1", "prov-1", []dto.PurchaseItemInput{
		purchaseItem("NO-EXISTE", 10, 3, ""),
	})

	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCreatePurchase_EntradaInvalida(t *testing.T) {
	env := newTestEnv(Config{})
	env.seedProduct("p1", "P001", 10)

	cases := map[string]struct {
		supplierID string
		items      []dto.PurchaseItemInput
	}{
		"sin proveedor":  {"", []dto.PurchaseItemInput{purchaseItem("P001", 1, 3, "")}},
		"sin líneas":     {"prov-1", nil},
		"cantidad cero":  {"prov-1", []dto.PurchaseItemInput{purchaseItem("P001", 0, 3, "")}},
		"costo negativo": {"prov-1", []dto.PurchaseItemInput{purchaseItem("P001", 1, -3, "")}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.facade.CreatePurchase(context.Background(), "actor-1", tc.supplierID, tc.items)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}
