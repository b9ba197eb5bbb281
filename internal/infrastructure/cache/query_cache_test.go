package cache_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuisSisCode/sistema-clinica/internal/infrastructure/cache"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// fakeClock permite avanzar el tiempo a mano para probar expiración.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fingerprint
// ──────────────────────────────────────────────────────────────────────────────

func TestFingerprint_EstableYSensible(t *testing.T) {
	f1 := cache.Fingerprint("stock_by_code", "P001")
	f2 := cache.Fingerprint("stock_by_code", "P001")
	f3 := cache.Fingerprint("stock_by_code", "P002")
	f4 := cache.Fingerprint("product_by_code", "P001")

	assert.Equal(t, f1, f2, "misma forma y parámetros producen la misma clave")
	assert.NotEqual(t, f1, f3, "parámetros distintos producen claves distintas")
	assert.NotEqual(t, f1, f4, "formas distintas producen claves distintas")
}

// ──────────────────────────────────────────────────────────────────────────────
// Get/Set y TTL por tipo
// ──────────────────────────────────────────────────────────────────────────────

func TestGetSet_HitYMiss(t *testing.T) {
	c := cache.New(cache.Config{})

	_, ok := c.Get("nada")
	assert.False(t, ok)

	c.Set("k1", 42, cache.TypeProduct)
	v, ok := c.Get("k1")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 0.001)
}

// La tabla estática de TTLs gobierna la expiración: una venta (60s) expira
// antes que un producto (600s). La expiración se observa de forma perezosa
// en Get.
func TestTTLPorTipo_ExpiracionPerezosa(t *testing.T) {
	clock := newFakeClock()
	c := cache.New(cache.Config{Now: clock.Now})

	c.Set("venta", "v", cache.TypeSale)
	c.Set("producto", "p", cache.TypeProduct)

	clock.Advance(61 * time.Second)

	_, ok := c.Get("venta")
	assert.False(t, ok, "la entrada Sale (60s) debe haber expirado")
	_, ok = c.Get("producto")
	assert.True(t, ok, "la entrada Product (600s) sigue viva")
}

// Un tipo fuera de la tabla usa el TTL global por defecto (300s).
func TestTTLPorDefecto(t *testing.T) {
	clock := newFakeClock()
	c := cache.New(cache.Config{Now: clock.Now})

	c.Set("x", 1, cache.EntityType("Desconocido"))

	clock.Advance(299 * time.Second)
	_, ok := c.Get("x")
	assert.True(t, ok)

	clock.Advance(2 * time.Second)
	_, ok = c.Get("x")
	assert.False(t, ok)
}

// SetTTL permite un override puntual sobre la tabla.
func TestSetTTL_Override(t *testing.T) {
	clock := newFakeClock()
	c := cache.New(cache.Config{Now: clock.Now})

	c.SetTTL("corto", 1, cache.TypeProduct, 5*time.Second)

	clock.Advance(6 * time.Second)
	_, ok := c.Get("corto")
	assert.False(t, ok)
}

// El barrido oportunista cada N Set elimina lo expirado aunque nadie lo lea.
func TestSweep_AcotaCrecimiento(t *testing.T) {
	clock := newFakeClock()
	c := cache.New(cache.Config{Now: clock.Now, SweepEvery: 4})

	c.Set("a", 1, cache.TypeSale)
	c.Set("b", 2, cache.TypeSale)
	clock.Advance(61 * time.Second) // ambas expiradas

	c.Set("c", 3, cache.TypeSale)
	c.Set("d", 4, cache.TypeSale) // cuarto Set: dispara el barrido

	stats := c.Stats()
	assert.Equal(t, 2, stats.EntriesByType[cache.TypeSale],
		"solo deben quedar las dos entradas vivas")
}

// ──────────────────────────────────────────────────────────────────────────────
// Invalidación
// ──────────────────────────────────────────────────────────────────────────────

func TestInvalidateType_SoloElTipo(t *testing.T) {
	c := cache.New(cache.Config{})
	c.Set("p1", 1, cache.TypeProduct)
	c.Set("p2", 2, cache.TypeProduct)
	c.Set("s1", 3, cache.TypeSale)

	n := c.InvalidateType(cache.TypeProduct)

	assert.Equal(t, 2, n)
	_, ok := c.Get("s1")
	assert.True(t, ok, "las entradas de otros tipos no se tocan")
}

func TestInvalidateAll(t *testing.T) {
	c := cache.New(cache.Config{})
	c.Set("a", 1, cache.TypeProduct)
	c.Set("b", 2, cache.TypeSale)

	assert.Equal(t, 2, c.InvalidateAll())
	assert.Empty(t, c.Stats().EntriesByType)
}

// La tabla de fan-out debe reproducirse exactamente: este test enumera todas
// las mutaciones y verifica su conjunto de invalidación contra la tabla
// acordada (las lecturas aguas abajo asumen estos conjuntos).
func TestFanOut_TablaCompleta(t *testing.T) {
	want := map[cache.EntityType][]cache.EntityType{
		cache.TypeSale: {
			cache.TypeSale, cache.TypeProduct,
			cache.TypeAggregateStock, cache.TypeDailySalesStats,
		},
		cache.TypePurchase: {
			cache.TypePurchase, cache.TypeProduct,
			cache.TypeAggregateStock, cache.TypeActiveLots,
		},
	}

	kinds := cache.MutationKinds()
	require.Len(t, kinds, len(want), "toda mutación debe estar en la tabla")
	for _, kind := range kinds {
		assert.Equal(t, want[kind], cache.FanOutFor(kind),
			"fan-out de %s", kind)
	}
}

// InvalidateFor aplica el fan-out: comprometer una venta invalida Sale,
// Product, AggregateStock y DailySalesStats pero no ActiveLots.
func TestInvalidateFor_Venta(t *testing.T) {
	c := cache.New(cache.Config{})
	c.Set("s", 1, cache.TypeSale)
	c.Set("p", 2, cache.TypeProduct)
	c.Set("agg", 3, cache.TypeAggregateStock)
	c.Set("daily", 4, cache.TypeDailySalesStats)
	c.Set("lots", 5, cache.TypeActiveLots)

	n := c.InvalidateFor(cache.TypeSale)

	assert.Equal(t, 4, n)
	_, ok := c.Get("lots")
	assert.True(t, ok, "ActiveLots no pertenece al fan-out de Sale")
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia
// ──────────────────────────────────────────────────────────────────────────────

// Lecturas, escrituras e invalidaciones concurrentes no deben corromper la
// caché (correr con -race).
func TestConcurrencia(t *testing.T) {
	c := cache.New(cache.Config{})
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("k-%d-%d", n, j%10)
				c.Set(key, j, cache.TypeProduct)
				c.Get(key)
				if j%50 == 0 {
					c.InvalidateFor(cache.TypeSale)
				}
			}
		}(i)
	}
	wg.Wait()

	stats := c.Stats()
	assert.Positive(t, stats.Hits+stats.Misses)
}
