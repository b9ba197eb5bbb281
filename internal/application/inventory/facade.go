// Package inventory expone la fachada del libro de inventario: la única
// superficie que consumen los demás módulos (citas, laboratorio, UI). Las
// lecturas pasan por la caché de consultas; las escrituras siempre van por
// el orquestador de mutaciones, nunca lo saltan.
package inventory

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LuisSisCode/sistema-clinica/internal/domain"
	"github.com/LuisSisCode/sistema-clinica/internal/domain/allocation"
	"github.com/LuisSisCode/sistema-clinica/internal/domain/entity"
	"github.com/LuisSisCode/sistema-clinica/internal/domain/repository"
	"github.com/LuisSisCode/sistema-clinica/internal/infrastructure/cache"
	"github.com/LuisSisCode/sistema-clinica/pkg/logger"
)

// DefaultAnulWindow ventana por defecto para anular una venta.
const DefaultAnulWindow = 24 * time.Hour

// Config parametriza la fachada.
type Config struct {
	// ExpiryHorizon y AllowExpired van al motor de asignación.
	ExpiryHorizon time.Duration
	AllowExpired  bool
	// AnulWindow es el tiempo máximo desde la venta para poder anularla.
	// Cero usa DefaultAnulWindow.
	AnulWindow time.Duration
}

// Facade compone Lot Store, motor de asignación y caché de consultas.
type Facade struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	lotRepo      repository.LotRepository
	saleRepo     repository.SaleRepository
	purchaseRepo repository.PurchaseRepository
	cache        *cache.QueryCache
	engine       *allocation.Engine
	anulWindow   time.Duration
	log          *logger.Logger

	// mu serializa todas las mutaciones que tocan lotes: ventas, compras y
	// anulaciones comparten dominio de lock porque todas mutan lots. El
	// decremento condicional en el Lot Store es el respaldo final de
	// corrección ante carreras.
	mu sync.Mutex

	// now inyectable en tests.
	now func() time.Time
}

// NewFacade construye la fachada. La caché se recibe ya construida (una sola
// instancia por proceso, creada en cmd/api e inyectada aquí).
func NewFacade(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	lotRepo repository.LotRepository,
	saleRepo repository.SaleRepository,
	purchaseRepo repository.PurchaseRepository,
	qc *cache.QueryCache,
	cfg Config,
	log *logger.Logger,
) *Facade {
	if cfg.AnulWindow <= 0 {
		cfg.AnulWindow = DefaultAnulWindow
	}
	return &Facade{
		txRunner:     txRunner,
		productRepo:  productRepo,
		lotRepo:      lotRepo,
		saleRepo:     saleRepo,
		purchaseRepo: purchaseRepo,
		cache:        qc,
		engine: allocation.NewEngine(allocation.Config{
			ExpiryHorizon: cfg.ExpiryHorizon,
			AllowExpired:  cfg.AllowExpired,
		}),
		anulWindow: cfg.AnulWindow,
		log:        log,
		now:        time.Now,
	}
}

// cachedGet devuelve el valor cacheado tipado, o false para ejecutar la
// consulta. Un valor de tipo inesperado se trata como miss y se loguea: un
// fallo de caché degrada a "siempre miss", nunca bloquea una lectura.
func cachedGet[T any](f *Facade, fingerprint string, forceFresh bool) (T, bool) {
	var zero T
	if forceFresh {
		return zero, false
	}
	raw, ok := f.cache.Get(fingerprint)
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		f.log.Warn().Str("fingerprint", fingerprint).Msg("entrada de caché con tipo inesperado, se ignora")
		return zero, false
	}
	return v, true
}

// GetStock devuelve el stock derivado de un producto: la suma de los
// remanentes de todos sus lotes (nunca se guarda redundante). forceFresh
// salta la caché, para callers que acaban de escribir.
func (f *Facade) GetStock(code string, forceFresh bool) (int64, error) {
	fp := cache.Fingerprint("stock_by_code", code)
	if v, ok := cachedGet[int64](f, fp, forceFresh); ok {
		return v, nil
	}

	product, err := f.productRepo.GetByCode(code)
	if err != nil {
		return 0, err
	}
	if product == nil {
		return 0, domain.ErrProductNotFound
	}
	lots, err := f.lotRepo.ListActive(product.ID)
	if err != nil {
		return 0, err
	}
	var stock int64
	for _, l := range lots {
		stock += l.RemainingQuantity
	}
	f.cache.Set(fp, stock, cache.TypeAggregateStock)
	return stock, nil
}

// CheckAvailability corre el motor de asignación sobre los lotes activos y
// devuelve el plan FIFO. No cachea: el caller decide con datos actuales.
func (f *Facade) CheckAvailability(code string, quantity int64) (allocation.Result, error) {
	product, err := f.productRepo.GetByCode(code)
	if err != nil {
		return allocation.Result{}, err
	}
	if product == nil {
		return allocation.Result{}, domain.ErrProductNotFound
	}
	lots, err := f.lotRepo.ListActive(product.ID)
	if err != nil {
		return allocation.Result{}, err
	}
	return f.engine.Plan(lots, quantity, f.now()), nil
}

// GetProduct devuelve un producto por código (lectura cacheada).
func (f *Facade) GetProduct(code string, forceFresh bool) (*entity.Product, error) {
	fp := cache.Fingerprint("product_by_code", code)
	if v, ok := cachedGet[*entity.Product](f, fp, forceFresh); ok {
		return v, nil
	}
	product, err := f.productRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	f.cache.Set(fp, product, cache.TypeProduct)
	return product, nil
}

// ListActiveLots devuelve los lotes activos de un producto en orden FIFO
// (lectura cacheada).
func (f *Facade) ListActiveLots(code string, forceFresh bool) ([]*entity.Lot, error) {
	fp := cache.Fingerprint("active_lots_by_code", code)
	if v, ok := cachedGet[[]*entity.Lot](f, fp, forceFresh); ok {
		return v, nil
	}
	product, err := f.productRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	lots, err := f.lotRepo.ListActive(product.ID)
	if err != nil {
		return nil, err
	}
	f.cache.Set(fp, lots, cache.TypeActiveLots)
	return lots, nil
}

// DailySalesTotal devuelve la suma de los totales de venta del día (UTC),
// cacheada como estadística de alta rotación.
func (f *Facade) DailySalesTotal(day time.Time, forceFresh bool) (decimal.Decimal, error) {
	fp := cache.Fingerprint("daily_sales_total", day.UTC().Format("2006-01-02"))
	if v, ok := cachedGet[decimal.Decimal](f, fp, forceFresh); ok {
		return v, nil
	}
	sum, err := f.saleRepo.SumTotalsByDay(day)
	if err != nil {
		return decimal.Zero, err
	}
	f.cache.Set(fp, sum, cache.TypeDailySalesStats)
	return sum, nil
}

// CacheStats expone las estadísticas de la caché (diagnóstico).
func (f *Facade) CacheStats() cache.Stats {
	return f.cache.Stats()
}
