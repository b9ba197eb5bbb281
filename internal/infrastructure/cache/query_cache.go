// Package cache implementa la caché de resultados de consulta del proceso:
// TTL por tipo de entidad, invalidación cruzada por tabla estática y
// estadísticas. Se construye una sola vez en cmd/api y se inyecta en la
// fachada (nunca un global perezoso).
package cache

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"
	"time"
)

// EntityType etiqueta cada entrada para la invalidación por tipo.
type EntityType string

// Tipos de entidad cacheables.
const (
	TypeProduct         EntityType = "Product"
	TypeSale            EntityType = "Sale"
	TypePurchase        EntityType = "Purchase"
	TypeAggregateStock  EntityType = "AggregateStock"
	TypeDailySalesStats EntityType = "DailySalesStats"
	TypeActiveLots      EntityType = "ActiveLots"
	TypeBrand           EntityType = "Brand"
)

// DefaultTTL se usa cuando el tipo no aparece en la tabla de TTLs.
const DefaultTTL = 300 * time.Second

// ttlByType: tipos de alta rotación expiran rápido; catálogos de referencia
// viven más.
var ttlByType = map[EntityType]time.Duration{
	TypeSale:            60 * time.Second,
	TypeDailySalesStats: 60 * time.Second,
	TypeAggregateStock:  120 * time.Second,
	TypeActiveLots:      120 * time.Second,
	TypePurchase:        300 * time.Second,
	TypeProduct:         600 * time.Second,
	TypeBrand:           1800 * time.Second,
}

// fanOut: qué tipos invalida el commit de cada mutación. Es configuración
// estática; las lecturas aguas abajo asumen exactamente estos conjuntos.
var fanOut = map[EntityType][]EntityType{
	TypeSale:     {TypeSale, TypeProduct, TypeAggregateStock, TypeDailySalesStats},
	TypePurchase: {TypePurchase, TypeProduct, TypeAggregateStock, TypeActiveLots},
}

// FanOutFor devuelve el conjunto de tipos a invalidar al comprometer una
// mutación del tipo dado.
func FanOutFor(mutation EntityType) []EntityType {
	return fanOut[mutation]
}

// MutationKinds enumera las mutaciones con fan-out definido (para tests que
// verifican la tabla completa).
func MutationKinds() []EntityType {
	return []EntityType{TypeSale, TypePurchase}
}

// Fingerprint deriva la clave estable de una consulta: forma + parámetros.
func Fingerprint(shape string, params ...any) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(shape))
	for _, p := range params {
		_, _ = h.Write([]byte{0})
		_, _ = fmt.Fprintf(h, "%v", p)
	}
	return shape + ":" + strconv.FormatUint(h.Sum64(), 16)
}

type entry struct {
	value      any
	entityType EntityType
	expiresAt  time.Time
}

// Stats expone los contadores acumulados de la caché.
type Stats struct {
	Hits          uint64
	Misses        uint64
	HitRate       float64
	EntriesByType map[EntityType]int
}

// Config parametriza la caché.
type Config struct {
	DefaultTTL time.Duration // cero usa DefaultTTL
	SweepEvery int           // cada cuántos Set se barre lo expirado (cero = 128)
	// Now permite inyectar el reloj en tests.
	Now func() time.Time
}

// QueryCache es la caché TTL de resultados, segura para uso concurrente.
// Ninguna operación bloquea más que lo que tarda en adquirir el lock interno.
type QueryCache struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration
	sweepEvery int
	setCount   int
	hits       uint64
	misses     uint64
	now        func() time.Time
}

// New construye la caché.
func New(cfg Config) *QueryCache {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultTTL
	}
	if cfg.SweepEvery <= 0 {
		cfg.SweepEvery = 128
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &QueryCache{
		entries:    make(map[string]entry),
		defaultTTL: cfg.DefaultTTL,
		sweepEvery: cfg.SweepEvery,
		now:        cfg.Now,
	}
}

// Get devuelve el valor cacheado si existe y no expiró. La expiración se
// verifica de forma perezosa aquí.
func (c *QueryCache) Get(fingerprint string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[fingerprint]
	if !ok {
		c.misses++
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, fingerprint)
		c.misses++
		return nil, false
	}
	c.hits++
	return e.value, true
}

// Set guarda un valor con el TTL por defecto del tipo (tabla estática, con
// fallback al TTL global).
func (c *QueryCache) Set(fingerprint string, value any, entityType EntityType) {
	ttl, ok := ttlByType[entityType]
	if !ok {
		ttl = c.defaultTTL
	}
	c.SetTTL(fingerprint, value, entityType, ttl)
}

// SetTTL guarda un valor con TTL explícito (override puntual).
func (c *QueryCache) SetTTL(fingerprint string, value any, entityType EntityType, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fingerprint] = entry{
		value:      value,
		entityType: entityType,
		expiresAt:  c.now().Add(ttl),
	}
	c.setCount++
	if c.setCount%c.sweepEvery == 0 {
		c.sweepLocked()
	}
}

// sweepLocked elimina lo expirado para acotar el crecimiento. Caller con lock.
func (c *QueryCache) sweepLocked() {
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// InvalidateType elimina todas las entradas del tipo y devuelve cuántas.
func (c *QueryCache) InvalidateType(entityType EntityType) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for k, e := range c.entries {
		if e.entityType == entityType {
			delete(c.entries, k)
			count++
		}
	}
	return count
}

// InvalidateFor aplica el fan-out de una mutación comprometida: invalida el
// tipo mutado y sus tipos derivados según la tabla estática.
func (c *QueryCache) InvalidateFor(mutation EntityType) int {
	total := 0
	for _, t := range FanOutFor(mutation) {
		total += c.InvalidateType(t)
	}
	return total
}

// InvalidateAll vacía la caché y devuelve cuántas entradas había.
func (c *QueryCache) InvalidateAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := len(c.entries)
	c.entries = make(map[string]entry)
	return count
}

// Stats devuelve contadores y conteo de entradas vivas por tipo.
func (c *QueryCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	byType := make(map[EntityType]int, len(c.entries))
	for _, e := range c.entries {
		byType[e.entityType]++
	}
	s := Stats{Hits: c.hits, Misses: c.misses, EntriesByType: byType}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}
