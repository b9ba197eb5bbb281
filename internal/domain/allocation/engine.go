// Package allocation implementa el motor de asignación FIFO por vencimiento
// (servicio de dominio puro: sin efectos, sin acceso a datos).
package allocation

import (
	"time"

	"github.com/LuisSisCode/sistema-clinica/internal/domain/entity"
)

// Estados de vencimiento de un lote.
const (
	StateValid        = "VALID"
	StateExpiringSoon = "EXPIRING_SOON" // dentro del horizonte configurable
	StateExpired      = "EXPIRED"
)

// DefaultExpiryHorizon es el horizonte por defecto para EXPIRING_SOON.
const DefaultExpiryHorizon = 90 * 24 * time.Hour

// Config parametriza el motor.
type Config struct {
	// ExpiryHorizon define cuánto antes del vencimiento un lote pasa a
	// EXPIRING_SOON. Cero usa DefaultExpiryHorizon.
	ExpiryHorizon time.Duration
	// AllowExpired permite extraer de lotes vencidos (override explícito,
	// ej. venta autorizada de producto próximo a destrucción). Aun con el
	// override, los lotes vencidos jamás suman a TotalAvailable.
	AllowExpired bool
}

// Entry es una extracción planificada de un lote concreto.
type Entry struct {
	LotID          string
	QuantityToTake int64
	ExpiryState    string
}

// Result es el resultado estructurado del plan. El motor nunca devuelve
// error: el caller decide si Shortfall > 0 es fatal.
type Result struct {
	Available      bool
	Plan           []Entry
	TotalAvailable int64
	Shortfall      int64
	HasExpiredLots bool
}

// Engine decide de qué lotes extraer y cuánto de cada uno.
type Engine struct {
	cfg Config
}

// NewEngine construye el motor con la configuración dada.
func NewEngine(cfg Config) *Engine {
	if cfg.ExpiryHorizon <= 0 {
		cfg.ExpiryHorizon = DefaultExpiryHorizon
	}
	return &Engine{cfg: cfg}
}

// Classify devuelve el estado de vencimiento de un lote respecto a now.
func (e *Engine) Classify(lot *entity.Lot, now time.Time) string {
	if lot.ExpiryDate == nil {
		return StateValid
	}
	if lot.ExpiryDate.Before(now) {
		return StateExpired
	}
	if lot.ExpiryDate.Before(now.Add(e.cfg.ExpiryHorizon)) {
		return StateExpiringSoon
	}
	return StateValid
}

// Plan recorre los lotes en el orden recibido (el Lot Store garantiza
// vencimiento ascendente, sin-vencimiento al final) y acumula
// min(remanente, faltante) por lote hasta satisfacer la cantidad pedida o
// agotar los lotes. Los lotes vencidos se saltan salvo AllowExpired, y en
// ningún caso cuentan hacia TotalAvailable: la disponibilidad reportada es
// siempre stock vendible.
func (e *Engine) Plan(lots []*entity.Lot, requested int64, now time.Time) Result {
	res := Result{Plan: []Entry{}}
	if requested <= 0 {
		res.Available = true
		return res
	}

	still := requested
	for _, lot := range lots {
		if lot.RemainingQuantity <= 0 {
			continue
		}
		state := e.Classify(lot, now)
		if state == StateExpired {
			res.HasExpiredLots = true
			if !e.cfg.AllowExpired {
				continue
			}
		} else {
			res.TotalAvailable += lot.RemainingQuantity
		}
		if still <= 0 {
			continue // seguir sumando disponibilidad del resto de lotes
		}
		take := lot.RemainingQuantity
		if take > still {
			take = still
		}
		res.Plan = append(res.Plan, Entry{
			LotID:          lot.ID,
			QuantityToTake: take,
			ExpiryState:    state,
		})
		still -= take
	}

	if still > 0 {
		res.Shortfall = still
	}
	res.Available = res.Shortfall == 0
	return res
}
