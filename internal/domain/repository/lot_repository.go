package repository

import "github.com/LuisSisCode/sistema-clinica/internal/domain/entity"

// LotRepository define el puerto de persistencia para los lotes.
// Las escrituras se usan dentro de la transacción del orquestador; el
// repositorio en sí no hace commits.
type LotRepository interface {
	// ListActive devuelve los lotes con remanente > 0 de un producto,
	// ordenados por vencimiento ascendente, los sin-vencimiento al final,
	// desempate por fecha de creación y luego por id. Este orden ES la
	// política FIFO y debe ser determinista.
	ListActive(productID string) ([]*entity.Lot, error)
	GetByID(id string) (*entity.Lot, error)
	Create(lot *entity.Lot) error
	// Decrement resta amount del remanente y devuelve el nuevo valor.
	// Falla con domain.ErrInsufficientLotStock si amount > remanente actual
	// (chequeo defensivo: el caller ya validó vía el motor de asignación).
	Decrement(lotID string, amount int64) (int64, error)
	// Increment suma amount al remanente (delta inverso de una anulación).
	Increment(lotID string, amount int64) error
	// Delete elimina el lote; solo para revertir la compra que lo creó.
	Delete(lotID string) error
}
