package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/LuisSisCode/sistema-clinica/internal/domain"
	"github.com/LuisSisCode/sistema-clinica/internal/domain/entity"
	"github.com/LuisSisCode/sistema-clinica/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// ListActive devuelve los lotes con remanente > 0 de un producto en orden
// FIFO: vencimiento ascendente, sin-vencimiento al final, desempate por
// created_at y luego id. El orden debe ser determinista (es la política de
// asignación).
func (r *LotRepo) ListActive(productID string) ([]*entity.Lot, error) {
	query := `
		SELECT id, product_id, remaining_quantity, expiry_date, unit_cost, created_at
		FROM lots
		WHERE product_id = $1 AND remaining_quantity > 0
		ORDER BY expiry_date ASC NULLS LAST, created_at ASC, id ASC`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list active lots: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		var l entity.Lot
		if err := rows.Scan(&l.ID, &l.ProductID, &l.RemainingQuantity, &l.ExpiryDate,
			&l.UnitCost, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// GetByID obtiene un lote por ID.
func (r *LotRepo) GetByID(id string) (*entity.Lot, error) {
	query := `
		SELECT id, product_id, remaining_quantity, expiry_date, unit_cost, created_at
		FROM lots WHERE id = $1`
	var l entity.Lot
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&l.ID, &l.ProductID, &l.RemainingQuantity, &l.ExpiryDate, &l.UnitCost, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return &l, nil
}

// Create persiste un lote nuevo (una línea de compra crea un lote).
func (r *LotRepo) Create(lot *entity.Lot) error {
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	query := `
		INSERT INTO lots (id, product_id, remaining_quantity, expiry_date, unit_cost, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		lot.ID, lot.ProductID, lot.RemainingQuantity, lot.ExpiryDate, lot.UnitCost, lot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

// Decrement resta amount del remanente de forma condicional y atómica: el
// UPDATE solo aplica si el remanente alcanza, así una modificación
// concurrente nunca produce un decremento parcial ni un remanente negativo.
func (r *LotRepo) Decrement(lotID string, amount int64) (int64, error) {
	query := `
		UPDATE lots SET remaining_quantity = remaining_quantity - $2
		WHERE id = $1 AND remaining_quantity >= $2
		RETURNING remaining_quantity`
	var remaining int64
	err := r.q.QueryRow(context.Background(), query, lotID, amount).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguir lote inexistente de remanente insuficiente.
			lot, gerr := r.GetByID(lotID)
			if gerr != nil {
				return 0, gerr
			}
			if lot == nil {
				return 0, domain.ErrLotNotFound
			}
			return 0, domain.ErrInsufficientLotStock
		}
		if isCheckViolation(err) {
			return 0, domain.ErrInsufficientLotStock
		}
		return 0, fmt.Errorf("decrement lot: %w", err)
	}
	return remaining, nil
}

// Increment suma amount al remanente (delta inverso de una anulación).
func (r *LotRepo) Increment(lotID string, amount int64) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE lots SET remaining_quantity = remaining_quantity + $2 WHERE id = $1`,
		lotID, amount,
	)
	if err != nil {
		return fmt.Errorf("increment lot: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrLotNotFound
	}
	return nil
}

// Delete elimina el lote. Solo se usa para revertir la compra que lo creó.
func (r *LotRepo) Delete(lotID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM lots WHERE id = $1`, lotID)
	if err != nil {
		return fmt.Errorf("delete lot: %w", err)
	}
	return nil
}
