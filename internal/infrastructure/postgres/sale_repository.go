package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/LuisSisCode/sistema-clinica/internal/domain/entity"
	"github.com/LuisSisCode/sistema-clinica/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// CreateHeader persiste la cabecera de la venta (total provisional; el
// orquestador lo recalcula desde los detalles comprometidos).
func (r *SaleRepo) CreateHeader(header *entity.SaleHeader) error {
	if header.ID == "" {
		header.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sale_headers (id, total, created_at, actor_id)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(context.Background(), query,
		header.ID, header.Total, header.CreatedAt, header.ActorID,
	)
	if err != nil {
		return fmt.Errorf("insert sale header: %w", err)
	}
	return nil
}

// CreateDetail persiste una línea de detalle ligada a su lote y cabecera.
func (r *SaleRepo) CreateDetail(detail *entity.SaleDetail) error {
	if detail.ID == "" {
		detail.ID = uuid.New().String()
	}
	query := `
		INSERT INTO sale_details (id, header_id, lot_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		detail.ID, detail.HeaderID, detail.LotID, detail.ProductID, detail.Quantity, detail.UnitPrice,
	)
	if err != nil {
		return fmt.Errorf("insert sale detail: %w", err)
	}
	return nil
}

// GetHeader obtiene una cabecera por ID.
func (r *SaleRepo) GetHeader(id string) (*entity.SaleHeader, error) {
	query := `SELECT id, total, created_at, actor_id FROM sale_headers WHERE id = $1`
	var h entity.SaleHeader
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&h.ID, &h.Total, &h.CreatedAt, &h.ActorID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale header: %w", err)
	}
	return &h, nil
}

// ListDetails lista los detalles de una venta en orden de inserción.
func (r *SaleRepo) ListDetails(headerID string) ([]*entity.SaleDetail, error) {
	query := `
		SELECT id, header_id, lot_id, product_id, quantity, unit_price
		FROM sale_details WHERE header_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, headerID)
	if err != nil {
		return nil, fmt.Errorf("list sale details: %w", err)
	}
	defer rows.Close()
	var list []*entity.SaleDetail
	for rows.Next() {
		var d entity.SaleDetail
		if err := rows.Scan(&d.ID, &d.HeaderID, &d.LotID, &d.ProductID, &d.Quantity, &d.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan sale detail: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// UpdateHeaderTotal fija el total definitivo (suma de subtotales comprometidos).
func (r *SaleRepo) UpdateHeaderTotal(id string, total decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE sale_headers SET total = $2 WHERE id = $1`, id, total)
	if err != nil {
		return fmt.Errorf("update sale total: %w", err)
	}
	return nil
}

// DeleteDetails elimina todos los detalles de una venta (anulación).
func (r *SaleRepo) DeleteDetails(headerID string) error {
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM sale_details WHERE header_id = $1`, headerID)
	if err != nil {
		return fmt.Errorf("delete sale details: %w", err)
	}
	return nil
}

// DeleteHeader elimina la cabecera (anulación).
func (r *SaleRepo) DeleteHeader(id string) error {
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM sale_headers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sale header: %w", err)
	}
	return nil
}

// SumTotalsByDay suma los totales de las ventas del día indicado (UTC).
func (r *SaleRepo) SumTotalsByDay(day time.Time) (decimal.Decimal, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	query := `
		SELECT COALESCE(SUM(total), 0) FROM sale_headers
		WHERE created_at >= $1 AND created_at < $2`
	var sum decimal.Decimal
	if err := r.q.QueryRow(context.Background(), query, start, end).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum sales by day: %w", err)
	}
	return sum, nil
}
