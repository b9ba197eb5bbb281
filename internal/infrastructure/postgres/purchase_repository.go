package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/LuisSisCode/sistema-clinica/internal/domain/entity"
	"github.com/LuisSisCode/sistema-clinica/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo implementación de PurchaseRepository sobre PostgreSQL (usable con pool o tx).
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador de compras. Pasar pool o tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

// CreateHeader persiste la cabecera de la compra.
func (r *PurchaseRepo) CreateHeader(header *entity.PurchaseHeader) error {
	if header.ID == "" {
		header.ID = uuid.New().String()
	}
	query := `
		INSERT INTO purchase_headers (id, total, created_at, actor_id, supplier_id)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		header.ID, header.Total, header.CreatedAt, header.ActorID, header.SupplierID,
	)
	if err != nil {
		return fmt.Errorf("insert purchase header: %w", err)
	}
	return nil
}

// CreateDetail persiste una línea de compra ligada al lote que creó.
func (r *PurchaseRepo) CreateDetail(detail *entity.PurchaseDetail) error {
	if detail.ID == "" {
		detail.ID = uuid.New().String()
	}
	query := `
		INSERT INTO purchase_details (id, header_id, lot_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		detail.ID, detail.HeaderID, detail.LotID, detail.ProductID, detail.Quantity, detail.UnitPrice,
	)
	if err != nil {
		return fmt.Errorf("insert purchase detail: %w", err)
	}
	return nil
}

// GetHeader obtiene una cabecera por ID.
func (r *PurchaseRepo) GetHeader(id string) (*entity.PurchaseHeader, error) {
	query := `SELECT id, total, created_at, actor_id, supplier_id FROM purchase_headers WHERE id = $1`
	var h entity.PurchaseHeader
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&h.ID, &h.Total, &h.CreatedAt, &h.ActorID, &h.SupplierID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase header: %w", err)
	}
	return &h, nil
}

// ListDetails lista los detalles de una compra en orden de inserción.
func (r *PurchaseRepo) ListDetails(headerID string) ([]*entity.PurchaseDetail, error) {
	query := `
		SELECT id, header_id, lot_id, product_id, quantity, unit_price
		FROM purchase_details WHERE header_id = $1 ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, headerID)
	if err != nil {
		return nil, fmt.Errorf("list purchase details: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchaseDetail
	for rows.Next() {
		var d entity.PurchaseDetail
		if err := rows.Scan(&d.ID, &d.HeaderID, &d.LotID, &d.ProductID, &d.Quantity, &d.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan purchase detail: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// UpdateHeaderTotal fija el total definitivo (suma de subtotales comprometidos).
func (r *PurchaseRepo) UpdateHeaderTotal(id string, total decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE purchase_headers SET total = $2 WHERE id = $1`, id, total)
	if err != nil {
		return fmt.Errorf("update purchase total: %w", err)
	}
	return nil
}

// DeleteDetails elimina todos los detalles de una compra (reverso).
func (r *PurchaseRepo) DeleteDetails(headerID string) error {
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM purchase_details WHERE header_id = $1`, headerID)
	if err != nil {
		return fmt.Errorf("delete purchase details: %w", err)
	}
	return nil
}

// DeleteHeader elimina la cabecera (reverso).
func (r *PurchaseRepo) DeleteHeader(id string) error {
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM purchase_headers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete purchase header: %w", err)
	}
	return nil
}
