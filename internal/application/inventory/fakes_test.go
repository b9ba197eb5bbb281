package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/LuisSisCode/sistema-clinica/internal/domain"
	"github.com/LuisSisCode/sistema-clinica/internal/domain/entity"
	"github.com/LuisSisCode/sistema-clinica/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Store en memoria para tests de la fachada
// ──────────────────────────────────────────────────────────────────────────────

// memStore guarda el estado compartido por todos los repositorios fake.
// failures permite inyectar un error en una operación concreta (clave
// "sale.CreateDetail", "lot.Create", etc.) para probar el rollback.
type memStore struct {
	products        map[string]*entity.Product // por id
	lots            map[string]*entity.Lot
	saleHeaders     map[string]*entity.SaleHeader
	saleDetails     map[string]*entity.SaleDetail
	purchaseHeaders map[string]*entity.PurchaseHeader
	purchaseDetails map[string]*entity.PurchaseDetail

	failures map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		products:        make(map[string]*entity.Product),
		lots:            make(map[string]*entity.Lot),
		saleHeaders:     make(map[string]*entity.SaleHeader),
		saleDetails:     make(map[string]*entity.SaleDetail),
		purchaseHeaders: make(map[string]*entity.PurchaseHeader),
		purchaseDetails: make(map[string]*entity.PurchaseDetail),
		failures:        make(map[string]error),
	}
}

func (s *memStore) fail(op string) error {
	return s.failures[op]
}

// snapshot clona el estado completo (los structs se copian por valor).
func (s *memStore) snapshot() *memStore {
	c := newMemStore()
	for k, v := range s.products {
		cp := *v
		c.products[k] = &cp
	}
	for k, v := range s.lots {
		cp := *v
		c.lots[k] = &cp
	}
	for k, v := range s.saleHeaders {
		cp := *v
		c.saleHeaders[k] = &cp
	}
	for k, v := range s.saleDetails {
		cp := *v
		c.saleDetails[k] = &cp
	}
	for k, v := range s.purchaseHeaders {
		cp := *v
		c.purchaseHeaders[k] = &cp
	}
	for k, v := range s.purchaseDetails {
		cp := *v
		c.purchaseDetails[k] = &cp
	}
	c.failures = s.failures
	return c
}

func (s *memStore) restore(snap *memStore) {
	s.products = snap.products
	s.lots = snap.lots
	s.saleHeaders = snap.saleHeaders
	s.saleDetails = snap.saleDetails
	s.purchaseHeaders = snap.purchaseHeaders
	s.purchaseDetails = snap.purchaseDetails
}

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios fake
// ──────────────────────────────────────────────────────────────────────────────

type memProductRepo struct{ s *memStore }

var _ repository.ProductRepository = (*memProductRepo)(nil)

func (r *memProductRepo) Create(p *entity.Product) error {
	if err := r.s.fail("product.Create"); err != nil {
		return err
	}
	for _, existing := range r.s.products {
		if existing.Code == p.Code {
			return domain.ErrDuplicate
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) GetByCode(code string) (*entity.Product, error) {
	for _, p := range r.s.products {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memProductRepo) Update(p *entity.Product) error {
	if _, ok := r.s.products[p.ID]; !ok {
		return domain.ErrProductNotFound
	}
	cp := *p
	r.s.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	all := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		cp := *p
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *memProductRepo) Delete(id string) error {
	delete(r.s.products, id)
	return nil
}

type memLotRepo struct{ s *memStore }

var _ repository.LotRepository = (*memLotRepo)(nil)

// ListActive reproduce el orden FIFO del Lot Store real: vencimiento
// ascendente, sin-vencimiento al final, desempate por creación y por id.
func (r *memLotRepo) ListActive(productID string) ([]*entity.Lot, error) {
	var lots []*entity.Lot
	for _, l := range r.s.lots {
		if l.ProductID == productID && l.RemainingQuantity > 0 {
			cp := *l
			lots = append(lots, &cp)
		}
	}
	sort.Slice(lots, func(i, j int) bool {
		a, b := lots[i], lots[j]
		switch {
		case a.ExpiryDate == nil && b.ExpiryDate == nil:
		case a.ExpiryDate == nil:
			return false
		case b.ExpiryDate == nil:
			return true
		case !a.ExpiryDate.Equal(*b.ExpiryDate):
			return a.ExpiryDate.Before(*b.ExpiryDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return lots, nil
}

func (r *memLotRepo) GetByID(id string) (*entity.Lot, error) {
	l, ok := r.s.lots[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *memLotRepo) Create(lot *entity.Lot) error {
	if err := r.s.fail("lot.Create"); err != nil {
		return err
	}
	if lot.ID == "" {
		lot.ID = uuid.NewString()
	}
	cp := *lot
	r.s.lots[lot.ID] = &cp
	return nil
}

func (r *memLotRepo) Decrement(lotID string, amount int64) (int64, error) {
	if err := r.s.fail("lot.Decrement"); err != nil {
		return 0, err
	}
	l, ok := r.s.lots[lotID]
	if !ok {
		return 0, domain.ErrLotNotFound
	}
	if l.RemainingQuantity < amount {
		return 0, domain.ErrInsufficientLotStock
	}
	l.RemainingQuantity -= amount
	return l.RemainingQuantity, nil
}

func (r *memLotRepo) Increment(lotID string, amount int64) error {
	if err := r.s.fail("lot.Increment"); err != nil {
		return err
	}
	l, ok := r.s.lots[lotID]
	if !ok {
		return domain.ErrLotNotFound
	}
	l.RemainingQuantity += amount
	return nil
}

func (r *memLotRepo) Delete(lotID string) error {
	delete(r.s.lots, lotID)
	return nil
}

type memSaleRepo struct{ s *memStore }

var _ repository.SaleRepository = (*memSaleRepo)(nil)

func (r *memSaleRepo) CreateHeader(h *entity.SaleHeader) error {
	if err := r.s.fail("sale.CreateHeader"); err != nil {
		return err
	}
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	cp := *h
	r.s.saleHeaders[h.ID] = &cp
	return nil
}

func (r *memSaleRepo) CreateDetail(d *entity.SaleDetail) error {
	if err := r.s.fail("sale.CreateDetail"); err != nil {
		return err
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	cp := *d
	r.s.saleDetails[d.ID] = &cp
	return nil
}

func (r *memSaleRepo) GetHeader(id string) (*entity.SaleHeader, error) {
	h, ok := r.s.saleHeaders[id]
	if !ok {
		return nil, nil
	}
	cp := *h
	return &cp, nil
}

func (r *memSaleRepo) ListDetails(headerID string) ([]*entity.SaleDetail, error) {
	var details []*entity.SaleDetail
	for _, d := range r.s.saleDetails {
		if d.HeaderID == headerID {
			cp := *d
			details = append(details, &cp)
		}
	}
	sort.Slice(details, func(i, j int) bool { return details[i].ID < details[j].ID })
	return details, nil
}

func (r *memSaleRepo) UpdateHeaderTotal(id string, total decimal.Decimal) error {
	if err := r.s.fail("sale.UpdateHeaderTotal"); err != nil {
		return err
	}
	h, ok := r.s.saleHeaders[id]
	if !ok {
		return domain.ErrInvalidInput
	}
	h.Total = total
	return nil
}

func (r *memSaleRepo) DeleteDetails(headerID string) error {
	if err := r.s.fail("sale.DeleteDetails"); err != nil {
		return err
	}
	for id, d := range r.s.saleDetails {
		if d.HeaderID == headerID {
			delete(r.s.saleDetails, id)
		}
	}
	return nil
}

func (r *memSaleRepo) DeleteHeader(id string) error {
	if err := r.s.fail("sale.DeleteHeader"); err != nil {
		return err
	}
	delete(r.s.saleHeaders, id)
	return nil
}

func (r *memSaleRepo) SumTotalsByDay(day time.Time) (decimal.Decimal, error) {
	want := day.UTC().Format("2006-01-02")
	sum := decimal.Zero
	for _, h := range r.s.saleHeaders {
		if h.CreatedAt.UTC().Format("2006-01-02") == want {
			sum = sum.Add(h.Total)
		}
	}
	return sum, nil
}

type memPurchaseRepo struct{ s *memStore }

var _ repository.PurchaseRepository = (*memPurchaseRepo)(nil)

func (r *memPurchaseRepo) CreateHeader(h *entity.PurchaseHeader) error {
	if err := r.s.fail("purchase.CreateHeader"); err != nil {
		return err
	}
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	cp := *h
	r.s.purchaseHeaders[h.ID] = &cp
	return nil
}

func (r *memPurchaseRepo) CreateDetail(d *entity.PurchaseDetail) error {
	if err := r.s.fail("purchase.CreateDetail"); err != nil {
		return err
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	cp := *d
	r.s.purchaseDetails[d.ID] = &cp
	return nil
}

func (r *memPurchaseRepo) GetHeader(id string) (*entity.PurchaseHeader, error) {
	h, ok := r.s.purchaseHeaders[id]
	if !ok {
		return nil, nil
	}
	cp := *h
	return &cp, nil
}

func (r *memPurchaseRepo) ListDetails(headerID string) ([]*entity.PurchaseDetail, error) {
	var details []*entity.PurchaseDetail
	for _, d := range r.s.purchaseDetails {
		if d.HeaderID == headerID {
			cp := *d
			details = append(details, &cp)
		}
	}
	sort.Slice(details, func(i, j int) bool { return details[i].ID < details[j].ID })
	return details, nil
}

func (r *memPurchaseRepo) UpdateHeaderTotal(id string, total decimal.Decimal) error {
	h, ok := r.s.purchaseHeaders[id]
	if !ok {
		return domain.ErrInvalidInput
	}
	h.Total = total
	return nil
}

func (r *memPurchaseRepo) DeleteDetails(headerID string) error {
	for id, d := range r.s.purchaseDetails {
		if d.HeaderID == headerID {
			delete(r.s.purchaseDetails, id)
		}
	}
	return nil
}

func (r *memPurchaseRepo) DeleteHeader(id string) error {
	delete(r.s.purchaseHeaders, id)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// TxRunner fake: snapshot + restore en lugar de BEGIN/ROLLBACK
// ──────────────────────────────────────────────────────────────────────────────

type memTxRunner struct{ s *memStore }

var _ TxRunner = (*memTxRunner)(nil)

func (t *memTxRunner) Run(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	purchaseRepo repository.PurchaseRepository,
) error) error {
	snap := t.s.snapshot()
	err := fn(
		&memLotRepo{s: t.s},
		&memProductRepo{s: t.s},
		&memSaleRepo{s: t.s},
		&memPurchaseRepo{s: t.s},
	)
	if err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}
