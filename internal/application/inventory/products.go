package inventory

import (
	"github.com/LuisSisCode/sistema-clinica/internal/application/dto"
	"github.com/LuisSisCode/sistema-clinica/internal/domain"
	"github.com/LuisSisCode/sistema-clinica/internal/domain/entity"
	"github.com/LuisSisCode/sistema-clinica/internal/infrastructure/cache"
)

// CreateProduct da de alta un producto del catálogo. No crea lotes: el stock
// inicial siempre entra por una compra.
func (f *Facade) CreateProduct(in dto.ProductRequest) (*entity.Product, error) {
	if in.Code == "" || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := f.now()
	product := &entity.Product{
		Code:        in.Code,
		Name:        in.Name,
		Price:       in.Price,
		Cost:        in.Cost,
		UnitMeasure: in.UnitMeasure,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := f.productRepo.Create(product); err != nil {
		return nil, err
	}
	f.cache.InvalidateType(cache.TypeProduct)
	return product, nil
}

// UpdateProduct actualiza nombre, precios y unidad de medida. El código no
// cambia: es la identidad del producto hacia el resto de módulos.
func (f *Facade) UpdateProduct(code string, in dto.ProductRequest) (*entity.Product, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	product, err := f.productRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	product.Name = in.Name
	product.Price = in.Price
	product.Cost = in.Cost
	product.UnitMeasure = in.UnitMeasure
	product.UpdatedAt = f.now()
	if err := f.productRepo.Update(product); err != nil {
		return nil, err
	}
	f.cache.InvalidateType(cache.TypeProduct)
	return product, nil
}

// ListProducts devuelve una página del catálogo.
func (f *Facade) ListProducts(limit, offset int) ([]*entity.Product, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return f.productRepo.List(limit, offset)
}

// DeleteProduct elimina un producto sin lotes activos. Con remanente en
// lotes la eliminación se rechaza: el libro nunca pierde existencias.
func (f *Facade) DeleteProduct(code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	product, err := f.productRepo.GetByCode(code)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrProductNotFound
	}
	lots, err := f.lotRepo.ListActive(product.ID)
	if err != nil {
		return err
	}
	if len(lots) > 0 {
		return &domain.IntegrityViolationError{Details: "el producto tiene lotes con remanente"}
	}
	if err := f.productRepo.Delete(product.ID); err != nil {
		return err
	}
	f.cache.InvalidateType(cache.TypeProduct)
	return nil
}
