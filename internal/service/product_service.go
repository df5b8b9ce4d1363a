package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"restaurant-service/internal/models"
	"restaurant-service/internal/repository"
	"restaurant-service/internal/store"
	"restaurant-service/internal/util"

	"go.uber.org/zap"
)

// ProductService manages menu products
type ProductService struct {
	store  *store.Store
	clock  Clock
	logger *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(store *store.Store, clock Clock) *ProductService {
	return &ProductService{
		store:  store,
		clock:  clock,
		logger: util.GetLogger(),
	}
}

func (s *ProductService) repo() *repository.Repository[models.Product, *models.Product] {
	return repository.New[models.Product](s.store.ORM())
}

// GetAllProducts returns every product, including deactivated ones
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo().GetAll(ctx)
}

// GetProductByID returns nil for missing or deactivated products
func (s *ProductService) GetProductByID(ctx context.Context, id int16) (*models.Product, error) {
	return s.repo().GetByID(ctx, id)
}

// SearchProducts lists active products whose name contains term. A numeric
// term also matches products of that category. An empty term matches every
// active product.
func (s *ProductService) SearchProducts(ctx context.Context, term string) ([]models.Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.repo().Find(ctx, repository.All())
	}

	like := "%" + strings.ToLower(term) + "%"
	pred := repository.Where("LOWER(nombre) LIKE ?", like)
	if categoryID, err := strconv.ParseInt(term, 10, 16); err == nil {
		pred = repository.Where("(LOWER(nombre) LIKE ? OR categoria_id = ?)", like, categoryID)
	}
	return s.repo().Find(ctx, pred)
}

// AddProduct stores a new active product
func (s *ProductService) AddProduct(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}

	now := s.clock.Now()
	p.ID = 0
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Status = models.StatusActive

	if err := insert[models.Product](ctx, s.store.ORM(), p); err != nil {
		return err
	}
	s.logger.Info("Product added", zap.Int16("product_id", p.ID), zap.String("name", p.Name))
	return nil
}

// UpdateProduct replaces an active product. Its status and creation fields are kept.
func (s *ProductService) UpdateProduct(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}

	repo := s.repo()
	current, err := repo.GetByID(ctx, p.ID)
	if err != nil || current == nil {
		return err
	}

	p.CreatedAt = current.CreatedAt
	p.CreatedBy = current.CreatedBy
	p.Status = current.Status
	p.UpdatedAt = s.clock.Now()

	repo.Update(p)
	return repo.SaveChanges(ctx)
}

// DeleteProduct physically removes a product. Products referenced by order
// lines cannot be deleted; deactivate them instead.
func (s *ProductService) DeleteProduct(ctx context.Context, id int16) error {
	return deleteByID[models.Product](ctx, s.store.ORM(), id)
}

// DeactivateProduct hides a product from the menu
func (s *ProductService) DeactivateProduct(ctx context.Context, id int16) error {
	return deactivateByID[models.Product](ctx, s.store.ORM(), id)
}

// LowStockProducts lists active products whose stock is at or below threshold
func (s *ProductService) LowStockProducts(ctx context.Context, threshold int) ([]store.StockLevel, error) {
	if threshold < 0 {
		return nil, fmt.Errorf("%w: threshold must not be negative", ErrInvalidArgument)
	}

	levels, err := s.store.LowStockProducts(ctx, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	util.LowStockProducts.Set(float64(len(levels)))
	return levels, nil
}

func validateProduct(p *models.Product) error {
	switch {
	case p == nil:
		return fmt.Errorf("%w: product is required", ErrInvalidArgument)
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: product name is required", ErrInvalidArgument)
	case !p.Price.IsPositive():
		return fmt.Errorf("%w: product price must be positive", ErrInvalidArgument)
	case p.Stock < 0:
		return fmt.Errorf("%w: product stock must not be negative", ErrInvalidArgument)
	case p.CategoryID <= 0:
		return fmt.Errorf("%w: product category is required", ErrInvalidArgument)
	}
	return nil
}
